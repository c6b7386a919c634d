package commands

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"taskdesk/internal/routing"
)

// Registry maps command names and aliases to commands.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]Command
	aliases map[string]string // alias -> canonical name
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:  make(map[string]Command),
		aliases: make(map[string]string),
	}
}

func (r *Registry) taken(name string) bool {
	_, cmd := r.byName[name]
	_, alias := r.aliases[name]
	return cmd || alias
}

// Register adds c under its name and aliases. Nothing is added when any of
// them collides with an existing entry.
func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.taken(c.Name()) {
		return fmt.Errorf("command already registered: %s", c.Name())
	}
	for _, a := range c.Aliases() {
		if r.taken(a) || a == c.Name() {
			return fmt.Errorf("command already registered: %s", a)
		}
	}
	r.byName[c.Name()] = c
	for _, a := range c.Aliases() {
		r.aliases[a] = c.Name()
	}
	return nil
}

// Find resolves a name or alias.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if canonical, ok := r.aliases[name]; ok {
		name = canonical
	}
	cmd, ok := r.byName[name]
	return cmd, ok
}

// All returns every command once, sorted by name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Command, 0, len(r.byName))
	for _, cmd := range r.byName {
		out = append(out, cmd)
	}
	slices.SortFunc(out, func(a, b Command) int { return strings.Compare(a.Name(), b.Name()) })
	return out
}

// ForRoute returns the commands a user in route may run, sorted by name.
// Public commands are always included.
func (r *Registry) ForRoute(route routing.Route) []Command {
	return slices.DeleteFunc(r.All(), func(cmd Command) bool { return !Allowed(cmd, route) })
}

// Allowed reports whether a user in route may run cmd.
func Allowed(cmd Command, route routing.Route) bool {
	routes := cmd.Routes()
	return routes == nil || slices.Contains(routes, route)
}

// DefaultRegistry holds the commands registered by this package's init functions.
var DefaultRegistry = NewRegistry()

// Register adds c to DefaultRegistry and panics on a name collision.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
