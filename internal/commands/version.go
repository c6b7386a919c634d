package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"runtime"

	"taskdesk/internal/config"
	"taskdesk/internal/exitcode"
	"taskdesk/internal/routing"
)

// Version is overridden at build time with -ldflags "-X".
var Version = "0.1.0"

func init() {
	Register(&VersionCmd{})
}

// VersionCmd prints the build version, and with --verbose the backend and
// config directory in use.
type VersionCmd struct {
	verbose bool
}

func (c *VersionCmd) Name() string            { return "version" }
func (c *VersionCmd) Aliases() []string       { return nil }
func (c *VersionCmd) Synopsis() string        { return "Print version" }
func (c *VersionCmd) Usage() string           { return "taskdesk version [--verbose]" }
func (c *VersionCmd) NeedsAuth() bool         { return false }
func (c *VersionCmd) Routes() []routing.Route { return nil }

func (c *VersionCmd) RegisterFlags(fs *flag.FlagSet) {
	c.verbose = false
	fs.BoolVar(&c.verbose, "verbose", false, "")
}

func (c *VersionCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	fmt.Fprintf(out, "taskdesk %s\n", Version)
	if c.verbose {
		fmt.Fprintf(out, "go:       %s\n", runtime.Version())
		fmt.Fprintf(out, "backend:  %s\n", cfg.BaseURL)
		fmt.Fprintf(out, "config:   %s\n", cfg.Dir)
	}
	return exitcode.Success
}
