// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"taskdesk/internal/backend/rest"
	"taskdesk/internal/board"
	"taskdesk/internal/config"
	"taskdesk/internal/credstore"
	"taskdesk/internal/exitcode"
	"taskdesk/internal/notice"
	"taskdesk/internal/routing"
	"taskdesk/internal/service"
	"taskdesk/internal/session"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command requires a signed-in session.
	// Commands like help, version, signin, signout return false.
	NeedsAuth() bool

	// Routes lists the role subtrees the command belongs to.
	// Nil means any signed-in user (or anyone, when NeedsAuth is false).
	Routes() []routing.Route

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg and env are always provided.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int
}

// Env carries the collaborators a command may use.
type Env struct {
	Service  service.Service
	Store    *credstore.Store
	Session  *session.Manager
	Router   *routing.Router
	Nav      *routing.History
	Notifier notice.Notifier
	Logger   *slog.Logger

	closer io.Closer
}

// NewEnv wires a session, router and notifier around svc and store.
// Notices are written to out and errOut.
func NewEnv(cfg *config.Config, svc service.Service, store *credstore.Store, out, errOut io.Writer, logger *slog.Logger) *Env {
	if logger == nil {
		logger = slog.Default()
	}
	nav := &routing.History{}
	notifier := &notice.Writer{Out: out, Err: errOut, Quiet: cfg.Quiet}
	return &Env{
		Service:  svc,
		Store:    store,
		Session:  session.New(store, nav, notifier, logger),
		Router:   routing.NewRouter(nav, notifier, logger),
		Nav:      nav,
		Notifier: notifier,
		Logger:   logger,
	}
}

// CloseWith registers c to be closed by Close.
func (e *Env) CloseWith(c io.Closer) { e.closer = c }

// Close releases resources registered with CloseWith.
func (e *Env) Close() error {
	if e.closer == nil {
		return nil
	}
	return e.closer.Close()
}

// Route returns the subtree of the signed-in user.
func (e *Env) Route() routing.Route {
	route, err := routing.RouteFor(e.Session.State().Roles())
	if err != nil {
		return routing.Unrecognized
	}
	return route
}

// Board returns a task board scoped to the signed-in user's role.
func (e *Env) Board() *board.Board {
	scope := board.ScopeAll
	if e.Route() == routing.WorkerRoutes {
		scope = board.ScopeAssigned
	}
	return board.New(e.Service, scope, e.Notifier, e.Logger)
}

// exitCode maps an operation error to an exit code.
func exitCode(err error) int {
	var (
		verr *service.ValidationError
		serr *credstore.StorageError
	)
	switch {
	case err == nil:
		return exitcode.Success
	case errors.As(err, &verr):
		return exitcode.UserError
	case rest.IsUnauthorized(err):
		return exitcode.AuthError
	case errors.As(err, &serr):
		return exitcode.BackendError
	}
	return exitcode.BackendError
}

// report prints err as a single error line and returns its exit code.
func report(errOut io.Writer, err error) int {
	var serr *credstore.StorageError
	switch {
	case rest.IsUnauthorized(err):
		fmt.Fprintf(errOut, "error: %s (run: taskdesk signin)\n", rest.ErrorMessage(err))
	case errors.As(err, &serr):
		fmt.Fprintf(errOut, "error: %v\n", serr)
	default:
		fmt.Fprintf(errOut, "error: %s\n", rest.ErrorMessage(err))
	}
	return exitCode(err)
}
