// Package cli parses the command line, loads configuration and dispatches
// to a registered command after checking the session and role.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskdesk/internal/commands"
	"taskdesk/internal/config"
	"taskdesk/internal/exitcode"
	"taskdesk/internal/routing"
)

// DefaultCommand runs when no command is given.
const DefaultCommand = "home"

// EnvFactory builds the command environment from config.
// Notices are written to out and errOut.
type EnvFactory func(ctx context.Context, cfg *config.Config, out, errOut io.Writer) (*commands.Env, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  EnvFactory
}

// NewDispatcher creates a new dispatcher with the given registry and environment factory.
func NewDispatcher(registry *commands.Registry, factory EnvFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// Run dispatches args[0] with the remaining arguments and returns the exit
// code. With no arguments it runs DefaultCommand.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		args = []string{DefaultCommand}
	}

	name := args[0]
	cmd, ok := d.registry.Find(name)
	if !ok || strings.HasPrefix(name, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", name)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args[1:], out, errOut)
}

// commonFlags are accepted by every command.
type commonFlags struct {
	configDir string
	quiet     bool
	debug     bool
}

func (f *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configDir, "config", "", "")
	fs.BoolVar(&f.quiet, "quiet", false, "")
	fs.BoolVar(&f.debug, "debug", false, "")
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	var common commonFlags
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	common.register(fs)
	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", flagError(err))
		return exitcode.UserError
	}
	// flag stops at the first positional; a dash after it is a flag nobody declared.
	rest := fs.Args()
	if len(rest) > 0 && strings.HasPrefix(rest[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", rest[0])
		return exitcode.UserError
	}

	cfg, err := config.Load(common.configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: config: %v\n", err)
		return exitcode.UserError
	}
	cfg.Quiet, cfg.Debug = common.quiet, common.debug

	env, err := d.factory(ctx, cfg, out, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	defer func() {
		if err := env.Close(); err != nil {
			env.Logger.Warn("close failed", "error", err)
		}
	}()

	if cmd.NeedsAuth() {
		if code := authorize(ctx, cmd, env, errOut); code != exitcode.Success {
			return code
		}
	}

	code := cmd.Run(ctx, cfg, env, rest, out, errOut)
	env.Logger.Debug("command finished", "command", cmd.Name(), "exit", exitcode.Name(code))
	return code
}

// authorize checks that a session exists and that its primary role reaches cmd.
func authorize(ctx context.Context, cmd commands.Command, env *commands.Env, errOut io.Writer) int {
	st := env.Session.Hydrate(ctx)
	if !st.LoggedIn {
		fmt.Fprintln(errOut, "error: not logged in (run: taskdesk signin)")
		return exitcode.AuthError
	}
	role := st.User.PrimaryRole()
	route, _ := routing.RouteFor(st.Roles())
	switch {
	case !route.Recognized():
		fmt.Fprintf(errOut, "error: unable to determine user role: %s\n", role)
		return exitcode.AuthError
	case !commands.Allowed(cmd, route):
		fmt.Fprintf(errOut, "error: %s is not available to %s users\n", cmd.Name(), role)
		return exitcode.UserError
	}
	return exitcode.Success
}

// flagError rewords flag package errors.
func flagError(err error) string {
	msg := err.Error()
	for prefix, label := range map[string]string{
		"flag needs an argument:":        "flag needs an argument: ",
		"flag provided but not defined:": "unknown flag: ",
	} {
		if rest, ok := strings.CutPrefix(msg, prefix); ok {
			return label + strings.TrimSpace(rest)
		}
	}
	return msg
}
