package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskdesk/internal/config"
	"taskdesk/internal/exitcode"
	"taskdesk/internal/routing"
)

func init() {
	Register(&PushCmd{})
}

// PushCmd registers a device push token for the signed-in user.
type PushCmd struct{}

func (c *PushCmd) Name() string            { return "push" }
func (c *PushCmd) Aliases() []string       { return nil }
func (c *PushCmd) Synopsis() string        { return "Register a device push token" }
func (c *PushCmd) Usage() string           { return "taskdesk push <token>" }
func (c *PushCmd) NeedsAuth() bool         { return true }
func (c *PushCmd) Routes() []routing.Route { return nil }

func (c *PushCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *PushCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		fmt.Fprintln(errOut, "error: push token required")
		return exitcode.UserError
	}
	msg, err := env.Service.UpdatePushToken(ctx, strings.TrimSpace(args[0]))
	if err != nil {
		return report(errOut, err)
	}
	if !cfg.Quiet {
		if msg == "" {
			msg = "ok"
		}
		fmt.Fprintln(out, msg)
	}
	return exitcode.Success
}
