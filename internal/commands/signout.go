package commands

import (
	"context"
	"flag"
	"io"

	"taskdesk/internal/config"
	"taskdesk/internal/exitcode"
	"taskdesk/internal/routing"
)

func init() {
	Register(&SignOutCmd{})
}

// SignOutCmd implements the signout command.
type SignOutCmd struct{}

func (c *SignOutCmd) Name() string            { return "signout" }
func (c *SignOutCmd) Aliases() []string       { return []string{"logout"} }
func (c *SignOutCmd) Synopsis() string        { return "Remove the stored session" }
func (c *SignOutCmd) Usage() string           { return "taskdesk signout [common flags]" }
func (c *SignOutCmd) NeedsAuth() bool         { return false }
func (c *SignOutCmd) Routes() []routing.Route { return nil }

func (c *SignOutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *SignOutCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	env.Session.Hydrate(ctx)
	if err := env.Session.SignOut(ctx); err != nil {
		return report(errOut, err)
	}
	return exitcode.Success
}
