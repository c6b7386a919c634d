package commands

import (
	"context"
	"flag"
	"io"

	"taskdesk/internal/config"
	"taskdesk/internal/exitcode"
	"taskdesk/internal/output"
	"taskdesk/internal/routing"
)

func init() {
	Register(&WhoamiCmd{})
}

// WhoamiCmd prints the signed-in user.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string            { return "whoami" }
func (c *WhoamiCmd) Aliases() []string       { return []string{"profile"} }
func (c *WhoamiCmd) Synopsis() string        { return "Show the signed-in user" }
func (c *WhoamiCmd) Usage() string           { return "taskdesk whoami [common flags]" }
func (c *WhoamiCmd) NeedsAuth() bool         { return true }
func (c *WhoamiCmd) Routes() []routing.Route { return nil }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	st := env.Session.State()
	output.FormatProfile(out, *st.User, string(env.Route().Home()))
	return exitcode.Success
}
