package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdesk/internal/config"
	"taskdesk/internal/exitcode"
	"taskdesk/internal/routing"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd lists commands. Signed-in users only see the commands their
// role can reach.
type HelpCmd struct{}

func (c *HelpCmd) Name() string            { return "help" }
func (c *HelpCmd) Aliases() []string       { return nil }
func (c *HelpCmd) Synopsis() string        { return "Print usage" }
func (c *HelpCmd) Usage() string           { return "taskdesk help [command]" }
func (c *HelpCmd) NeedsAuth() bool         { return false }
func (c *HelpCmd) Routes() []routing.Route { return nil }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		cmd, ok := DefaultRegistry.Find(args[0])
		if !ok {
			fmt.Fprintf(errOut, "error: unknown command: %s\n", args[0])
			return exitcode.UserError
		}
		fmt.Fprintf(out, "%s\n\nusage: %s\n", cmd.Synopsis(), cmd.Usage())
		return exitcode.Success
	}

	cmds := DefaultRegistry.All()
	if st := env.Session.Hydrate(ctx); st.LoggedIn {
		if route := env.Route(); route.Recognized() {
			cmds = DefaultRegistry.ForRoute(route)
		}
	}

	fmt.Fprint(out, "Usage:\n")
	for _, cmd := range cmds {
		fmt.Fprintf(out, "  %-10s %s\n", cmd.Name(), cmd.Synopsis())
	}
	fmt.Fprint(out, helpFooter)
	return exitcode.Success
}

const helpFooter = `
With no command, taskdesk shows your home screen.
Commands outside your role are refused.

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
