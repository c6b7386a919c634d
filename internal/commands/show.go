package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskdesk/internal/config"
	"taskdesk/internal/exitcode"
	"taskdesk/internal/output"
	"taskdesk/internal/routing"
)

func init() {
	Register(&ShowCmd{})
}

// ShowCmd prints one task with its comments.
type ShowCmd struct{}

func (c *ShowCmd) Name() string            { return "show" }
func (c *ShowCmd) Aliases() []string       { return nil }
func (c *ShowCmd) Synopsis() string        { return "Show a task and its comments" }
func (c *ShowCmd) Usage() string           { return "taskdesk show <task-id>" }
func (c *ShowCmd) NeedsAuth() bool         { return true }
func (c *ShowCmd) Routes() []routing.Route { return nil }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		fmt.Fprintln(errOut, "error: task id required")
		return exitcode.UserError
	}
	task, err := env.Service.GetTask(ctx, strings.TrimSpace(args[0]))
	if err != nil {
		return report(errOut, err)
	}
	output.FormatTaskDetail(out, task)
	return exitcode.Success
}
