package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdesk/internal/config"
	"taskdesk/internal/exitcode"
	"taskdesk/internal/output"
	"taskdesk/internal/routing"
)

func init() {
	Register(&TasksCmd{})
	Register(&MyTasksCmd{})
}

// TasksCmd lists every task visible to an admin or assigner.
type TasksCmd struct {
	filters filterFlags
}

func (c *TasksCmd) Name() string      { return "tasks" }
func (c *TasksCmd) Aliases() []string { return []string{"ls"} }
func (c *TasksCmd) Synopsis() string  { return "List tasks" }
func (c *TasksCmd) Usage() string {
	return "taskdesk tasks [--status <s>] [--priority <p>] [--sort <field>] [--created <day>] [--search <text>]"
}
func (c *TasksCmd) NeedsAuth() bool { return true }
func (c *TasksCmd) Routes() []routing.Route {
	return []routing.Route{routing.AdminRoutes, routing.AssignerRoutes}
}

func (c *TasksCmd) RegisterFlags(fs *flag.FlagSet) { c.filters.register(fs) }

func (c *TasksCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	return runList(ctx, cfg, env, &c.filters, args, out, errOut)
}

// MyTasksCmd lists tasks assigned to the signed-in worker.
type MyTasksCmd struct {
	filters filterFlags
}

func (c *MyTasksCmd) Name() string      { return "mytasks" }
func (c *MyTasksCmd) Aliases() []string { return nil }
func (c *MyTasksCmd) Synopsis() string  { return "List tasks assigned to you" }
func (c *MyTasksCmd) Usage() string {
	return "taskdesk mytasks [--status <s>] [--priority <p>] [--sort <field>] [--created <day>] [--search <text>]"
}
func (c *MyTasksCmd) NeedsAuth() bool         { return true }
func (c *MyTasksCmd) Routes() []routing.Route { return []routing.Route{routing.WorkerRoutes} }

func (c *MyTasksCmd) RegisterFlags(fs *flag.FlagSet) { c.filters.register(fs) }

func (c *MyTasksCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	return runList(ctx, cfg, env, &c.filters, args, out, errOut)
}

// runList is the shared implementation for tasks and mytasks. The board
// picks the listing endpoint from the caller's role.
func runList(ctx context.Context, cfg *config.Config, env *Env, flags *filterFlags, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	filter, err := flags.filter()
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	tasks, err := env.Board().Refresh(ctx, filter)
	if err != nil {
		return report(errOut, err)
	}
	if len(tasks) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}
	for _, t := range tasks {
		output.FormatTask(out, t)
	}
	return exitcode.Success
}
