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
	"taskdesk/internal/service"
)

func init() {
	Register(&StatusCmd{})
}

// StatusCmd moves a task to another status.
type StatusCmd struct{}

func (c *StatusCmd) Name() string      { return "status" }
func (c *StatusCmd) Aliases() []string { return []string{"move"} }
func (c *StatusCmd) Synopsis() string  { return "Change a task's status" }
func (c *StatusCmd) Usage() string {
	return "taskdesk status <task-id> <Backlog|InProgress|Done|Archived>"
}
func (c *StatusCmd) NeedsAuth() bool { return true }
func (c *StatusCmd) Routes() []routing.Route {
	return []routing.Route{routing.WorkerRoutes, routing.AssignerRoutes}
}

func (c *StatusCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatusCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) < 2 || strings.TrimSpace(args[0]) == "" {
		fmt.Fprintln(errOut, "error: task id and status required")
		return exitcode.UserError
	}
	id := strings.TrimSpace(args[0])
	raw := strings.Join(args[1:], " ")
	status, ok := service.ParseStatus(raw)
	if !ok {
		fmt.Fprintf(errOut, "error: invalid status: %s\n", raw)
		return exitcode.UserError
	}

	// Load the caller's list first so the change is applied to the listed
	// copy and can be rolled back.
	b := env.Board()
	if _, err := b.Refresh(ctx, service.TaskFilter{}); err != nil {
		env.Logger.Warn("task list not loaded", "error", err)
	}

	// The board has already posted the outcome as a notice.
	err := b.ChangeStatus(ctx, id, status)
	if t, ok := b.Task(id); ok {
		output.FormatTask(out, t)
	}
	if err != nil {
		return exitCode(err)
	}
	return exitcode.Success
}
