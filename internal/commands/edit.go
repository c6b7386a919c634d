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
	"taskdesk/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd sends a partial task update. Only the flags given are sent.
type EditCmd struct {
	title       optString
	description optString
	priority    optString
	status      optString
	deadline    optString
	assignees   assigneeList
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Change a task's fields" }
func (c *EditCmd) Usage() string {
	return "taskdesk edit [--title <t>] [--desc <text>] [--priority <p>] [--status <s>] [--deadline <date>] [--assignee <user-id>]... <task-id>"
}
func (c *EditCmd) NeedsAuth() bool         { return true }
func (c *EditCmd) Routes() []routing.Route { return []routing.Route{routing.AssignerRoutes} }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	*c = EditCmd{}
	fs.Var(&c.title, "title", "")
	fs.Var(&c.description, "desc", "")
	fs.Var(&c.priority, "priority", "")
	fs.Var(&c.status, "status", "")
	fs.Var(&c.deadline, "deadline", "")
	fs.Var(&c.assignees, "assignee", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		fmt.Fprintln(errOut, "error: task id required")
		return exitcode.UserError
	}
	id := strings.TrimSpace(args[0])

	req := service.EditTaskRequest{
		Title:       c.title.ptr(),
		Description: c.description.ptr(),
		Deadline:    c.deadline.ptr(),
		Assignees:   c.assignees,
	}
	if c.priority.set {
		p, ok := service.ParsePriority(c.priority.value)
		if !ok {
			fmt.Fprintf(errOut, "error: invalid priority: %s\n", c.priority.value)
			return exitcode.UserError
		}
		req.Priority = &p
	}
	if c.status.set {
		s, ok := service.ParseStatus(c.status.value)
		if !ok {
			fmt.Fprintf(errOut, "error: invalid status: %s\n", c.status.value)
			return exitcode.UserError
		}
		req.Status = &s
	}

	if _, err := env.Board().Edit(ctx, id, req); err != nil {
		return report(errOut, err)
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "updated %s\n", id)
	}
	return exitcode.Success
}
