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
	Register(&CreateCmd{})
}

// CreateCmd implements the create command.
type CreateCmd struct {
	description string
	priority    string
	status      string
	deadline    string
	assignees   assigneeList
}

func (c *CreateCmd) Name() string      { return "create" }
func (c *CreateCmd) Aliases() []string { return []string{"add"} }
func (c *CreateCmd) Synopsis() string  { return "Create a task" }
func (c *CreateCmd) Usage() string {
	return "taskdesk create [--desc <text>] [--priority <p>] [--status <s>] [--deadline <date>] [--assignee <user-id>]... <title...>"
}
func (c *CreateCmd) NeedsAuth() bool         { return true }
func (c *CreateCmd) Routes() []routing.Route { return []routing.Route{routing.AssignerRoutes} }

func (c *CreateCmd) RegisterFlags(fs *flag.FlagSet) {
	c.assignees = nil
	fs.StringVar(&c.description, "desc", "", "")
	fs.StringVar(&c.priority, "priority", string(service.PriorityMedium), "")
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.deadline, "deadline", "", "")
	fs.Var(&c.assignees, "assignee", "")
}

func (c *CreateCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	req := service.CreateTaskRequest{
		Title:       title,
		Description: c.description,
		Assignees:   c.assignees,
		Deadline:    strings.TrimSpace(c.deadline),
	}
	if c.priority != "" {
		p, ok := service.ParsePriority(c.priority)
		if !ok {
			fmt.Fprintf(errOut, "error: invalid priority: %s\n", c.priority)
			return exitcode.UserError
		}
		req.Priority = p
	}
	if c.status != "" {
		s, ok := service.ParseStatus(c.status)
		if !ok {
			fmt.Fprintf(errOut, "error: invalid status: %s\n", c.status)
			return exitcode.UserError
		}
		req.Status = s
	}

	task, err := env.Board().Create(ctx, req)
	if err != nil {
		return report(errOut, err)
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "created %s\n", task.ID)
	}
	return exitcode.Success
}
