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
	Register(&CommentCmd{})
}

// CommentCmd adds a comment to a task.
type CommentCmd struct{}

func (c *CommentCmd) Name() string            { return "comment" }
func (c *CommentCmd) Aliases() []string       { return []string{"note"} }
func (c *CommentCmd) Synopsis() string        { return "Comment on a task" }
func (c *CommentCmd) Usage() string           { return "taskdesk comment <task-id> <text...>" }
func (c *CommentCmd) NeedsAuth() bool         { return true }
func (c *CommentCmd) Routes() []routing.Route { return nil }

func (c *CommentCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *CommentCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: task id required")
		return exitcode.UserError
	}
	req := service.CommentRequest{
		TaskID:  strings.TrimSpace(args[0]),
		Content: strings.TrimSpace(strings.Join(args[1:], " ")),
	}
	task, err := env.Board().Comment(ctx, req)
	if err != nil {
		return report(errOut, err)
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "%d comments on %s\n", len(task.Comments), req.TaskID)
	}
	return exitcode.Success
}
