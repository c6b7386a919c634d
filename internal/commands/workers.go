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
	Register(&WorkersCmd{})
}

// WorkersCmd lists users tasks can be assigned to.
type WorkersCmd struct{}

func (c *WorkersCmd) Name() string      { return "workers" }
func (c *WorkersCmd) Aliases() []string { return nil }
func (c *WorkersCmd) Synopsis() string  { return "List assignable workers" }
func (c *WorkersCmd) Usage() string     { return "taskdesk workers" }
func (c *WorkersCmd) NeedsAuth() bool   { return true }
func (c *WorkersCmd) Routes() []routing.Route {
	return []routing.Route{routing.AssignerRoutes, routing.AdminRoutes}
}

func (c *WorkersCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WorkersCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	workers, err := env.Service.ListWorkers(ctx)
	if err != nil {
		return report(errOut, err)
	}
	if len(workers) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no workers found")
		}
		return exitcode.Success
	}
	for _, w := range workers {
		output.FormatWorker(out, w)
	}
	return exitcode.Success
}
