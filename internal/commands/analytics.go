package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"slices"

	"taskdesk/internal/config"
	"taskdesk/internal/exitcode"
	"taskdesk/internal/output"
	"taskdesk/internal/routing"
	"taskdesk/internal/service"
)

func init() {
	Register(&AnalyticsCmd{})
}

// AnalyticsCmd prints task aggregates for the caller's role.
type AnalyticsCmd struct {
	window string
}

func (c *AnalyticsCmd) Name() string      { return "analytics" }
func (c *AnalyticsCmd) Aliases() []string { return []string{"stats"} }
func (c *AnalyticsCmd) Synopsis() string  { return "Show task analytics" }
func (c *AnalyticsCmd) Usage() string {
	return "taskdesk analytics [--range today|thisWeek|thisMonth|lastSixMonths|thisYear|all]"
}
func (c *AnalyticsCmd) NeedsAuth() bool { return true }
func (c *AnalyticsCmd) Routes() []routing.Route {
	return []routing.Route{routing.AssignerRoutes, routing.WorkerRoutes}
}

func (c *AnalyticsCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.window, "range", string(service.RangeThisWeek), "")
}

func (c *AnalyticsCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	r := service.AnalyticsRange(c.window)
	if !slices.Contains(service.AnalyticsRanges, r) {
		fmt.Fprintf(errOut, "error: invalid range: %s\n", c.window)
		return exitcode.UserError
	}

	if env.Route() == routing.WorkerRoutes {
		a, err := env.Service.WorkerAnalytics(ctx, r)
		if err != nil {
			return report(errOut, err)
		}
		output.FormatWorkerAnalytics(out, a)
		return exitcode.Success
	}

	a, err := env.Service.AssignerAnalytics(ctx, r)
	if err != nil {
		return report(errOut, err)
	}
	output.FormatAssignerAnalytics(out, a)
	return exitcode.Success
}
