package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"taskdesk/internal/config"
	"taskdesk/internal/exitcode"
	"taskdesk/internal/output"
	"taskdesk/internal/routing"
	"taskdesk/internal/service"
)

func init() {
	Register(&HomeCmd{})
}

// HomeCmd prints the home screen of the caller's role.
type HomeCmd struct{}

func (c *HomeCmd) Name() string      { return "home" }
func (c *HomeCmd) Aliases() []string { return nil }
func (c *HomeCmd) Synopsis() string  { return "Show your home screen" }
func (c *HomeCmd) Usage() string     { return "taskdesk home" }
func (c *HomeCmd) NeedsAuth() bool   { return true }
func (c *HomeCmd) Routes() []routing.Route {
	return []routing.Route{routing.AdminRoutes, routing.AssignerRoutes, routing.WorkerRoutes}
}

func (c *HomeCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HomeCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	st := env.Session.State()
	route := env.Route()
	env.Nav.Navigate(route.Home())
	fmt.Fprintf(out, "%s: %s\n", route.Home(), st.User.FullName())

	var err error
	switch route {
	case routing.AssignerRoutes:
		err = assignerHome(ctx, env, out)
	case routing.WorkerRoutes:
		err = workerHome(ctx, env, out)
	default:
		err = adminHome(ctx, env, out)
	}
	if err != nil {
		return report(errOut, err)
	}
	return exitcode.Success
}

func assignerHome(ctx context.Context, env *Env, out io.Writer) error {
	var (
		info    service.AssigneeInfo
		workers []service.Worker
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		info, err = env.Service.AssigneeInfo(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		workers, err = env.Service.ListWorkers(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	output.FormatAssigneeInfo(out, info)
	fmt.Fprintf(out, "workers: %d\n", len(workers))
	return nil
}

func workerHome(ctx context.Context, env *Env, out io.Writer) error {
	var (
		tasks []service.Task
		stats service.WorkerAnalytics
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tasks, err = env.Service.ListWorkerTasks(ctx, service.TaskFilter{Status: service.StatusInProgress})
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = env.Service.WorkerAnalytics(ctx, service.RangeToday)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	output.FormatHeader(out, "Today")
	output.FormatStatusCounts(out, stats.TasksByStatus)
	output.FormatHeader(out, "In progress")
	for _, t := range tasks {
		output.FormatTask(out, t)
	}
	return nil
}

func adminHome(ctx context.Context, env *Env, out io.Writer) error {
	var (
		tasks   []service.Task
		workers []service.Worker
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tasks, err = env.Service.ListTasks(ctx, service.TaskFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		workers, err = env.Service.ListWorkers(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	counts := make(map[service.Status]int)
	for _, t := range tasks {
		counts[t.Status]++
	}
	fmt.Fprintf(out, "tasks: %d  workers: %d\n", len(tasks), len(workers))
	for _, s := range service.Statuses {
		fmt.Fprintf(out, "  %-11s %d\n", s, counts[s])
	}
	return nil
}
