package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskdesk/internal/config"
	"taskdesk/internal/exitcode"
	"taskdesk/internal/notice"
	"taskdesk/internal/routing"
	"taskdesk/internal/service"
)

func init() {
	Register(&SignUpCmd{})
}

// SignUpCmd implements the signup command.
type SignUpCmd struct {
	firstName string
	lastName  string
	email     string
	password  string
	role      string
}

func (c *SignUpCmd) Name() string      { return "signup" }
func (c *SignUpCmd) Aliases() []string { return nil }
func (c *SignUpCmd) Synopsis() string  { return "Create an account" }
func (c *SignUpCmd) Usage() string {
	return "taskdesk signup --first <name> --last <name> --email <email> --password <password> [--role Worker|Assigner|Admin]"
}
func (c *SignUpCmd) NeedsAuth() bool         { return false }
func (c *SignUpCmd) Routes() []routing.Route { return nil }

func (c *SignUpCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.firstName, "first", "", "")
	fs.StringVar(&c.lastName, "last", "", "")
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.role, "role", routing.RoleWorker, "")
}

func (c *SignUpCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	req := service.SignUpRequest{
		FirstName: strings.TrimSpace(c.firstName),
		LastName:  strings.TrimSpace(c.lastName),
		Email:     strings.TrimSpace(c.email),
		Password:  c.password,
	}
	if role := strings.TrimSpace(c.role); role != "" {
		req.Roles = []string{role}
	}
	if err := req.Validate(); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	res, err := env.Service.SignUp(ctx, req)
	if err != nil {
		return report(errOut, err)
	}
	if res.Message != "" {
		env.Notifier.Notify(notice.Notice{Level: notice.Success, Title: res.Message})
	}

	// Most backends issue no token on sign-up; the user signs in next.
	if res.Token == "" {
		env.Nav.Navigate(routing.SignIn)
		if !cfg.Quiet {
			fmt.Fprintln(out, "account created (run: taskdesk signin)")
		}
		return exitcode.Success
	}

	profile := res.User
	if len(res.Roles) > 0 {
		profile.Roles = res.Roles
	}
	if err := env.Session.SignUp(ctx, profile, res.Token); err != nil {
		if errors.Is(err, routing.ErrNoRoles) {
			env.Router.Redirect(nil)
			return exitcode.AuthError
		}
		return report(errOut, err)
	}
	route, _ := env.Router.Redirect(profile.Roles)
	if !route.Recognized() {
		return exitcode.AuthError
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "signed in as %s (%s)\n", profile.Email, env.Nav.Current())
	}
	return exitcode.Success
}
