package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskdesk/internal/backend/rest"
	"taskdesk/internal/config"
	"taskdesk/internal/exitcode"
	"taskdesk/internal/routing"
	"taskdesk/internal/service"
	"taskdesk/internal/session"
)

func init() {
	Register(&SignInCmd{})
}

// SignInCmd implements the signin command.
type SignInCmd struct {
	email     string
	password  string
	pushToken string
}

func (c *SignInCmd) Name() string            { return "signin" }
func (c *SignInCmd) Aliases() []string       { return []string{"login"} }
func (c *SignInCmd) Synopsis() string        { return "Sign in and open your home screen" }
func (c *SignInCmd) Usage() string           { return "taskdesk signin --email <email> --password <password> [--fcm-token <token>]" }
func (c *SignInCmd) NeedsAuth() bool         { return false }
func (c *SignInCmd) Routes() []routing.Route { return nil }

func (c *SignInCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.pushToken, "fcm-token", "", "")
}

func (c *SignInCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	// A persisted session skips re-authentication.
	if st := env.Session.Hydrate(ctx); st.LoggedIn {
		route, err := env.Router.Redirect(st.Roles())
		if err != nil || !route.Recognized() {
			return exitcode.AuthError
		}
		if !cfg.Quiet {
			fmt.Fprintf(out, "already signed in as %s (%s)\n", st.User.Email, env.Nav.Current())
		}
		return exitcode.Success
	}

	req := service.SignInRequest{Email: strings.TrimSpace(c.email), Password: c.password}
	if err := req.Validate(); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	res, err := env.Service.SignIn(ctx, req)
	if err != nil {
		if rest.IsUnauthorized(err) {
			fmt.Fprintf(errOut, "error: %s\n", rest.ErrorMessage(err))
			return exitcode.AuthError
		}
		return report(errOut, err)
	}

	profile := res.User
	if len(res.Roles) > 0 {
		profile.Roles = res.Roles
	}
	if err := env.Session.SignIn(ctx, profile, res.Token); err != nil {
		switch {
		case errors.Is(err, routing.ErrNoRoles):
			env.Router.Redirect(nil)
			return exitcode.AuthError
		case errors.Is(err, session.ErrEmptyToken):
			fmt.Fprintln(errOut, "error: backend returned no token")
			return exitcode.BackendError
		}
		return report(errOut, err)
	}

	if c.pushToken != "" {
		if _, err := env.Service.UpdatePushToken(ctx, c.pushToken); err != nil {
			env.Logger.Warn("push token not registered", "error", err)
			fmt.Fprintf(errOut, "warning: push token not registered: %s\n", rest.ErrorMessage(err))
		}
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
