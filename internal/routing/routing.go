// Package routing maps a user's primary role to the navigation subtree they may enter.
package routing

import (
	"errors"
	"log/slog"
	"slices"

	"taskdesk/internal/notice"
)

// Known role names. The backend has used both "Assigner" and "Assignee"
// for the same role.
const (
	RoleAdmin    = "Admin"
	RoleAssigner = "Assigner"
	RoleAssignee = "Assignee"
	RoleWorker   = "Worker"
)

// ErrNoRoles is returned for an empty role list; such a list never reaches routing.
var ErrNoRoles = errors.New("role list is empty")

// Screen names a destination.
type Screen string

// Screens outside any role subtree.
const (
	SignIn Screen = "SignIn"
	SignUp Screen = "SignUp"
)

// Admin subtree.
const (
	AdminHome          Screen = "AdminHome"
	AdminTasks         Screen = "AdminTasks"
	AdminNotifications Screen = "AdminNotifications"
	AdminProfile       Screen = "AdminProfile"
)

// Assigner subtree.
const (
	AssigneeHome      Screen = "AssigneeHome"
	AssigneeTasks     Screen = "AssigneeTasks"
	AssigneeAnalytics Screen = "AssigneeAnalytics"
	AssigneeProfile   Screen = "AssigneeProfile"
)

// Worker subtree.
const (
	WorkerHome          Screen = "WorkerHome"
	WorkerTasks         Screen = "WorkerTasks"
	WorkerAnalytics     Screen = "WorkerAnalytics"
	WorkerNotifications Screen = "WorkerNotifications"
)

// Route is one of the disjoint navigation subtrees.
type Route string

const (
	AdminRoutes    Route = "AdminRoutes"
	AssignerRoutes Route = "AssigneeRoutes"
	WorkerRoutes   Route = "WorkerRoutes"
	Unrecognized   Route = "Unrecognized"
)

// subtrees lists each route's screens; the first entry is the home screen.
var subtrees = map[Route][]Screen{
	AdminRoutes:    {AdminHome, AdminTasks, AdminNotifications, AdminProfile},
	AssignerRoutes: {AssigneeHome, AssigneeTasks, AssigneeAnalytics, AssigneeProfile},
	WorkerRoutes:   {WorkerHome, WorkerTasks, WorkerAnalytics, WorkerNotifications},
}

// RouteFor returns the subtree for the primary role, roles[0]. Later roles
// do not influence routing.
func RouteFor(roles []string) (Route, error) {
	if len(roles) == 0 {
		return Unrecognized, ErrNoRoles
	}
	switch roles[0] {
	case RoleAdmin:
		return AdminRoutes, nil
	case RoleAssigner, RoleAssignee:
		return AssignerRoutes, nil
	case RoleWorker:
		return WorkerRoutes, nil
	}
	return Unrecognized, nil
}

// Recognized reports whether r is one of the three role subtrees.
func (r Route) Recognized() bool {
	_, ok := subtrees[r]
	return ok
}

// Home is the entry screen of the subtree. Unrecognized routes fall back to SignIn.
func (r Route) Home() Screen {
	if s, ok := subtrees[r]; ok {
		return s[0]
	}
	return SignIn
}

// Screens returns the subtree's screens, home first.
func (r Route) Screens() []Screen {
	return slices.Clone(subtrees[r])
}

// Contains reports whether s belongs to the subtree.
func (r Route) Contains(s Screen) bool {
	return slices.Contains(subtrees[r], s)
}

// Navigator moves the user to a screen.
type Navigator interface {
	Navigate(s Screen)
}

// RoleErrorNotice is shown when no subtree matches the user's role.
var RoleErrorNotice = notice.Notice{
	Level: notice.Error,
	Title: "Role Error",
	Text:  "Unable to determine user role.",
}

// Router sends the user to their subtree's home screen.
type Router struct {
	nav      Navigator
	notifier notice.Notifier
	logger   *slog.Logger
}

// NewRouter creates a Router. A nil notifier discards notices and a nil logger uses slog.Default().
func NewRouter(nav Navigator, notifier notice.Notifier, logger *slog.Logger) *Router {
	if notifier == nil {
		notifier = notice.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{nav: nav, notifier: notifier, logger: logger}
}

// Redirect navigates according to roles and returns the chosen route.
// An unrecognized or missing role lands on SignIn with a role error notice.
func (r *Router) Redirect(roles []string) (Route, error) {
	route, err := RouteFor(roles)
	if err != nil || !route.Recognized() {
		r.logger.Warn("unknown role, redirecting to sign-in", "roles", roles)
		r.nav.Navigate(SignIn)
		r.notifier.Notify(RoleErrorNotice)
		return Unrecognized, err
	}
	r.nav.Navigate(route.Home())
	return route, nil
}
