// Package session holds the signed-in user's identity for the lifetime of
// the process and keeps it in step with the credential store.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"taskdesk/internal/credstore"
	"taskdesk/internal/notice"
	"taskdesk/internal/routing"
	"taskdesk/internal/service"
)

// ErrEmptyToken is returned when a sign-in or sign-up carries no token.
var ErrEmptyToken = errors.New("auth token is empty")

// SignedOutNotice is posted after a sign-out.
var SignedOutNotice = notice.Notice{
	Level: notice.Success,
	Title: "Logged out successfully!",
	Text:  "You have been logged out of the app.",
}

// State is a snapshot of the session.
type State struct {
	User     *service.Profile
	Token    string
	Loading  bool
	LoggedIn bool
}

// Roles returns the signed-in user's roles, or nil when signed out.
func (s State) Roles() []string {
	if s.User == nil {
		return nil
	}
	return s.User.Roles
}

// Manager owns the session state. The zero value is not usable; call New.
type Manager struct {
	store    *credstore.Store
	nav      routing.Navigator
	notifier notice.Notifier
	logger   *slog.Logger

	once sync.Once

	mu      sync.RWMutex
	state   State
	settled bool // set once a sign-in, sign-up or sign-out has decided the state
}

// New creates a Manager in the hydrating state.
func New(store *credstore.Store, nav routing.Navigator, notifier notice.Notifier, logger *slog.Logger) *Manager {
	if notifier == nil {
		notifier = notice.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:    store,
		nav:      nav,
		notifier: notifier,
		logger:   logger,
		state:    State{Loading: true},
	}
}

// Hydrate loads the persisted credential record. Only the first call reads
// the store; later calls return the current state.
// If a sign-in or sign-out already happened, the stored record is not applied.
func (m *Manager) Hydrate(ctx context.Context) State {
	m.once.Do(func() {
		token, profile, ok := m.store.Load(ctx)

		m.mu.Lock()
		defer m.mu.Unlock()
		if !m.settled {
			if ok {
				m.state = State{User: profile, Token: token, LoggedIn: true}
			} else {
				m.state = State{}
			}
			m.logger.Debug("session hydrated", "logged_in", ok)
		}
		m.state.Loading = false
	})
	return m.State()
}

// State returns a copy of the current state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.state
	if s.User != nil {
		u := *s.User
		u.Roles = append([]string(nil), s.User.Roles...)
		s.User = &u
	}
	return s
}

// SignIn persists the profile and token and then publishes them.
// If the profile cannot be written the error is returned and nothing
// changes. If the token cannot be written the stored record is cleared and
// the session is signed out, so a profile is never left paired with another
// user's token.
func (m *Manager) SignIn(ctx context.Context, profile service.Profile, token string) error {
	return m.establish(ctx, profile, token)
}

// SignUp behaves like SignIn for backends that issue a token on sign-up.
func (m *Manager) SignUp(ctx context.Context, profile service.Profile, token string) error {
	return m.establish(ctx, profile, token)
}

func (m *Manager) establish(ctx context.Context, profile service.Profile, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	if len(profile.Roles) == 0 {
		return routing.ErrNoRoles
	}
	if err := m.store.SetProfile(ctx, profile); err != nil {
		return err
	}
	if err := m.store.SetToken(ctx, token); err != nil {
		// The new profile may now sit next to an older token.
		if cerr := m.store.Clear(ctx); cerr != nil {
			err = errors.Join(err, cerr)
		}
		m.mu.Lock()
		m.state = State{}
		m.settled = true
		m.mu.Unlock()
		return err
	}

	p := profile
	p.Roles = append([]string(nil), profile.Roles...)

	m.mu.Lock()
	m.state = State{User: &p, Token: token, LoggedIn: true}
	m.settled = true
	m.mu.Unlock()

	m.logger.Debug("session established", "user", profile.Email, "role", profile.PrimaryRole())
	return nil
}

// SignOut erases the credential record, resets the state, navigates to the
// sign-in screen and posts a notice. The state is reset even when the store
// fails to clear; that error is returned.
func (m *Manager) SignOut(ctx context.Context) error {
	err := m.store.Clear(ctx)

	m.mu.Lock()
	m.state = State{}
	m.settled = true
	m.mu.Unlock()

	if m.nav != nil {
		m.nav.Navigate(routing.SignIn)
	}
	m.notifier.Notify(SignedOutNotice)
	return err
}
