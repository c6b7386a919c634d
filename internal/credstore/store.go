// Package credstore persists the credential record: one auth token and one
// user profile, always set and cleared together.
package credstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"

	"taskdesk/internal/service"
	"taskdesk/internal/storage"
)

// Storage keys.
const (
	TokenKey   = "access_token"
	ProfileKey = "user_profile"
)

// TokenType is reported on tokens handed out through oauth2.TokenSource.
// The backend expects the raw token in the x-auth-token header, not a bearer scheme.
const TokenType = "x-auth-token"

// StorageError wraps a failed read or write of the underlying store.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Store reads and writes the credential record.
// Read failures are logged and reported as absent; write failures are
// logged and returned.
type Store struct {
	kv     storage.KV
	logger *slog.Logger
}

// New creates a Store over kv. A nil logger uses slog.Default().
func New(kv storage.KV, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: kv, logger: logger}
}

// Token returns the stored auth token.
func (s *Store) Token(ctx context.Context) (string, bool) {
	v, ok, err := s.kv.Get(ctx, TokenKey)
	if err != nil {
		s.logger.Warn("error getting API token", "error", err)
		return "", false
	}
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// SetToken stores the auth token.
func (s *Store) SetToken(ctx context.Context, token string) error {
	if err := s.kv.Set(ctx, TokenKey, token); err != nil {
		s.logger.Warn("error setting API token", "error", err)
		return &StorageError{Op: "set", Key: TokenKey, Err: err}
	}
	return nil
}

// Profile returns the stored user profile.
// A profile that cannot be decoded is treated as absent.
func (s *Store) Profile(ctx context.Context) (*service.Profile, bool) {
	v, ok, err := s.kv.Get(ctx, ProfileKey)
	if err != nil {
		s.logger.Warn("error getting user profile", "error", err)
		return nil, false
	}
	if !ok || v == "" {
		return nil, false
	}
	var p service.Profile
	if err := json.Unmarshal([]byte(v), &p); err != nil {
		s.logger.Warn("error decoding user profile", "error", err)
		return nil, false
	}
	return &p, true
}

// SetProfile stores the user profile as JSON.
func (s *Store) SetProfile(ctx context.Context, p service.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return &StorageError{Op: "encode", Key: ProfileKey, Err: err}
	}
	if err := s.kv.Set(ctx, ProfileKey, string(data)); err != nil {
		s.logger.Warn("error setting user profile", "error", err)
		return &StorageError{Op: "set", Key: ProfileKey, Err: err}
	}
	return nil
}

// Clear erases the whole credential record.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Remove(ctx, TokenKey, ProfileKey); err != nil {
		s.logger.Warn("error clearing storage", "error", err)
		return &StorageError{Op: "remove", Key: TokenKey + "," + ProfileKey, Err: err}
	}
	return nil
}

// Load returns the token and profile only when both are present.
func (s *Store) Load(ctx context.Context) (string, *service.Profile, bool) {
	token, ok := s.Token(ctx)
	if !ok {
		return "", nil, false
	}
	p, ok := s.Profile(ctx)
	if !ok {
		return "", nil, false
	}
	return token, p, true
}

// TokenSource adapts the store to oauth2.TokenSource. The source reads the
// store on every call and never fails: an absent token yields an empty AccessToken.
func (s *Store) TokenSource(ctx context.Context) oauth2.TokenSource {
	return tokenSource{ctx: ctx, store: s}
}

type tokenSource struct {
	ctx   context.Context
	store *Store
}

func (ts tokenSource) Token() (*oauth2.Token, error) {
	tok, _ := ts.store.Token(ts.ctx)
	return &oauth2.Token{AccessToken: tok, TokenType: TokenType}, nil
}
