package testutil

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"taskdesk/internal/credstore"
	"taskdesk/internal/service"
	"taskdesk/internal/storage"
)

// DiscardLogger returns a logger that writes nowhere.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SeedSession writes a credential record for p into kv, as a previous sign-in would have.
func SeedSession(t testing.TB, kv storage.KV, p service.Profile, token string) {
	t.Helper()
	store := credstore.New(kv, DiscardLogger())
	ctx := context.Background()
	if err := store.SetProfile(ctx, p); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	if err := store.SetToken(ctx, token); err != nil {
		t.Fatalf("seed token: %v", err)
	}
}
