// Package main is the entry point for the taskdesk CLI.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"taskdesk/internal/backend/rest"
	"taskdesk/internal/cli"
	"taskdesk/internal/commands"
	"taskdesk/internal/config"
	"taskdesk/internal/credstore"
	"taskdesk/internal/storage"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, newEnv)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// newEnv opens the credential database under the config directory and
// wires the REST client to it.
func newEnv(ctx context.Context, cfg *config.Config, out, errOut io.Writer) (*commands.Env, error) {
	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	if err := cfg.EnsureDir(); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}
	db, err := storage.OpenSQLite(cfg.CredentialsPath())
	if err != nil {
		return nil, fmt.Errorf("open credentials: %w", err)
	}

	store := credstore.New(db, logger)
	client := rest.New(cfg.BaseURL, store.TokenSource(ctx), rest.Options{
		Logger:  logger,
		Timeout: cfg.RequestTimeout,
	})
	logger.Debug("backend configured", "base_url", cfg.BaseURL, "timeout", cfg.RequestTimeout)

	env := commands.NewEnv(cfg, client, store, out, errOut, logger)
	env.CloseWith(db)
	return env, nil
}
