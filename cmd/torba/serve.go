package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/erazemk/torba/internal/api"
	"github.com/erazemk/torba/internal/auth"
	"github.com/erazemk/torba/internal/config"
	"github.com/erazemk/torba/internal/db"
	"github.com/erazemk/torba/internal/model"
	"github.com/erazemk/torba/internal/store"
)

func newServeCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Run the HTTP API server.

The database and its schema are created if missing. On first run an admin
account is created from ADMIN_USERNAME and ADMIN_PASSWORD; if no password is
set, one is generated and printed once.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.config(cmd)
			if err != nil {
				return err
			}
			return serve(cmd.OutOrStdout(), cfg)
		},
	}
	cmd.Flags().IntVarP(&opts.port, "port", "p", config.DefaultPort, "listen port (overrides PORT)")
	return cmd
}

func serve(out io.Writer, cfg *config.Config) error {
	closeLog, err := setupLogger(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	database, err := openDatabase(cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		return err
	}
	defer database.Close()

	slog.Info("database ready", "path", cfg.DatabasePath)

	ctx := context.Background()

	password, generated, err := bootstrapAdmin(ctx, database, cfg)
	if err != nil {
		slog.Error("failed to create admin account", "error", err)
		return err
	}
	if generated {
		printInitResult(out, cfg.AdminUsername, password)
	}

	// Fall back to the secret persisted in the database (auto-generated on first run).
	secret := cfg.JWTSecret
	if secret == "" {
		secret, err = store.GetJWTSecret(ctx, database)
		if err != nil {
			slog.Error("failed to get JWT secret", "error", err)
			return err
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	issuer := auth.NewIssuer(secret, cfg.JWTExpiry)
	handler := api.LoggingMiddleware(api.NewRouter(database, issuer, reg))

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr(), "token_expiry", issuer.Expiry())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		return err
	}

	slog.Info("server stopped, closing database")
	return nil
}

// openDatabase opens the database and ensures the schema exists (idempotent).
func openDatabase(path string) (*sqlx.DB, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// bootstrapAdmin creates the configured admin account if no admin exists
// yet. When no password is configured one is generated and returned with
// generated set.
func bootstrapAdmin(ctx context.Context, database *sqlx.DB, cfg *config.Config) (password string, generated bool, err error) {
	n, err := store.CountAdmins(ctx, database)
	if err != nil {
		return "", false, err
	}
	if n > 0 {
		return "", false, nil
	}

	password = cfg.AdminPassword
	if password == "" {
		password, err = generatePassword(16)
		if err != nil {
			return "", false, fmt.Errorf("generating password: %w", err)
		}
		generated = true
	}
	if err := model.ValidatePassword(password); err != nil {
		return "", false, fmt.Errorf("ADMIN_PASSWORD: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", false, err
	}
	if _, err := store.CreateAdmin(ctx, database, cfg.AdminUsername, hash); err != nil {
		return "", false, err
	}

	slog.Info("admin account created", "user", cfg.AdminUsername)
	return password, generated, nil
}

// printInitResult shows a generated admin password. It is printed once and
// never logged.
func printInitResult(w io.Writer, username, password string) {
	fmt.Fprintf(w, "Created admin %q with generated password:\n\n    %s\n\n", username, password)
	fmt.Fprintln(w, "Store it now. Set ADMIN_PASSWORD to choose your own on a fresh database.")
}

// passwordAlphabet has 64 symbols so a random byte maps onto it without bias.
const passwordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// generatePassword returns a random password of n characters.
func generatePassword(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = passwordAlphabet[int(b)%len(passwordAlphabet)]
	}
	return string(buf), nil
}
