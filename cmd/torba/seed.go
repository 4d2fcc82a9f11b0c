package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/erazemk/torba/internal/auth"
	"github.com/erazemk/torba/internal/config"
	"github.com/erazemk/torba/internal/model"
	"github.com/erazemk/torba/internal/store"
)

func newSeedAdminCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the admin account from ADMIN_USERNAME and ADMIN_PASSWORD",
		Long: `Create the admin account from ADMIN_USERNAME and ADMIN_PASSWORD.

Does nothing if an admin with that username already exists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.config(cmd)
			if err != nil {
				return err
			}

			database, err := openDatabase(cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer database.Close()

			msg, err := seedAdmin(cmd.Context(), database, cfg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}

// seedAdmin creates the configured admin unless it already exists.
func seedAdmin(ctx context.Context, database *sqlx.DB, cfg *config.Config) (string, error) {
	existing, err := store.GetAdminByUsername(ctx, database, cfg.AdminUsername)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return fmt.Sprintf("Admin %q already exists.", cfg.AdminUsername), nil
	}

	if cfg.AdminPassword == "" {
		return "", fmt.Errorf("ADMIN_PASSWORD must be set")
	}
	if err := model.ValidatePassword(cfg.AdminPassword); err != nil {
		return "", fmt.Errorf("ADMIN_PASSWORD: %w", err)
	}

	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return "", err
	}
	if _, err := store.CreateAdmin(ctx, database, cfg.AdminUsername, hash); err != nil {
		return "", err
	}
	return fmt.Sprintf("Admin %q created.", cfg.AdminUsername), nil
}
