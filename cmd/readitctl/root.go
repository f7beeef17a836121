package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sundayezeilo/readit/internal/app"
	"github.com/sundayezeilo/readit/internal/auth"
	"github.com/sundayezeilo/readit/internal/categories"
	"github.com/sundayezeilo/readit/internal/config"
	"github.com/sundayezeilo/readit/internal/db/migrations"
)

func newRootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:          "readitctl",
		Short:        "Administrative tasks for the Readit service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.LoadEnv()
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")

	logger := func() *slog.Logger { return app.NewLogger(logLevel) }

	cmd.AddCommand(newMigrateCmd(logger))
	cmd.AddCommand(newTokenCmd())
	cmd.AddCommand(newColorsCmd())
	return cmd
}

func newMigrateCmd(logger func() *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbCfg, err := config.LoadDatabase()
			if err != nil {
				return err
			}

			log := logger()
			pool, err := app.ConnectDatabase(cmd.Context(), &config.Config{Database: *dbCfg}, log)
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := migrations.Apply(cmd.Context(), pool, log)
			if err != nil {
				return err
			}

			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
				return nil
			}
			for _, v := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", v)
			}
			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage session tokens",
	}
	cmd.AddCommand(newTokenIssueCmd())
	return cmd
}

func newTokenIssueCmd() *cobra.Command {
	var (
		user string
		ttl  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Print a signed session token for a user",
		Example: `  readitctl token issue --user 0192f0c4-7d7a-7cc1-9a9c-3f6c2f5d8e10
  readitctl token issue --user 0192f0c4-7d7a-7cc1-9a9c-3f6c2f5d8e10 --ttl 24h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(user)
			if err != nil || userID == uuid.Nil {
				return fmt.Errorf("--user must be a non-nil uuid")
			}

			authCfg, err := config.LoadAuth()
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = authCfg.TokenTTL
			}

			resolver, err := auth.NewJWTResolver(auth.Config{
				Secret:     authCfg.JWTSecret,
				CookieName: authCfg.CookieName,
			})
			if err != nil {
				return err
			}

			token, err := resolver.Issue(userID, ttl)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user id the token authenticates")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to AUTH_TOKEN_TTL)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newColorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "colors",
		Short: "Print the category color palette",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, c := range categories.DefaultPalette() {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}
}
