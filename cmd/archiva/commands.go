package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/RhmnKpc/archiva/internal/common"
	"github.com/RhmnKpc/archiva/internal/database"
	"github.com/RhmnKpc/archiva/internal/index"
	"github.com/RhmnKpc/archiva/pkg/config"
	"github.com/RhmnKpc/archiva/pkg/utils"
)

func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}

func newServeCommand(programName, version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := newApplication(configPath(cmd), cmd.Flags())
			if err != nil {
				return err
			}
			defer app.Close()

			return serve(ctx, app, programName, version)
		},
	}
	cmd.Flags().String("host", "0.0.0.0", "address to listen on")
	cmd.Flags().Int("port", 8080, "port to listen on")
	return cmd
}

func newScanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scan [repository...]",
		Short: "Index the content of managed repositories",
		Long:  "Indexes the given repositories, or every repository marked as scanned when none is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(configPath(cmd), cmd.Flags())
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			if len(args) == 0 {
				stats, err := app.scanner.ScanAll(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd, stats)
			}
			for _, repoID := range args {
				stats, err := app.scanner.Scan(ctx, repoID)
				if err != nil {
					return err
				}
				if err := printJSON(cmd, stats); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <repository> <keyword>",
		Short: "Run a general search against a repository index",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(configPath(cmd), cmd.Flags())
			if err != nil {
				return err
			}
			defer app.Close()

			field, _ := cmd.Flags().GetString("field")
			var results []index.SearchResult
			if field == "" {
				results, err = app.search.General(cmd.Context(), args[0], args[1])
			} else {
				results, err = app.search.Advanced(cmd.Context(), args[0], index.SinglePhraseQuery{Field: field, Value: args[1]})
			}
			if err != nil {
				return err
			}
			return printJSON(cmd, results)
		},
	}
	cmd.Flags().String("field", "", "search a single field instead of every field")
	return cmd
}

func newTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Issue an API token signed with the configured secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath(cmd), cmd.Flags())
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("auth.jwt_secret is not configured")
			}

			admin, _ := cmd.Flags().GetBool("admin")
			ttl, _ := cmd.Flags().GetDuration("ttl")
			token, err := utils.GenerateJWT(args[0], admin, cfg.Auth.JWTSecret, ttl)
			if err != nil {
				return fmt.Errorf("failed to issue token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().Bool("admin", false, "grant access to the admin API")
	cmd.Flags().Duration("ttl", 24*time.Hour, "token lifetime")
	return cmd
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath(cmd), cmd.Flags())
			if err != nil {
				return err
			}
			common.SetupLogging(cfg.Logging)

			db, err := common.NewDatabase(&cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			if err := db.Migrate(database.Models()...); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			log.Info().Str("driver", cfg.Database.Driver).Msg("migrations completed")
			return nil
		},
	}
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
