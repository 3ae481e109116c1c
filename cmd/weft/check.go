package main

import (
	"context"
	"database/sql"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/weftlabs/weft/internal/cli/ui"
	"github.com/weftlabs/weft/internal/config"
)

var checkNoColor bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify project configuration and database connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			ui.WriteError(os.Stderr, ui.ErrorOptions{
				Context: "configuration error",
				Problem: err.Error(),
				NoColor: checkNoColor,
			})
			os.Exit(1)
		}
		ui.WriteSuccess(os.Stdout, "configuration loaded", checkNoColor)

		url := cfg.DatabaseURL()
		if url == "" {
			ui.WriteSuccess(os.Stdout, "no database configured, skipping connectivity check", checkNoColor)
			return nil
		}

		db, err := sql.Open("postgres", url)
		if err != nil {
			ui.WriteError(os.Stderr, ui.ErrorOptions{
				Context: "database error",
				Problem: err.Error(),
				NoColor: checkNoColor,
			})
			os.Exit(1)
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			ui.WriteError(os.Stderr, ui.ErrorOptions{
				Context: "database error",
				Problem: err.Error(),
				Suggestions: []string{
					"check database.url in weft.yml",
					"check the DATABASE_URL environment variable",
				},
				NoColor: checkNoColor,
			})
			os.Exit(1)
		}

		ui.WriteSuccess(os.Stdout, "database reachable", checkNoColor)
		return nil
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkNoColor, "no-color", false, "disable colored output")
}
