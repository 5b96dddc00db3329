package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"condovia/internal/adapters/persistence/models"
	"condovia/internal/config"
	"condovia/internal/core/services"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "condovia-admin",
		Short: "Operational tooling for the Condovia backend",
	}

	rootCmd.AddCommand(closeVisitsCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// connect loads configuration and opens the database like the server does
func connect() (*gorm.DB, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	return db, cfg, nil
}

// closeVisitsCmd runs the expired-visit sweep on demand, outside the
// nightly cron schedule
func closeVisitsCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "close-visits",
		Short: "Close visits whose scheduled window has expired",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, cfg, err := connect()
			if err != nil {
				return err
			}
			defer config.CloseDatabase()

			svc := services.NewCronService(db, cfg)
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			result, err := svc.SweepVisits(ctx, time.Now(), dryRun)
			if err != nil {
				return err
			}

			if result.DryRun {
				log.Printf("🧹 Dry run: %d of %d visits would be closed", result.Closed, result.Examined)
			} else {
				log.Printf("🧹 Closed %d of %d expired visits (%d failed)", result.Closed, result.Examined, len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be closed without writing")
	return cmd
}

// seedCmd creates the default admin and gate accounts
func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed default accounts into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := connect()
			if err != nil {
				return err
			}
			defer config.CloseDatabase()

			return config.NewSeeder(db).Run()
		},
	}
}

// migrateCmd runs schema migration without starting the server
func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database auto migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := connect()
			if err != nil {
				return err
			}
			defer config.CloseDatabase()

			if err := models.AutoMigrate(db); err != nil {
				return err
			}
			log.Println("✅ Database migration completed")
			return nil
		},
	}
}
