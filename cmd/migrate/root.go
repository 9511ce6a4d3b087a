package main

import (
	"context"
	"fmt"
	"os"
	"time"

	mongoMigration "mentorbook/internal/migrations/mongo"
	"mentorbook/pkg/config"

	"github.com/spf13/cobra"
)

const JobName = "mongo-migration"

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply Mongo collections, validators and indexes",
	Long:  `Creates the Sessions, Booking_locks and Availabilities collections with their JSON-schema validators and indexes. Safe to re-run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout, _ := cmd.Flags().GetDuration("timeout")
		return runMigration(cmd.Context(), timeout)
	},
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the collections and indexes without connecting",
	Run: func(cmd *cobra.Command, args []string) {
		for name, def := range mongoMigration.Collections() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", name)
			for _, idx := range def.Indexes {
				fmt.Fprintf(cmd.OutOrStdout(), "  index %v\n", idx.Keys)
			}
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Duration("timeout", 120*time.Second, "Upper bound for the whole migration")
	rootCmd.AddCommand(planCmd)
}

func runMigration(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Mongo migration job", "database", cfg.MongoDatabaseName)
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	if err := mongoMigration.RunMigration(ctx, db, cfg.Log); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	cfg.Log.Info("Migration completed successfully")
	return nil
}
