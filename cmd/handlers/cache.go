package handlers

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"gemgate/internal/config"
	"gemgate/internal/store"
)

// NewCacheCmd creates the cache command with its subcommands.
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the response cache",
	}

	cmd.AddCommand(newCacheStatsCmd())
	cmd.AddCommand(newCacheCleanupCmd())

	return cmd
}

func openStore() (*store.Store, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return store.NewStore(cfg.App.DataDir)
}

func newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			stats, err := db.GetStats()
			if err != nil {
				return fmt.Errorf("failed to read stats: %w", err)
			}

			fmt.Printf("Cached responses: %d\n", stats.ResponseCount)
			fmt.Printf("Stored contents:  %d\n", stats.ContentCount)
			fmt.Printf("Database size:    %d bytes\n", stats.FileSize)
			if !stats.LastUpdated.IsZero() {
				fmt.Printf("Last updated:     %s\n", stats.LastUpdated.Format(time.RFC3339))
			}
			return nil
		},
	}
}

func newCacheCleanupCmd() *cobra.Command {
	var maxContentAge time.Duration

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete expired responses and old content records",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Cleanup(maxContentAge); err != nil {
				return fmt.Errorf("cleanup failed: %w", err)
			}
			fmt.Println("Cache cleanup complete")
			return nil
		},
	}

	cmd.Flags().DurationVar(&maxContentAge, "max-content-age", 30*24*time.Hour, "delete content records older than this")

	return cmd
}
