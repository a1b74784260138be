package cmd

import (
	"fmt"
	"time"

	"github.com/sidenote-app/sidenote/internal/config"
	"github.com/sidenote-app/sidenote/internal/store"
	"github.com/spf13/cobra"
)

var dbStatsCmd = &cobra.Command{
	Use:   "db-stats",
	Short: "Show database statistics",
	Long:  `Display user and comment counts, including the moderation backlog.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(rootCmdPersistentFlags.ConfigFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		db, err := store.New(cfg.Database.Path, time.Duration(cfg.Database.Timeout)*time.Second)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close() //nolint:errcheck

		stats, err := db.GetStats(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get database stats: %w", err)
		}

		fmt.Println("Database Statistics:")
		fmt.Printf("Users: %d (trusted: %d, blocked: %d)\n", stats.Users, stats.TrustedUsers, stats.BlockedUsers)
		fmt.Printf("Comments: %d\n", stats.Comments)
		fmt.Printf("  Approved: %d\n", stats.ApprovedComments)
		fmt.Printf("  Rejected: %d\n", stats.RejectedComments)
		fmt.Printf("  Pending:  %d\n", stats.PendingComments)

		pending, err := db.ListPendingBySlug(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list pending comments: %w", err)
		}
		if len(pending) > 0 {
			fmt.Println("\nPages awaiting moderation:")
			for _, p := range pending {
				fmt.Printf("  %s: %d comment(s), newest %s\n",
					p.Slug, p.Count, p.CreatedAt.Format("2006-01-02 15:04:05"))
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbStatsCmd)
}
