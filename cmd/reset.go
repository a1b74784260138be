package cmd

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/sidenote-app/sidenote/internal/config"
	"github.com/sidenote-app/sidenote/internal/store"
	"github.com/spf13/cobra"
)

var resetCmdFlags struct {
	Yes bool
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Permanently delete all rejected comments",
	Long: `Rejected comments stay in the database so moderation decisions can be
revisited. This command deletes them for good.`,
	Run: reset,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetCmdFlags.Yes, "yes", "y", false, "Skip the confirmation prompt")

	rootCmd.AddCommand(resetCmd)
}

func reset(cmd *cobra.Command, _ []string) {
	cfg, err := config.Load(rootCmdPersistentFlags.ConfigFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if !resetCmdFlags.Yes {
		log.Fatal("refusing to delete without --yes")
	}

	db, err := store.New(cfg.Database.Path, time.Duration(cfg.Database.Timeout)*time.Second)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer db.Close() //nolint:errcheck

	purged, err := db.PurgeRejected(cmd.Context())
	if err != nil {
		log.Fatalf("failed to purge rejected comments: %v", err)
	}

	log.Info("purged rejected comments", "count", purged)
}
