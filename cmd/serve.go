package cmd

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sidenote-app/sidenote/internal/api"
	"github.com/sidenote-app/sidenote/internal/config"
	"github.com/sidenote-app/sidenote/internal/moderation"
	"github.com/sidenote-app/sidenote/internal/moderation/queue"
	"github.com/sidenote-app/sidenote/internal/notify"
	"github.com/sidenote-app/sidenote/internal/notify/email"
	"github.com/sidenote-app/sidenote/internal/notify/webpush"
	"github.com/sidenote-app/sidenote/internal/render"
	"github.com/sidenote-app/sidenote/internal/scheduler"
	"github.com/sidenote-app/sidenote/internal/store"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the sidenote server",
	Long:  `Start the sidenote server to accept and moderate comments.`,
	Example: `sidenote serve --config config.yml
sidenote serve -c /path/to/config.yml --log-level debug`,
	Run: startServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func startServer(cmd *cobra.Command, _ []string) {
	cfg, err := config.Load(rootCmdPersistentFlags.ConfigFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := store.New(cfg.Database.Path, time.Duration(cfg.Database.Timeout)*time.Second)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database", "error", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pendingQueue := queue.New()
	svc := moderation.New(db, pendingQueue)
	renderer := render.New(cfg.Render)

	push := webpush.New(cfg.WebPush, cfg.ServerURL, cfg.PublicTitle)
	var channels []notify.Notifier
	if em := email.New(cfg.Email, cfg.ServerURL, cfg.PublicTitle); em != nil {
		channels = append(channels, em)
	}
	if push != nil {
		channels = append(channels, push)
	}
	dispatcher := notify.NewDispatcher(channels...)

	sched, err := scheduler.New(db, dispatcher, cfg.NotifyInterval)
	if err != nil {
		log.Fatalf("failed to create scheduler: %v", err)
	}
	sched.Start()
	defer func() {
		if err := sched.Stop(); err != nil {
			log.Error("failed to stop scheduler", "error", err)
		}
	}()

	// Warm the pending queue from the store so a restart does not lose
	// the moderation backlog.
	if pending, err := db.ListPendingBySlug(ctx); err != nil {
		log.Error("failed to load pending backlog", "error", err)
	} else {
		for _, p := range pending {
			pendingQueue.Enqueue(p.Slug)
		}
		log.Info("moderation backlog loaded", "pages", len(pending))
	}

	server, err := api.New(ctx, cfg, db, svc, renderer, push)
	if err != nil {
		log.Fatalf("failed to create API server: %v", err)
	}

	log.Info("sidenote started", "listen", cfg.Listen, "server_url", cfg.ServerURL)
	if err := server.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
	log.Info("shut down gracefully")
}
