// Package scheduler runs the periodic moderation digest. On every tick
// it checks the pending backlog and hands it to the notification
// dispatcher, unless digests are switched off via the site settings.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"
	"github.com/sidenote-app/sidenote/internal/moderation"
	"github.com/sidenote-app/sidenote/internal/notify"
	"github.com/sidenote-app/sidenote/internal/store"
)

const defaultInterval = 5 * time.Minute

// Scheduler owns the digest job.
type Scheduler struct {
	gocron     gocron.Scheduler
	db         store.DB
	dispatcher *notify.Dispatcher
	interval   time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a scheduler emitting digests every intervalMinutes.
func New(db store.DB, dispatcher *notify.Dispatcher, intervalMinutes int) (*Scheduler, error) {
	gs, err := gocron.NewScheduler(gocron.WithLogger(newGocronLogger()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	interval := defaultInterval
	if intervalMinutes > 0 {
		interval = time.Duration(intervalMinutes) * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		gocron:     gs,
		db:         db,
		dispatcher: dispatcher,
		interval:   interval,
		ctx:        ctx,
		cancel:     cancel,
	}

	if _, err := gs.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.runDigest),
		gocron.WithName("moderation-digest"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to schedule digest job: %w", err)
	}

	return s, nil
}

// Start starts the digest schedule.
func (s *Scheduler) Start() {
	if s.dispatcher.Channels() == 0 {
		log.Info("no notification channels configured, digest job idle")
	}
	s.gocron.Start()
	log.Info("moderation digest scheduled", "interval", s.interval)
}

// Stop shuts the scheduler down and waits for a running digest.
func (s *Scheduler) Stop() error {
	s.cancel()
	return s.gocron.Shutdown()
}

// runDigest is the scheduled task body.
func (s *Scheduler) runDigest() {
	if err := s.Digest(s.ctx); err != nil {
		log.Error("moderation digest failed", "error", err)
	}
}

// Digest emits one digest immediately. It is also called by the serve
// command for the initial run after startup.
func (s *Scheduler) Digest(ctx context.Context) error {
	if s.dispatcher.Channels() == 0 {
		return nil
	}

	// The kill switch lives in the site settings so admins can silence
	// digests without a restart.
	muted, err := s.db.GetSetting(ctx, moderation.SettingNotification)
	if err != nil {
		return fmt.Errorf("failed to read notification setting: %w", err)
	}
	if muted {
		log.Debug("moderation digests are muted, skipping")
		return nil
	}

	pending, err := s.db.ListPendingBySlug(ctx)
	if err != nil {
		return fmt.Errorf("failed to load pending comments: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	log.Info("emitting moderation digest", "pages", len(pending))
	return s.dispatcher.NotifyPending(ctx, pending)
}
