// Package notify delivers moderation digests: whenever pages have
// comments awaiting moderation, every configured channel tells the
// moderators about them.
package notify

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/sidenote-app/sidenote/internal/store"
	"golang.org/x/sync/errgroup"
)

// Notifier delivers one moderation digest over a single channel.
type Notifier interface {
	// Name identifies the channel in logs.
	Name() string
	// NotifyPending delivers a digest for the given backlog. An empty
	// backlog is never passed in.
	NotifyPending(ctx context.Context, pending []store.PendingSlug) error
}

// Dispatcher fans a digest out to all configured channels.
type Dispatcher struct {
	notifiers []Notifier
}

// NewDispatcher creates a dispatcher over the given channels. Nil
// entries are skipped so callers can pass optional channels directly.
func NewDispatcher(notifiers ...Notifier) *Dispatcher {
	d := &Dispatcher{}
	for _, n := range notifiers {
		if n != nil {
			d.notifiers = append(d.notifiers, n)
		}
	}
	return d
}

// Channels returns the number of configured channels.
func (d *Dispatcher) Channels() int {
	return len(d.notifiers)
}

// NotifyPending sends the digest over every channel concurrently. A
// failing channel does not stop the others; the first error is
// returned after all channels finished.
func (d *Dispatcher) NotifyPending(ctx context.Context, pending []store.PendingSlug) error {
	if len(pending) == 0 {
		return nil
	}

	var g errgroup.Group
	for _, n := range d.notifiers {
		n := n
		g.Go(func() error {
			if err := n.NotifyPending(ctx, pending); err != nil {
				log.Error("failed to deliver moderation digest", "channel", n.Name(), "error", err)
				return err
			}
			return nil
		})
	}
	return g.Wait()
}
