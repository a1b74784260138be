// Package webpush delivers moderation digests as browser push
// notifications. Moderators subscribe from the admin view; the
// subscription registry lives in memory and invalid subscriptions are
// pruned when the push service rejects them.
package webpush

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/charmbracelet/log"
	"github.com/sidenote-app/sidenote/internal/config"
	"github.com/sidenote-app/sidenote/internal/store"
)

// ErrDisabled is returned when push notifications are not configured.
var ErrDisabled = errors.New("webpush notifications are disabled")

// Subscription is one browser push subscription as delivered by the
// Push API's PushSubscription.toJSON().
type Subscription struct {
	ID       string `json:"id"`
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
	CreatedAt time.Time `json:"created_at"`
	UserAgent string    `json:"user_agent,omitempty"`
}

// payload is what the service worker receives.
type payload struct {
	Title string         `json:"title"`
	Body  string         `json:"body"`
	URL   string         `json:"url"`
	Data  map[string]int `json:"data,omitempty"`
}

// Notifier holds the subscription registry and delivers digests.
type Notifier struct {
	config    *config.WebPushConfig
	serverURL string
	siteTitle string

	mu            sync.RWMutex
	subscriptions map[string]*Subscription
}

// New creates a webpush notifier, or nil when push is disabled.
func New(cfg *config.WebPushConfig, serverURL, siteTitle string) *Notifier {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	return &Notifier{
		config:        cfg,
		serverURL:     serverURL,
		siteTitle:     siteTitle,
		subscriptions: make(map[string]*Subscription),
	}
}

// Name implements notify.Notifier.
func (n *Notifier) Name() string { return "webpush" }

// GenerateVAPIDKeys generates a new VAPID key pair.
func GenerateVAPIDKeys() (privateKey, publicKey string, err error) {
	return webpush.GenerateVAPIDKeys()
}

// PublicKey returns the VAPID public key browsers subscribe with.
func (n *Notifier) PublicKey() string {
	return n.config.PublicKey
}

// Subscribe registers a browser subscription. Subscribing the same
// endpoint twice replaces the previous registration.
func (n *Notifier) Subscribe(sub *Subscription) string {
	hash := sha256.Sum256([]byte(sub.Endpoint))
	sub.ID = hex.EncodeToString(hash[:])[:16]
	sub.CreatedAt = time.Now()

	n.mu.Lock()
	n.subscriptions[sub.ID] = sub
	n.mu.Unlock()

	log.Info("registered push subscription", "subscription", sub.ID)
	return sub.ID
}

// Unsubscribe removes a subscription by endpoint.
func (n *Notifier) Unsubscribe(endpoint string) {
	hash := sha256.Sum256([]byte(endpoint))
	id := hex.EncodeToString(hash[:])[:16]

	n.mu.Lock()
	delete(n.subscriptions, id)
	n.mu.Unlock()

	log.Info("removed push subscription", "subscription", id)
}

// Subscribers returns the number of registered subscriptions.
func (n *Notifier) Subscribers() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subscriptions)
}

// NotifyPending implements notify.Notifier. It sends one digest
// notification to every registered subscription.
func (n *Notifier) NotifyPending(_ context.Context, pending []store.PendingSlug) error {
	n.mu.RLock()
	subs := make([]*Subscription, 0, len(n.subscriptions))
	for _, sub := range n.subscriptions {
		subs = append(subs, sub)
	}
	n.mu.RUnlock()

	if len(subs) == 0 {
		log.Debug("no push subscriptions registered, skipping digest")
		return nil
	}

	total := 0
	counts := make(map[string]int, len(pending))
	for _, p := range pending {
		total += p.Count
		counts[p.Slug] = p.Count
	}

	body, err := json.Marshal(payload{
		Title: n.siteTitle,
		Body:  fmt.Sprintf("%d comment(s) on %d page(s) are awaiting moderation", total, len(pending)),
		URL:   n.serverURL + "/admin",
		Data:  counts,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal push payload: %w", err)
	}

	var lastErr error
	for _, sub := range subs {
		if err := n.push(body, sub); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (n *Notifier) push(body []byte, sub *Subscription) error {
	ttl := n.config.TTL
	if ttl <= 0 {
		ttl = 300
	}

	resp, err := webpush.SendNotification(body, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Keys.P256dh,
			Auth:   sub.Keys.Auth,
		},
	}, &webpush.Options{
		Subscriber:      n.config.VAPIDEmail,
		VAPIDPublicKey:  n.config.PublicKey,
		VAPIDPrivateKey: n.config.PrivateKey,
		TTL:             ttl,
	})
	if resp != nil {
		defer resp.Body.Close() //nolint:errcheck
	}
	if err != nil {
		log.Error("failed to send push notification", "subscription", sub.ID, "error", err)
		return err
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		log.Debug("push notification delivered", "subscription", sub.ID, "status", resp.StatusCode)
		return nil
	case resp.StatusCode == 404 || resp.StatusCode == 410:
		// The push service says the subscription no longer exists.
		n.mu.Lock()
		delete(n.subscriptions, sub.ID)
		n.mu.Unlock()
		log.Info("pruned expired push subscription", "subscription", sub.ID, "status", resp.StatusCode)
		return nil
	default:
		return fmt.Errorf("push service returned status %d for subscription %s", resp.StatusCode, sub.ID)
	}
}
