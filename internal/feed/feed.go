// Package feed exposes the moderation backlog as an RSS feed, so
// moderators can follow pending comments from a feed reader instead of
// polling the admin view.
package feed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"github.com/sidenote-app/sidenote/internal/store"
)

// Builder renders the pending-comment feed.
type Builder struct {
	db        store.DB
	serverURL string
	title     string
}

// New creates a feed builder. serverURL is the public base URL of the
// comment service, title the public site title.
func New(db store.DB, serverURL, title string) *Builder {
	return &Builder{
		db:        db,
		serverURL: strings.TrimRight(serverURL, "/"),
		title:     title,
	}
}

// RSS returns the moderation backlog as an RSS 2.0 document. Each page
// with pending comments becomes one item, carrying the pending count.
func (b *Builder) RSS(ctx context.Context) (string, error) {
	pending, err := b.db.ListPendingBySlug(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load pending comments: %w", err)
	}

	feed := &feeds.Feed{
		Title:       fmt.Sprintf("%s: new comments", b.title),
		Link:        &feeds.Link{Href: b.serverURL},
		Description: "Comments awaiting moderation",
		Created:     time.Now(),
	}

	for _, p := range pending {
		feed.Items = append(feed.Items, &feeds.Item{
			Title:       fmt.Sprintf("%d new comment(s) on %s", p.Count, p.Slug),
			Link:        &feeds.Link{Href: fmt.Sprintf("%s/admin#%s", b.serverURL, p.Slug)},
			Description: fmt.Sprintf("Page %s has %d comment(s) awaiting moderation.", p.Slug, p.Count),
			// The latest pending comment id keeps the guid stable per
			// slug while new comments re-surface the item as unread.
			Id:      fmt.Sprintf("%s/comments/%s#%d", b.serverURL, p.Slug, p.CommentID),
			Created: p.CreatedAt,
		})
	}

	return feed.ToRss()
}
