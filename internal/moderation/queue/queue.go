// Package queue holds the in-memory set of pages with comments awaiting
// moderation. It is a cache over the store's pending query: losing it on
// restart is fine, notifiers rebuild it from the database.
package queue

import (
	"sort"
	"sync"
	"time"
)

// Entry is one page with at least one pending comment.
type Entry struct {
	Slug string
	// Since is when the slug first entered the queue.
	Since time.Time
}

// Queue is a concurrency-safe slug set.
type Queue struct {
	mu    sync.RWMutex
	slugs map[string]time.Time
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{slugs: make(map[string]time.Time)}
}

// Enqueue registers a slug. Re-enqueueing keeps the original timestamp.
func (q *Queue) Enqueue(slug string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.slugs[slug]; !ok {
		q.slugs[slug] = time.Now()
	}
}

// Remove drops a slug from the queue.
func (q *Queue) Remove(slug string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.slugs, slug)
}

// Drain returns a sorted snapshot of the queue without clearing it.
// Entries leave the queue through Remove once a moderator settled the
// last pending comment of a page.
func (q *Queue) Drain() []Entry {
	q.mu.RLock()
	defer q.mu.RUnlock()
	entries := make([]Entry, 0, len(q.slugs))
	for slug, since := range q.slugs {
		entries = append(entries, Entry{Slug: slug, Since: since})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Slug < entries[j].Slug })
	return entries
}

// Len returns the number of queued slugs.
func (q *Queue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.slugs)
}
