package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnqueueAndDrain(t *testing.T) {
	q := New()
	q.Enqueue("b-post")
	q.Enqueue("a-post")
	q.Enqueue("b-post")

	entries := q.Drain()
	assert.Len(t, entries, 2)
	assert.Equal(t, "a-post", entries[0].Slug)
	assert.Equal(t, "b-post", entries[1].Slug)

	// Drain does not clear the queue.
	assert.Equal(t, 2, q.Len())
}

func TestRemove(t *testing.T) {
	q := New()
	q.Enqueue("post")
	q.Remove("post")
	assert.Equal(t, 0, q.Len())

	// Removing an absent slug is a no-op.
	q.Remove("missing")
	assert.Empty(t, q.Drain())
}

func TestReEnqueueKeepsTimestamp(t *testing.T) {
	q := New()
	q.Enqueue("post")
	first := q.Drain()[0].Since
	q.Enqueue("post")
	assert.Equal(t, first, q.Drain()[0].Since)
}

func TestConcurrentAccess(t *testing.T) {
	q := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Enqueue("post")
			q.Drain()
			q.Remove("other")
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, q.Len())
}
