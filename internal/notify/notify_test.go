package notify

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/sidenote-app/sidenote/internal/store"
	"github.com/stretchr/testify/assert"
)

type fakeNotifier struct {
	name  string
	err   error
	calls atomic.Int32
}

func (f *fakeNotifier) Name() string { return f.name }

func (f *fakeNotifier) NotifyPending(_ context.Context, _ []store.PendingSlug) error {
	f.calls.Add(1)
	return f.err
}

func TestDispatcherSkipsNilChannels(t *testing.T) {
	d := NewDispatcher(nil, &fakeNotifier{name: "a"}, nil)
	assert.Equal(t, 1, d.Channels())
}

func TestDispatcherFansOut(t *testing.T) {
	a := &fakeNotifier{name: "a"}
	b := &fakeNotifier{name: "b"}
	d := NewDispatcher(a, b)

	pending := []store.PendingSlug{{Slug: "post", Count: 1}}
	assert.NoError(t, d.NotifyPending(context.Background(), pending))
	assert.Equal(t, int32(1), a.calls.Load())
	assert.Equal(t, int32(1), b.calls.Load())
}

func TestDispatcherEmptyBacklog(t *testing.T) {
	a := &fakeNotifier{name: "a"}
	d := NewDispatcher(a)

	assert.NoError(t, d.NotifyPending(context.Background(), nil))
	assert.Equal(t, int32(0), a.calls.Load())
}

func TestDispatcherFailingChannelDoesNotStopOthers(t *testing.T) {
	a := &fakeNotifier{name: "a", err: errors.New("boom")}
	b := &fakeNotifier{name: "b"}
	d := NewDispatcher(a, b)

	pending := []store.PendingSlug{{Slug: "post", Count: 1}}
	assert.Error(t, d.NotifyPending(context.Background(), pending))
	assert.Equal(t, int32(1), b.calls.Load())
}
