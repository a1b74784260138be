package moderation

import (
	"context"
	"errors"
	"testing"

	"github.com/sidenote-app/sidenote/internal/moderation/queue"
	"github.com/sidenote-app/sidenote/internal/store"
	"github.com/sidenote-app/sidenote/internal/store/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() (*Service, *mock.MockDB, *queue.Queue) {
	db := mock.NewMockDB()
	q := queue.New()
	return New(db, q), db, q
}

func viewerFor(user *store.User) *Viewer {
	return &Viewer{UserID: user.ID, Name: user.Name}
}

func TestSubmitAnonymous(t *testing.T) {
	svc, _, _ := newTestService()

	_, _, err := svc.Submit(context.Background(), nil, "post", "hello", nil)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, _, err = svc.Submit(context.Background(), &Viewer{}, "post", "hello", nil)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestSubmitBlockedUser(t *testing.T) {
	svc, db, q := newTestService()
	blocked := db.AddUser("mallory", false, true)

	_, _, err := svc.Submit(context.Background(), viewerFor(blocked), "post", "hello", nil)
	assert.ErrorIs(t, err, ErrAccessDenied)

	// Nothing was written.
	comments, err := db.ListComments(context.Background(), "post", true)
	require.NoError(t, err)
	assert.Empty(t, comments)
	assert.Equal(t, 0, q.Len())
}

func TestSubmitEmptyBody(t *testing.T) {
	svc, db, _ := newTestService()
	user := db.AddUser("alice", false, false)

	for _, body := range []string{"", "   ", "\n\t"} {
		_, _, err := svc.Submit(context.Background(), viewerFor(user), "post", body, nil)
		assert.ErrorIs(t, err, ErrEmptyComment)
	}
}

func TestSubmitPending(t *testing.T) {
	svc, db, q := newTestService()
	user := db.AddUser("alice", false, false)

	comment, status, err := svc.Submit(context.Background(), viewerFor(user), "post", "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, SubmitPending, status)
	assert.False(t, comment.Approved)
	assert.False(t, comment.Rejected)

	// Hidden from regular viewers, visible to admins.
	visible, err := svc.ListComments(context.Background(), viewerFor(user), "post")
	require.NoError(t, err)
	assert.Empty(t, visible)

	all, err := svc.ListComments(context.Background(), &Viewer{UserID: user.ID, Admin: true}, "post")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	assert.Equal(t, 1, q.Len())
	assert.Equal(t, "post", q.Drain()[0].Slug)
}

func TestSubmitTrusted(t *testing.T) {
	svc, db, q := newTestService()
	user := db.AddUser("bob", true, false)

	comment, status, err := svc.Submit(context.Background(), viewerFor(user), "post", "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, SubmitVisible, status)
	// Visibility comes from the trust flag, the comment itself stays
	// unapproved.
	assert.False(t, comment.Approved)
	assert.Equal(t, 0, q.Len())

	visible, err := svc.ListComments(context.Background(), nil, "post")
	require.NoError(t, err)
	assert.Len(t, visible, 1)
}

func TestSubmitTrustedAutoApprove(t *testing.T) {
	svc, db, _ := newTestService()
	user := db.AddUser("bob", true, false)
	require.NoError(t, db.SetSetting(context.Background(), SettingApproveTrusted, true))

	comment, status, err := svc.Submit(context.Background(), viewerFor(user), "post", "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, SubmitVisible, status)
	assert.True(t, comment.Approved)

	stored, err := db.GetComment(context.Background(), comment.ID)
	require.NoError(t, err)
	assert.True(t, stored.Approved)
}

func TestSubmitInvalidReply(t *testing.T) {
	svc, db, _ := newTestService()
	user := db.AddUser("alice", true, false)

	parent, _, err := svc.Submit(context.Background(), viewerFor(user), "post", "parent", nil)
	require.NoError(t, err)

	// Reply on another page.
	_, _, err = svc.Submit(context.Background(), viewerFor(user), "other", "reply", &parent.ID)
	assert.ErrorIs(t, err, store.ErrInvalidReply)

	// Reply to a missing comment.
	missing := uint(999)
	_, _, err = svc.Submit(context.Background(), viewerFor(user), "post", "reply", &missing)
	assert.ErrorIs(t, err, store.ErrInvalidReply)

	// Valid reply on the same page.
	_, _, err = svc.Submit(context.Background(), viewerFor(user), "post", "reply", &parent.ID)
	assert.NoError(t, err)
}

func TestApplyRequiresAdmin(t *testing.T) {
	svc, db, _ := newTestService()
	user := db.AddUser("alice", false, false)

	action, err := ParseUserAction("trust", user.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Apply(context.Background(), nil, action), ErrAccessDenied)
	assert.ErrorIs(t, svc.Apply(context.Background(), viewerFor(user), action), ErrAccessDenied)
}

func TestApplyUnknownAction(t *testing.T) {
	svc, _, _ := newTestService()
	admin := &Viewer{UserID: 1, Admin: true}

	err := svc.Apply(context.Background(), admin, Action{Kind: "vanish", TargetID: 1})
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestApproveAndReject(t *testing.T) {
	svc, db, q := newTestService()
	user := db.AddUser("alice", false, false)
	admin := &Viewer{UserID: user.ID, Admin: true}

	first, _, err := svc.Submit(context.Background(), viewerFor(user), "post", "first", nil)
	require.NoError(t, err)
	second, _, err := svc.Submit(context.Background(), viewerFor(user), "post", "second", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, q.Len())

	approve, err := ParseCommentAction("approve", first.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Apply(context.Background(), admin, approve))

	// One comment still pending, the slug stays queued.
	assert.Equal(t, 1, q.Len())

	reject, err := ParseCommentAction("reject", second.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Apply(context.Background(), admin, reject))
	assert.Equal(t, 0, q.Len())

	visible, err := svc.ListComments(context.Background(), nil, "post")
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, first.ID, visible[0].ID)
}

func TestApproveIsIdempotent(t *testing.T) {
	svc, db, _ := newTestService()
	user := db.AddUser("alice", false, false)
	admin := &Viewer{UserID: user.ID, Admin: true}

	comment, _, err := svc.Submit(context.Background(), viewerFor(user), "post", "hello", nil)
	require.NoError(t, err)

	approve, err := ParseCommentAction("approve", comment.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Apply(context.Background(), admin, approve))
	require.NoError(t, svc.Apply(context.Background(), admin, approve))

	stored, err := db.GetComment(context.Background(), comment.ID)
	require.NoError(t, err)
	assert.True(t, stored.Approved)
	assert.False(t, stored.Rejected)
}

func TestApproveMissingComment(t *testing.T) {
	svc, _, _ := newTestService()
	admin := &Viewer{UserID: 1, Admin: true}

	approve, err := ParseCommentAction("approve", 42)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.Apply(context.Background(), admin, approve), store.ErrNotFound)
}

func TestTrustPreservesBlocked(t *testing.T) {
	svc, db, _ := newTestService()
	user := db.AddUser("mallory", false, true)
	admin := &Viewer{UserID: user.ID, Admin: true}

	trust, err := ParseUserAction("trust", user.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Apply(context.Background(), admin, trust))

	stored, err := db.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, stored.Trusted)
	assert.True(t, stored.Blocked)
}

func TestBlockPreservesTrusted(t *testing.T) {
	svc, db, _ := newTestService()
	user := db.AddUser("bob", true, false)
	admin := &Viewer{UserID: user.ID, Admin: true}

	block, err := ParseUserAction("block", user.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Apply(context.Background(), admin, block))

	stored, err := db.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, stored.Trusted)
	assert.True(t, stored.Blocked)
}

func TestBlockHidesExistingComments(t *testing.T) {
	svc, db, _ := newTestService()
	user := db.AddUser("bob", true, false)
	admin := &Viewer{UserID: user.ID, Admin: true}

	_, _, err := svc.Submit(context.Background(), viewerFor(user), "post", "hello", nil)
	require.NoError(t, err)

	visible, err := svc.ListComments(context.Background(), nil, "post")
	require.NoError(t, err)
	require.Len(t, visible, 1)

	block, err := ParseUserAction("block", user.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Apply(context.Background(), admin, block))

	// The block takes effect at query time, no per-comment rewrite.
	visible, err = svc.ListComments(context.Background(), nil, "post")
	require.NoError(t, err)
	assert.Empty(t, visible)
}

func TestSubmitStoreError(t *testing.T) {
	svc, db, _ := newTestService()
	user := db.AddUser("alice", false, false)
	db.InsertCommentError = store.ErrStoreUnavailable

	_, _, err := svc.Submit(context.Background(), viewerFor(user), "post", "hello", nil)
	assert.ErrorIs(t, err, store.ErrStoreUnavailable)
}

func TestUpdateSetting(t *testing.T) {
	svc, db, _ := newTestService()
	admin := &Viewer{UserID: 1, Admin: true}

	err := svc.UpdateSetting(context.Background(), &Viewer{UserID: 2}, SettingNotification, true)
	assert.ErrorIs(t, err, ErrAccessDenied)

	require.NoError(t, svc.UpdateSetting(context.Background(), admin, SettingNotification, true))
	value, err := db.GetSetting(context.Background(), SettingNotification)
	require.NoError(t, err)
	assert.True(t, value)
}

func TestParseActions(t *testing.T) {
	_, err := ParseCommentAction("trust", 1)
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = ParseUserAction("approve", 1)
	assert.ErrorIs(t, err, ErrUnknownAction)

	action, err := ParseCommentAction("reject", 7)
	require.NoError(t, err)
	assert.True(t, action.TargetsComment())
	assert.Equal(t, uint(7), action.TargetID)

	action, err = ParseUserAction("block", 3)
	require.NoError(t, err)
	assert.False(t, action.TargetsComment())
}

func TestPendingSlugs(t *testing.T) {
	svc, db, _ := newTestService()
	user := db.AddUser("alice", false, false)

	_, _, err := svc.Submit(context.Background(), viewerFor(user), "b-post", "one", nil)
	require.NoError(t, err)
	_, _, err = svc.Submit(context.Background(), viewerFor(user), "a-post", "two", nil)
	require.NoError(t, err)
	_, _, err = svc.Submit(context.Background(), viewerFor(user), "a-post", "three", nil)
	require.NoError(t, err)

	pending, err := svc.PendingSlugs(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "a-post", pending[0].Slug)
	assert.Equal(t, 2, pending[0].Count)
	assert.Equal(t, "b-post", pending[1].Slug)

	db.ListPendingBySlugError = errors.New("boom")
	_, err = svc.PendingSlugs(context.Background())
	assert.Error(t, err)
}
