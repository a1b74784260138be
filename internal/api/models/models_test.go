package models

import (
	"context"
	"testing"
	"time"

	"github.com/sidenote-app/sidenote/internal/config"
	"github.com/sidenote-app/sidenote/internal/moderation"
	"github.com/sidenote-app/sidenote/internal/render"
	"github.com/sidenote-app/sidenote/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleComments() []store.Comment {
	author := store.User{Name: "alice", Email: "alice@example.com", Trusted: true}
	author.ID = 7
	c := store.Comment{
		UserID: 7,
		User:   author,
		Slug:   "post",
		Body:   "hello **world**",
	}
	c.ID = 1
	c.CreatedAt = time.Now().Add(-2 * time.Hour)
	return []store.Comment{c}
}

func TestCommentsForRegularViewer(t *testing.T) {
	cv := NewConverter(render.New(nil), &config.GravatarConfig{Enabled: true}, "")

	out := cv.Comments(context.Background(), &moderation.Viewer{UserID: 1}, sampleComments())
	require.Len(t, out, 1)

	assert.Equal(t, "alice", out[0].Author)
	assert.Contains(t, out[0].BodyHTML, "<strong>world</strong>")
	assert.Contains(t, out[0].AvatarURL, "gravatar.com/avatar/")
	assert.NotEmpty(t, out[0].CreatedText)

	// Moderation state stays hidden.
	assert.False(t, out[0].Pending)
	assert.Zero(t, out[0].AuthorID)
	assert.False(t, out[0].Trusted)
}

func TestCommentsForAdminViewer(t *testing.T) {
	cv := NewConverter(render.New(nil), nil, "")

	out := cv.Comments(context.Background(), &moderation.Viewer{UserID: 1, Admin: true}, sampleComments())
	require.Len(t, out, 1)

	assert.True(t, out[0].Pending)
	assert.Equal(t, uint(7), out[0].AuthorID)
	assert.True(t, out[0].Trusted)
}

func TestCommentsAbsoluteDateFormat(t *testing.T) {
	cv := NewConverter(render.New(nil), nil, "2006-01-02")

	out := cv.Comments(context.Background(), nil, sampleComments())
	require.Len(t, out, 1)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, out[0].CreatedText)
}

func TestNewRejection(t *testing.T) {
	r := NewRejection("comment cannot be empty")
	assert.Equal(t, "rejected", r.Status)
	assert.Equal(t, "comment cannot be empty", r.Reason)
}
