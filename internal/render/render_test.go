package render

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRendersMarkdown(t *testing.T) {
	r := New(nil)

	html := r.Comment(context.Background(), 1, "hello **world**")
	assert.Contains(t, html, "<strong>world</strong>")
}

func TestCommentStripsScripts(t *testing.T) {
	r := New(nil)

	html := r.Comment(context.Background(), 2, `hey <script>alert("x")</script> there`)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "hey")
}

func TestCommentLinksAreHardened(t *testing.T) {
	r := New(nil)

	html := r.Comment(context.Background(), 3, "[site](https://example.com)")
	assert.Contains(t, html, `rel="nofollow`)
	assert.Contains(t, html, `target="_blank"`)
}

func TestCommentCacheHit(t *testing.T) {
	r := New(nil)

	first := r.Comment(context.Background(), 4, "cached *body*")
	second := r.Comment(context.Background(), 4, "cached *body*")
	assert.Equal(t, first, second)

	// Same id with a different body must not serve the cached entry.
	changed := r.Comment(context.Background(), 4, "changed *body*")
	assert.NotEqual(t, first, changed)
	assert.Contains(t, changed, "changed")
}

func TestPreview(t *testing.T) {
	r := New(nil)

	html, err := r.Preview("- one\n- two")
	require.NoError(t, err)
	assert.Contains(t, html, "<li>")

	html, err = r.Preview(`<img src=x onerror=alert(1)>`)
	require.NoError(t, err)
	assert.NotContains(t, html, "onerror")
}
