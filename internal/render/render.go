// Package render converts comment bodies from markdown to sanitized
// HTML. Rendered output is cached because comment bodies are immutable
// once stored.
package render

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sidenote-app/sidenote/internal/config"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer turns markdown comment bodies into HTML safe to embed on
// third-party pages.
type Renderer struct {
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
	cache    *htmlCache
}

// New creates a renderer with the given cache configuration.
func New(cfg *config.RenderConfig) *Renderer {
	return &Renderer{
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		policy: commentPolicy(),
		cache:  newHTMLCache(cfg),
	}
}

// commentPolicy allows basic formatting and links, nothing that can
// script or restyle the embedding page.
func commentPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// Comment renders a stored comment body. The cache key includes the
// body hash so edits by a future migration never serve stale HTML.
func (r *Renderer) Comment(ctx context.Context, id uint, body string) string {
	key := commentKey(id, body)
	if cached, ok := r.cache.get(ctx, key); ok {
		return cached
	}

	rendered, err := r.render(body)
	if err != nil {
		log.Error("failed to render comment body", "comment", id, "error", err)
		// Fall back to the sanitized raw body instead of dropping the
		// comment from the listing.
		return r.policy.Sanitize(body)
	}

	if err := r.cache.set(ctx, key, rendered); err != nil {
		log.Warn("failed to cache rendered comment", "comment", id, "error", err)
	}
	return rendered
}

// Preview renders an unsaved body for the live preview endpoint.
// Previews are not cached, they change on every keystroke.
func (r *Renderer) Preview(body string) (string, error) {
	return r.render(body)
}

func (r *Renderer) render(body string) (string, error) {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return r.policy.Sanitize(buf.String()), nil
}

func commentKey(id uint, body string) string {
	sum := sha256.Sum256([]byte(body))
	return fmt.Sprintf("%d:%s", id, hex.EncodeToString(sum[:8]))
}
