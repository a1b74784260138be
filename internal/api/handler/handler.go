// Package handler implements the HTTP endpoints of the comment
// service.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/sidenote-app/sidenote/internal/api/auth"
	"github.com/sidenote-app/sidenote/internal/api/models"
	"github.com/sidenote-app/sidenote/internal/feed"
	"github.com/sidenote-app/sidenote/internal/moderation"
	"github.com/sidenote-app/sidenote/internal/notify/webpush"
	"github.com/sidenote-app/sidenote/internal/render"
	"github.com/sidenote-app/sidenote/internal/store"
)

// Handler bundles the request handlers and their collaborators.
type Handler struct {
	svc       *moderation.Service
	converter *models.Converter
	renderer  *render.Renderer
	feed      *feed.Builder
	push      *webpush.Notifier
	registry  *auth.Registry
	serverURL string
}

// New creates the handler set. push may be nil when webpush is
// disabled.
func New(
	svc *moderation.Service,
	converter *models.Converter,
	renderer *render.Renderer,
	feedBuilder *feed.Builder,
	push *webpush.Notifier,
	registry *auth.Registry,
	serverURL string,
) *Handler {
	return &Handler{
		svc:       svc,
		converter: converter,
		renderer:  renderer,
		feed:      feedBuilder,
		push:      push,
		registry:  registry,
		serverURL: serverURL,
	}
}

// respondError maps workflow and store errors onto HTTP responses.
// Refusals carry a structured reason; internal failures stay opaque.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, moderation.ErrAccessDenied):
		c.JSON(http.StatusForbidden, models.NewRejection("access denied"))
	case errors.Is(err, moderation.ErrEmptyComment):
		c.JSON(http.StatusBadRequest, models.NewRejection("comment cannot be empty"))
	case errors.Is(err, moderation.ErrUnknownAction):
		c.JSON(http.StatusBadRequest, models.NewRejection("unknown action"))
	case errors.Is(err, store.ErrInvalidReply):
		c.JSON(http.StatusBadRequest, models.NewRejection("invalid reply target"))
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, models.NewRejection("not found"))
	case errors.Is(err, store.ErrConstraintViolation):
		c.JSON(http.StatusConflict, models.NewRejection("conflicting state"))
	case errors.Is(err, store.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
	default:
		log.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// parseID parses a positive integer path parameter.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, models.NewRejection("invalid id"))
		return 0, false
	}
	return uint(id), true
}

// GetComments lists the comments of a page as the viewer may see them.
func (h *Handler) GetComments(c *gin.Context) {
	viewer := auth.CurrentViewer(c)
	slug := c.Param("slug")

	comments, err := h.svc.ListComments(c.Request.Context(), viewer, slug)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := models.ListResponse{
		Slug:     slug,
		Comments: h.converter.Comments(c.Request.Context(), viewer, comments),
	}
	if viewer.Anonymous() {
		resp.AuthProviders = h.registry.Names()
	} else {
		resp.Viewer = h.converter.Viewer(viewer, auth.CurrentEmail(c))
	}
	c.JSON(http.StatusOK, resp)
}

type postCommentRequest struct {
	Comment string `json:"comment"`
	ReplyTo *uint  `json:"replyTo,omitempty"`
}

// PostComment submits a new comment on a page.
func (h *Handler) PostComment(c *gin.Context) {
	var req postCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewRejection("malformed request body"))
		return
	}

	viewer := auth.CurrentViewer(c)
	comment, status, err := h.svc.Submit(c.Request.Context(), viewer, c.Param("slug"), req.Comment, req.ReplyTo)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": string(status),
		"id":     comment.ID,
	})
}

// CommentAction approves or rejects a comment.
func (h *Handler) CommentAction(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	action, err := moderation.ParseCommentAction(c.Param("action"), id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.applyAction(c, action)
}

// UserAction trusts or blocks a user.
func (h *Handler) UserAction(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	action, err := moderation.ParseUserAction(c.Param("action"), id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.applyAction(c, action)
}

func (h *Handler) applyAction(c *gin.Context, action moderation.Action) {
	viewer := auth.CurrentViewer(c)
	if err := h.svc.Apply(c.Request.Context(), viewer, action); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Setting updates a boolean site setting.
func (h *Handler) Setting(c *gin.Context) {
	value := c.Param("value") == "1" || c.Param("value") == "true"
	viewer := auth.CurrentViewer(c)
	if err := h.svc.UpdateSetting(c.Request.Context(), viewer, c.Param("property"), value); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Feed serves the moderation backlog as RSS.
func (h *Handler) Feed(c *gin.Context) {
	rss, err := h.feed.RSS(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
}

type previewRequest struct {
	Comment string `json:"comment"`
}

// MarkdownPreview renders an unsaved comment body for the live
// preview.
func (h *Handler) MarkdownPreview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewRejection("malformed request body"))
		return
	}

	html, err := h.renderer.Preview(req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"html": html})
}

// Signout clears the viewer's session.
func (h *Handler) Signout(c *gin.Context) {
	if err := auth.ClearSession(c); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
