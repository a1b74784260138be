// Package models holds the JSON shapes served to the embed script and
// the admin view.
package models

import (
	"context"
	"time"

	"github.com/mergestat/timediff"
	"github.com/samber/lo"
	"github.com/sidenote-app/sidenote/internal/config"
	"github.com/sidenote-app/sidenote/internal/gravatar"
	"github.com/sidenote-app/sidenote/internal/moderation"
	"github.com/sidenote-app/sidenote/internal/render"
	"github.com/sidenote-app/sidenote/internal/store"
)

// Comment is one rendered comment in a listing.
type Comment struct {
	ID          uint      `json:"id"`
	Author      string    `json:"author"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	BodyHTML    string    `json:"body_html"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedText string    `json:"created_text"`
	ReplyTo     *uint     `json:"reply_to,omitempty"`
	// Moderation state, only populated for admin viewers.
	Pending  bool `json:"pending,omitempty"`
	Rejected bool `json:"rejected,omitempty"`
	AuthorID uint `json:"author_id,omitempty"`
	Trusted  bool `json:"author_trusted,omitempty"`
	Blocked  bool `json:"author_blocked,omitempty"`
}

// ViewerInfo describes the requesting viewer to the embed script.
type ViewerInfo struct {
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Admin     bool   `json:"admin,omitempty"`
}

// ListResponse is the payload of a comment listing.
type ListResponse struct {
	Slug          string     `json:"slug"`
	Viewer        ViewerInfo `json:"user"`
	AuthProviders []string   `json:"auth,omitempty"`
	Comments      []Comment  `json:"comments"`
}

// Rejection is the structured refusal payload for submissions and
// actions that were turned down.
type Rejection struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// NewRejection builds a refusal payload.
func NewRejection(reason string) Rejection {
	return Rejection{Status: "rejected", Reason: reason}
}

// Converter turns store rows into response shapes.
type Converter struct {
	renderer    *render.Renderer
	gravatarCfg *config.GravatarConfig
	dateFormat  string
}

// NewConverter creates a converter. dateFormat switches the listing to
// absolute timestamps when set; the default is relative wording.
func NewConverter(renderer *render.Renderer, gravatarCfg *config.GravatarConfig, dateFormat string) *Converter {
	return &Converter{
		renderer:    renderer,
		gravatarCfg: gravatarCfg,
		dateFormat:  dateFormat,
	}
}

// Viewer describes the logged-in viewer, with their own avatar derived
// from the session email.
func (cv *Converter) Viewer(viewer *moderation.Viewer, email string) ViewerInfo {
	return ViewerInfo{
		Name:      viewer.Name,
		AvatarURL: gravatar.URL(email, cv.gravatarCfg),
		Admin:     viewer.Admin,
	}
}

// Comments converts a listing. Moderation state is attached only for
// admin viewers.
func (cv *Converter) Comments(ctx context.Context, viewer *moderation.Viewer, comments []store.Comment) []Comment {
	admin := viewer != nil && viewer.Admin
	return lo.Map(comments, func(c store.Comment, _ int) Comment {
		out := Comment{
			ID:          c.ID,
			Author:      c.User.Name,
			AvatarURL:   gravatar.URL(c.User.Email, cv.gravatarCfg),
			BodyHTML:    cv.renderer.Comment(ctx, c.ID, c.Body),
			CreatedAt:   c.CreatedAt,
			CreatedText: cv.createdText(c.CreatedAt),
			ReplyTo:     c.ReplyTo,
		}
		if admin {
			out.Pending = c.Pending()
			out.Rejected = c.Rejected
			out.AuthorID = c.UserID
			out.Trusted = c.User.Trusted
			out.Blocked = c.User.Blocked
		}
		return out
	})
}

func (cv *Converter) createdText(t time.Time) string {
	if cv.dateFormat != "" {
		return t.Format(cv.dateFormat)
	}
	return timediff.TimeDiff(t)
}
