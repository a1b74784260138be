package auth

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sidenote-app/sidenote/internal/moderation"
)

// Session keys. The user id references the store row; admin is the
// provider's verdict at login time and is re-read on every request.
const (
	sessionUserID  = "user_id"
	sessionName    = "user_name"
	sessionEmail   = "user_email"
	sessionAdmin   = "user_is_admin"
	viewerCtxKey   = "viewer"
	viewerEmailKey = "viewer_email"
)

// saveLogin writes a completed login into the session.
func saveLogin(c *gin.Context, userID uint, name, email string, admin bool) error {
	session := sessions.Default(c)
	session.Set(sessionUserID, userID)
	session.Set(sessionName, name)
	session.Set(sessionEmail, email)
	session.Set(sessionAdmin, admin)
	return session.Save()
}

// ClearSession signs the viewer out.
func ClearSession(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	return session.Save()
}

// Viewer returns middleware that materializes the viewer identity from
// the session. Requests without a session carry an anonymous viewer;
// handlers decide themselves whether that is acceptable.
func Viewer() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		viewer := &moderation.Viewer{}
		if id, ok := session.Get(sessionUserID).(uint); ok {
			viewer.UserID = id
			viewer.Name = sessionString(session, sessionName)
			viewer.Admin = sessionBool(session, sessionAdmin)
			SetEmail(c, sessionString(session, sessionEmail))
		}
		SetViewer(c, viewer)
		c.Next()
	}
}

// SetViewer attaches the viewer identity to the request context.
func SetViewer(c *gin.Context, viewer *moderation.Viewer) {
	c.Set(viewerCtxKey, viewer)
}

// CurrentViewer returns the viewer materialized by the Viewer
// middleware.
func CurrentViewer(c *gin.Context) *moderation.Viewer {
	if v, ok := c.Get(viewerCtxKey); ok {
		if viewer, ok := v.(*moderation.Viewer); ok {
			return viewer
		}
	}
	return &moderation.Viewer{}
}

// SetEmail attaches the viewer's email to the request context.
func SetEmail(c *gin.Context, email string) {
	c.Set(viewerEmailKey, email)
}

// CurrentEmail returns the logged-in viewer's email, if any.
func CurrentEmail(c *gin.Context) string {
	if v, ok := c.Get(viewerEmailKey); ok {
		if email, ok := v.(string); ok {
			return email
		}
	}
	return ""
}

func sessionString(session sessions.Session, key string) string {
	if v, ok := session.Get(key).(string); ok {
		return v
	}
	return ""
}

func sessionBool(session sessions.Session, key string) bool {
	if v, ok := session.Get(key).(bool); ok {
		return v
	}
	return false
}
