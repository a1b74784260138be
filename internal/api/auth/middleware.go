package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAuth returns middleware rejecting anonymous requests.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentViewer(c).Anonymous() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin returns middleware rejecting non-admin requests. It
// runs after Viewer and checks the freshly materialized identity.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentViewer(c).Admin {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			c.Abort()
			return
		}
		c.Next()
	}
}
