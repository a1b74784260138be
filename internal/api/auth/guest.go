package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sidenote-app/sidenote/internal/store"
)

// GuestProvider is a development login: a display name is enough to
// comment. Guests are never admins; moderation requires a real
// provider.
type GuestProvider struct {
	db store.DB
}

// NewGuestProvider creates the guest provider.
func NewGuestProvider(db store.DB) *GuestProvider {
	return &GuestProvider{db: db}
}

// Name implements Provider.
func (p *GuestProvider) Name() string { return "guest" }

// Login implements Provider. Each login creates a fresh guest identity
// so guests cannot impersonate each other by reusing a name.
func (p *GuestProvider) Login(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	user, err := p.db.UpsertUser(c.Request.Context(), store.Profile{
		Provider:   p.Name(),
		ProviderID: uuid.New().String(),
		Name:       name,
	})
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err) //nolint:errcheck
		return
	}

	if err := saveLogin(c, user.ID, user.Name, "", false); err != nil {
		c.AbortWithError(http.StatusInternalServerError, err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": user.Name})
}

// Callback implements Provider. Guest logins complete in one request.
func (p *GuestProvider) Callback(c *gin.Context) {
	c.Redirect(http.StatusFound, "/")
}
