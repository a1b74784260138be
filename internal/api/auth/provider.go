// Package auth holds the login providers and the session middleware
// that turns a session into the per-request viewer identity.
package auth

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sidenote-app/sidenote/internal/config"
	"github.com/sidenote-app/sidenote/internal/store"
)

// Provider is one way to log in. Providers write the session on a
// successful login; everything downstream only reads the session.
type Provider interface {
	// Name is the stable provider identifier, also used in login URLs
	// and as the provider column of the user row.
	Name() string

	// Login starts the login flow.
	Login(c *gin.Context)

	// Callback completes the login flow for redirect-based providers.
	Callback(c *gin.Context)
}

// Registry holds the enabled providers by name.
type Registry struct {
	providers map[string]Provider
	names     []string
}

// NewRegistry builds the provider set from the configuration. At least
// one provider must be enabled.
func NewRegistry(ctx context.Context, cfg *config.AuthConfig, db store.DB) (*Registry, error) {
	if cfg == nil {
		return nil, fmt.Errorf("auth config is required")
	}

	r := &Registry{providers: make(map[string]Provider)}

	if cfg.OIDC != nil && cfg.OIDC.Enabled {
		p, err := NewOIDCProvider(ctx, cfg.OIDC, db)
		if err != nil {
			return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
		}
		r.add(p)
	}

	if cfg.Guest != nil && cfg.Guest.Enabled {
		r.add(NewGuestProvider(db))
	}

	if len(r.providers) == 0 {
		return nil, fmt.Errorf("no authentication provider is enabled")
	}
	return r, nil
}

func (r *Registry) add(p Provider) {
	r.providers[p.Name()] = p
	r.names = append(r.names, p.Name())
}

// Get returns the provider with the given name.
func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

// Names lists the enabled provider names, in registration order.
func (r *Registry) Names() []string {
	return r.names
}
