package auth

import (
	"context"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sidenote-app/sidenote/internal/config"
	"github.com/sidenote-app/sidenote/internal/store"
	"golang.org/x/oauth2"
)

const oidcStateKey = "oidc_state"

// OIDCProvider logs viewers in against an OpenID Connect issuer.
// Moderator rights come from membership in the configured admin group
// and are decided again on every login.
type OIDCProvider struct {
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
	config   *oauth2.Config
	cfg      *config.OIDCConfig
	db       store.DB
}

// NewOIDCProvider discovers the issuer and prepares the oauth2 flow.
func NewOIDCProvider(ctx context.Context, cfg *config.OIDCConfig, db store.DB) (*OIDCProvider, error) {
	p := OIDCProvider{cfg: cfg, db: db}
	var err error
	p.provider, err = oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, err
	}

	p.config = &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     p.provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email", "groups"},
	}

	p.verifier = p.provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})
	return &p, nil
}

// Name implements Provider.
func (p *OIDCProvider) Name() string {
	if p.cfg.Name != "" {
		return p.cfg.Name
	}
	return "oidc"
}

// Login implements Provider.
func (p *OIDCProvider) Login(c *gin.Context) {
	state := uuid.New().String()
	session := sessions.Default(c)
	session.Set(oidcStateKey, state)
	if err := session.Save(); err != nil {
		c.AbortWithError(http.StatusInternalServerError, err) //nolint:errcheck
		return
	}
	c.Redirect(http.StatusFound, p.config.AuthCodeURL(state))
}

// Callback implements Provider.
func (p *OIDCProvider) Callback(c *gin.Context) {
	ctx := c.Request.Context()

	session := sessions.Default(c)
	state, _ := session.Get(oidcStateKey).(string)
	session.Delete(oidcStateKey)
	if state == "" || c.Query("state") != state {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	oauth2Token, err := p.config.Exchange(ctx, c.Query("code"))
	if err != nil {
		c.AbortWithError(http.StatusUnauthorized, err) //nolint:errcheck
		return
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		c.AbortWithError(http.StatusUnauthorized, err) //nolint:errcheck
		return
	}

	var claims struct {
		Sub               string   `json:"sub"`
		Email             string   `json:"email"`
		Name              string   `json:"name"`
		PreferredUsername string   `json:"preferred_username"`
		Groups            []string `json:"groups"`
	}
	if err := idToken.Claims(&claims); err != nil {
		c.AbortWithError(http.StatusInternalServerError, err) //nolint:errcheck
		return
	}

	name := claims.Name
	if name == "" {
		name = claims.PreferredUsername
	}

	user, err := p.db.UpsertUser(ctx, store.Profile{
		Provider:   p.Name(),
		ProviderID: claims.Sub,
		Name:       name,
		Email:      claims.Email,
	})
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err) //nolint:errcheck
		return
	}

	admin := lo.Contains(claims.Groups, p.cfg.AdminGroup)
	if err := saveLogin(c, user.ID, user.Name, user.Email, admin); err != nil {
		c.AbortWithError(http.StatusInternalServerError, err) //nolint:errcheck
		return
	}
	c.Redirect(http.StatusFound, "/")
}
