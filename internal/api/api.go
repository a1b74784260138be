// Package api wires the HTTP surface of the comment service: session
// handling, login providers, and the comment, moderation and
// notification endpoints.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/sidenote-app/sidenote/internal/api/auth"
	"github.com/sidenote-app/sidenote/internal/api/handler"
	"github.com/sidenote-app/sidenote/internal/api/models"
	"github.com/sidenote-app/sidenote/internal/config"
	"github.com/sidenote-app/sidenote/internal/feed"
	"github.com/sidenote-app/sidenote/internal/moderation"
	"github.com/sidenote-app/sidenote/internal/notify/webpush"
	"github.com/sidenote-app/sidenote/internal/render"
	"github.com/sidenote-app/sidenote/internal/store"
)

const defaultSessionMaxAge = 7 * 24 * 60 * 60

// Server is the HTTP server of the comment service.
type Server struct {
	cfg       *config.Config
	ginEngine *gin.Engine
	registry  *auth.Registry
	handler   *handler.Handler
	httpSrv   *http.Server
}

// New assembles the server from its collaborators.
func New(
	ctx context.Context,
	cfg *config.Config,
	db store.DB,
	svc *moderation.Service,
	renderer *render.Renderer,
	push *webpush.Notifier,
) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	registry, err := auth.NewRegistry(ctx, cfg.Auth, db)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth providers: %w", err)
	}

	converter := models.NewConverter(renderer, cfg.Gravatar, cfg.DateFormat)
	feedBuilder := feed.New(db, cfg.ServerURL, cfg.PublicTitle)

	return &Server{
		cfg:       cfg,
		ginEngine: gin.New(),
		registry:  registry,
		handler:   handler.New(svc, converter, renderer, feedBuilder, push, registry, cfg.ServerURL),
	}, nil
}

func (s *Server) setupMiddleware() {
	s.ginEngine.Use(gin.Recovery())
	s.ginEngine.Use(gzip.Gzip(gzip.DefaultCompression))

	// The embed script runs on the pages it comments on, so cross-origin
	// requests with credentials are the normal case.
	if len(s.cfg.AllowOrigins) > 0 {
		s.ginEngine.Use(cors.New(cors.Config{
			AllowOrigins:     s.cfg.AllowOrigins,
			AllowMethods:     []string{"GET", "POST"},
			AllowHeaders:     []string{"Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	maxAge := s.cfg.SessionMaxAge
	if maxAge <= 0 {
		maxAge = defaultSessionMaxAge
	}
	// Cross-site cookies need SameSite=None, which browsers only accept
	// over HTTPS. Plain HTTP deployments fall back to Lax for local
	// development.
	sameSite := http.SameSiteLaxMode
	if isHTTPS(s.cfg.ServerURL) {
		sameSite = http.SameSiteNoneMode
	}
	sessionStore := cookie.NewStore([]byte(s.cfg.SessionKey))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   isHTTPS(s.cfg.ServerURL),
		SameSite: sameSite,
	})
	s.ginEngine.Use(sessions.Sessions("sidenote_session", sessionStore))
	s.ginEngine.Use(auth.Viewer())
}

func (s *Server) setupRoutes() {
	h := s.handler

	s.ginEngine.GET("/health", h.Health)
	s.ginEngine.GET("/embed.js", h.EmbedScript)
	s.ginEngine.GET("/comments/:slug", h.GetComments)
	s.ginEngine.POST("/comments/:slug", h.PostComment)
	s.ginEngine.POST("/markdown", h.MarkdownPreview)
	s.ginEngine.POST("/signout", h.Signout)
	// Unauthenticated so feed readers can poll it.
	s.ginEngine.GET("/feed", h.Feed)

	for _, name := range s.registry.Names() {
		p, _ := s.registry.Get(name)
		group := s.ginEngine.Group("/auth/" + name)
		group.GET("/login", p.Login)
		group.POST("/login", p.Login)
		group.GET("/callback", p.Callback)
	}

	admin := s.ginEngine.Group("/")
	admin.Use(auth.RequireAuth(), auth.RequireAdmin())
	admin.POST("/comment/:id/:action", h.CommentAction)
	admin.POST("/user/:id/:action", h.UserAction)
	admin.POST("/setting/:property/:value", h.Setting)
	admin.GET("/stats", h.AdminStats)
	admin.GET("/push/key", h.PushPublicKey)
	admin.POST("/push/subscribe", h.PushSubscribe)
	admin.POST("/push/unsubscribe", h.PushUnsubscribe)
}

// Run starts the server and blocks until the context is canceled or
// the listener fails.
func (s *Server) Run(ctx context.Context) error {
	s.setupMiddleware()
	s.setupRoutes()

	s.httpSrv = &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.ginEngine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", s.cfg.Listen)
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	}
}

func isHTTPS(serverURL string) bool {
	return len(serverURL) >= 8 && serverURL[:8] == "https://"
}
