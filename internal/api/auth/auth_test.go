package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/sidenote-app/sidenote/internal/config"
	"github.com/sidenote-app/sidenote/internal/moderation"
	"github.com/sidenote-app/sidenote/internal/store/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, db *mock.MockDB) (*gin.Engine, *Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry, err := NewRegistry(context.Background(), &config.AuthConfig{
		Guest: &config.GuestConfig{Enabled: true},
	}, db)
	require.NoError(t, err)

	router := gin.New()
	router.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	router.Use(Viewer())

	guest, ok := registry.Get("guest")
	require.True(t, ok)
	router.POST("/auth/guest/login", guest.Login)
	router.POST("/signout", func(c *gin.Context) {
		require.NoError(t, ClearSession(c))
		c.Status(http.StatusOK)
	})
	router.GET("/whoami", func(c *gin.Context) {
		viewer := CurrentViewer(c)
		c.JSON(http.StatusOK, gin.H{
			"anonymous": viewer.Anonymous(),
			"name":      viewer.Name,
			"admin":     viewer.Admin,
		})
	})

	return router, registry
}

func TestRegistryRequiresProvider(t *testing.T) {
	_, err := NewRegistry(context.Background(), &config.AuthConfig{}, mock.NewMockDB())
	assert.ErrorContains(t, err, "no authentication provider is enabled")

	_, err = NewRegistry(context.Background(), nil, mock.NewMockDB())
	assert.Error(t, err)
}

func TestRegistryNames(t *testing.T) {
	registry, err := NewRegistry(context.Background(), &config.AuthConfig{
		Guest: &config.GuestConfig{Enabled: true},
	}, mock.NewMockDB())
	require.NoError(t, err)
	assert.Equal(t, []string{"guest"}, registry.Names())

	_, ok := registry.Get("guest")
	assert.True(t, ok)
	_, ok = registry.Get("oidc")
	assert.False(t, ok)
}

func guestLogin(t *testing.T, router *gin.Engine, name string) []*http.Cookie {
	t.Helper()
	form := url.Values{"name": {name}}
	req := httptest.NewRequest(http.MethodPost, "/auth/guest/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Result().Cookies()
}

func TestGuestLoginCreatesSession(t *testing.T) {
	db := mock.NewMockDB()
	router, _ := newTestRouter(t, db)

	cookies := guestLogin(t, router, "alice")

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Contains(t, w.Body.String(), `"anonymous":false`)
	assert.Contains(t, w.Body.String(), `"name":"alice"`)
	assert.Contains(t, w.Body.String(), `"admin":false`)

	// A user row was created.
	user, err := db.GetUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Name)
	assert.Equal(t, "guest", user.Provider)
}

func TestGuestLoginRequiresName(t *testing.T) {
	router, _ := newTestRouter(t, mock.NewMockDB())

	req := httptest.NewRequest(http.MethodPost, "/auth/guest/login", strings.NewReader("name=  "))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnonymousViewer(t *testing.T) {
	router, _ := newTestRouter(t, mock.NewMockDB())

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"anonymous":true`)
}

func TestSignoutClearsSession(t *testing.T) {
	db := mock.NewMockDB()
	router, _ := newTestRouter(t, db)
	cookies := guestLogin(t, router, "alice")

	req := httptest.NewRequest(http.MethodPost, "/signout", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// The replacement cookie no longer authenticates.
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"anonymous":true`)
}

func TestRequireAdminMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		SetViewer(c, &moderation.Viewer{UserID: 1, Name: "alice"})
	})
	router.GET("/admin", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		SetViewer(c, &moderation.Viewer{})
	})
	router.GET("/private", RequireAuth(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
