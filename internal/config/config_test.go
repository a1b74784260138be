package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMinimal(t *testing.T) {
	path := writeConfig(t, `
session_key: "test-secret"
auth:
  guest:
    enabled: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	// Defaults fill the rest.
	assert.Equal(t, "0.0.0.0:3000", cfg.Listen)
	assert.Equal(t, "http://localhost:3000", cfg.ServerURL)
	assert.Equal(t, "Comments", cfg.PublicTitle)
	assert.Equal(t, "./data/sidenote.db", cfg.Database.Path)
	assert.Equal(t, 5, cfg.Database.Timeout)
	assert.Equal(t, "memory", cfg.Render.CacheBackend)
	assert.Equal(t, 15, cfg.NotifyInterval)
	assert.True(t, cfg.Gravatar.Enabled)
	assert.Equal(t, "identicon", cfg.Gravatar.DefaultImage)
	assert.True(t, cfg.Auth.Guest.Enabled)
	assert.False(t, cfg.Auth.OIDC.Enabled)
}

func TestLoadFull(t *testing.T) {
	path := writeConfig(t, `
listen: "127.0.0.1:8080"
server_url: "https://comments.example.com"
public_title: "My Blog"
session_key: "test-secret"
allow_origins:
  - "https://example.com"
auth:
  oidc:
    enabled: true
    issuer: "https://issuer.example.com"
    client_id: "sidenote"
    client_secret: "secret"
    redirect_url: "https://comments.example.com/auth/oidc/callback"
    admin_group: "moderators"
email:
  enabled: true
  smtp_host: "mail.example.com"
  from_email: "noreply@example.com"
  moderator_emails:
    - "admin@example.com"
date_format: "2006-01-02"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Listen)
	assert.Equal(t, []string{"https://example.com"}, cfg.AllowOrigins)
	assert.Equal(t, "moderators", cfg.Auth.OIDC.AdminGroup)
	assert.Equal(t, []string{"admin@example.com"}, cfg.Email.ModeratorEmails)
	assert.Equal(t, 587, cfg.Email.SMTPPort)
	assert.Equal(t, "2006-01-02", cfg.DateFormat)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing session key",
			content: "auth:\n  guest:\n    enabled: true\n",
			wantErr: "session_key is required",
		},
		{
			name:    "no auth provider",
			content: "session_key: \"x\"\n",
			wantErr: "no authentication provider is enabled",
		},
		{
			name: "oidc without issuer",
			content: `
session_key: "x"
auth:
  oidc:
    enabled: true
    client_id: "id"
    client_secret: "secret"
    redirect_url: "https://x/callback"
`,
			wantErr: "OIDC issuer is required",
		},
		{
			name: "redis cache without addr",
			content: `
session_key: "x"
auth:
  guest:
    enabled: true
render:
  cache_backend: redis
`,
			wantErr: "redis address is required",
		},
		{
			name: "email without moderators",
			content: `
session_key: "x"
auth:
  guest:
    enabled: true
email:
  enabled: true
  smtp_host: "mail.example.com"
  from_email: "noreply@example.com"
`,
			wantErr: "at least one moderator email",
		},
		{
			name: "webpush without keys",
			content: `
session_key: "x"
auth:
  guest:
    enabled: true
webpush:
  enabled: true
  vapid_email: "admin@example.com"
`,
			wantErr: "VAPID keys are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SIDENOTE_LISTEN", "127.0.0.1:9999")
	path := writeConfig(t, `
session_key: "test-secret"
auth:
  guest:
    enabled: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", cfg.Listen)
}
