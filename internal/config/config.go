package config

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// Config holds the configuration for the sidenote server and its dependencies.
type Config struct {
	// Listen is the address the sidenote server will listen on.
	Listen string `yaml:"listen" mapstructure:"listen"`
	// ServerURL is the base URL of the sidenote server, used in feeds and notifications.
	ServerURL string `yaml:"server_url" mapstructure:"server_url"`
	// PublicTitle is the site title shown in feeds.
	PublicTitle string `yaml:"public_title" mapstructure:"public_title"`
	// AllowOrigins is the list of origins allowed to embed the comment widget.
	AllowOrigins []string `yaml:"allow_origins" mapstructure:"allow_origins"`

	// Database holds the database configuration.
	Database *DatabaseConfig `yaml:"database" mapstructure:"database"`
	// Auth holds the authentication configuration.
	Auth *AuthConfig `yaml:"auth" mapstructure:"auth"`
	// SessionKey is the key used to encrypt session data.
	SessionKey string `yaml:"session_key" mapstructure:"session_key"`
	// SessionMaxAge is the maximum age of a session in seconds.
	SessionMaxAge int `yaml:"session_max_age" mapstructure:"session_max_age"`

	// Render holds the markdown rendering configuration.
	Render *RenderConfig `yaml:"render" mapstructure:"render"`
	// Email holds the moderation digest email configuration.
	Email *EmailConfig `yaml:"email" mapstructure:"email"`
	// WebPush holds the webpush notification configuration.
	WebPush *WebPushConfig `yaml:"webpush" mapstructure:"webpush"`
	// NotifyInterval is the interval in minutes between moderation digests.
	NotifyInterval int `yaml:"notify_interval" mapstructure:"notify_interval"`
	// Gravatar holds the configuration for commenter avatars.
	Gravatar *GravatarConfig `yaml:"gravatar" mapstructure:"gravatar"`
	// DateFormat is an optional absolute timestamp format for comment listings.
	// When empty, relative timestamps ("3 hours ago") are used.
	DateFormat string `yaml:"date_format" mapstructure:"date_format"`
}

// DatabaseConfig holds the database configuration.
type DatabaseConfig struct {
	// Path is the path to the sqlite database file.
	Path string `yaml:"path" mapstructure:"path"`
	// Timeout is the per-operation timeout in seconds.
	Timeout int `yaml:"timeout" mapstructure:"timeout"`
}

// AuthConfig holds the authentication configuration.
type AuthConfig struct {
	// OIDC holds the OpenID Connect configuration.
	OIDC *OIDCConfig `yaml:"oidc" mapstructure:"oidc"`
	// Guest holds the guest login configuration, intended for development.
	Guest *GuestConfig `yaml:"guest" mapstructure:"guest"`
}

// OIDCConfig holds the OpenID Connect configuration.
type OIDCConfig struct {
	// Enabled indicates whether OIDC authentication is enabled.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Name is the display name for the OIDC provider.
	Name string `yaml:"name" mapstructure:"name"`
	// Issuer is the OIDC issuer URL.
	Issuer string `yaml:"issuer" mapstructure:"issuer"`
	// ClientID is the OIDC client ID.
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	// ClientSecret is the OIDC client secret.
	ClientSecret string `yaml:"client_secret" mapstructure:"client_secret"`
	// RedirectURL is the redirect URL for the oidc flow.
	RedirectURL string `yaml:"redirect_url" mapstructure:"redirect_url"`
	// AdminGroup is the group whose members may moderate comments.
	AdminGroup string `yaml:"admin_group" mapstructure:"admin_group"`
}

// GuestConfig holds the guest login configuration.
type GuestConfig struct {
	// Enabled indicates whether guest logins are allowed.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// RenderConfig holds the markdown rendering configuration.
type RenderConfig struct {
	// CacheBackend selects the render cache backend: "memory" or "redis".
	CacheBackend string `yaml:"cache_backend" mapstructure:"cache_backend"`
	// CacheTTL is the render cache TTL in minutes.
	CacheTTL int `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	// RedisAddr is the redis address, required when CacheBackend is "redis".
	RedisAddr string `yaml:"redis_addr" mapstructure:"redis_addr"`
	// RedisPassword is the redis password.
	RedisPassword string `yaml:"redis_password" mapstructure:"redis_password"`
	// RedisDB is the redis database number.
	RedisDB int `yaml:"redis_db" mapstructure:"redis_db"`
}

// EmailConfig holds the moderation digest email configuration.
type EmailConfig struct {
	// Enabled indicates whether email digests are enabled.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// SMTPHost is the SMTP server host.
	SMTPHost string `yaml:"smtp_host" mapstructure:"smtp_host"`
	// SMTPPort is the SMTP server port.
	SMTPPort int `yaml:"smtp_port" mapstructure:"smtp_port"`
	// Username is the SMTP username.
	Username string `yaml:"username" mapstructure:"username"`
	// Password is the SMTP password.
	Password string `yaml:"password" mapstructure:"password"`
	// FromEmail is the email address from which digests are sent.
	FromEmail string `yaml:"from_email" mapstructure:"from_email"`
	// FromName is the name from which digests are sent.
	FromName string `yaml:"from_name" mapstructure:"from_name"`
	// ModeratorEmails is the list of addresses that receive moderation digests.
	ModeratorEmails []string `yaml:"moderator_emails" mapstructure:"moderator_emails"`
	// UseTLS indicates whether to use STARTTLS for the SMTP connection.
	UseTLS bool `yaml:"use_tls" mapstructure:"use_tls"`
	// UseSSL indicates whether to use SSL for the SMTP connection.
	UseSSL bool `yaml:"use_ssl" mapstructure:"use_ssl"`
	// InsecureSkipVerify indicates whether to skip TLS certificate verification.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
}

// WebPushConfig holds the webpush notification configuration.
type WebPushConfig struct {
	// Enabled indicates whether webpush notifications are enabled.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// VAPIDEmail is the email associated with the VAPID keys.
	VAPIDEmail string `yaml:"vapid_email" mapstructure:"vapid_email"`
	// PublicKey is the VAPID public key.
	PublicKey string `yaml:"public_key" mapstructure:"public_key"`
	// PrivateKey is the VAPID private key.
	PrivateKey string `yaml:"private_key" mapstructure:"private_key"`
	// TTL is the notification time-to-live in seconds.
	TTL int `yaml:"ttl" mapstructure:"ttl"`
}

// GravatarConfig holds the configuration for commenter avatars.
type GravatarConfig struct {
	// Enabled indicates whether Gravatar support is enabled.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// DefaultImage is the default image to use when no Gravatar is found.
	// Valid values: "404", "mp", "identicon", "monsterid", "wavatar", "retro", "robohash", "blank"
	DefaultImage string `yaml:"default_image" mapstructure:"default_image"`
	// Rating is the maximum rating for Gravatar images.
	// Valid values: "g", "pg", "r", "x"
	Rating string `yaml:"rating" mapstructure:"rating"`
	// Size is the size of the Gravatar image in pixels (1-2048).
	Size int `yaml:"size" mapstructure:"size"`
}

// Load reads the configuration from the specified path and returns a Config struct.
// If path is empty, it will use default search paths for config files.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("SIDENOTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.sidenote")
		v.AddConfigPath("/etc/sidenote")
	}

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine, defaults plus env vars still apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		log.Debug("using config file", "file", v.ConfigFileUsed())
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

// setDefaults sets default values for the configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", "0.0.0.0:3000")
	v.SetDefault("server_url", "http://localhost:3000")
	v.SetDefault("public_title", "Comments")
	v.SetDefault("session_max_age", 172800) // 48 hours

	v.SetDefault("database.path", "./data/sidenote.db")
	v.SetDefault("database.timeout", 5)

	v.SetDefault("auth.oidc.enabled", false)
	v.SetDefault("auth.oidc.name", "OIDC")
	v.SetDefault("auth.guest.enabled", false)

	v.SetDefault("render.cache_backend", "memory")
	v.SetDefault("render.cache_ttl", 60)

	v.SetDefault("email.enabled", false)
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.from_name", "Sidenote")
	v.SetDefault("email.use_tls", true)

	v.SetDefault("webpush.enabled", false)
	v.SetDefault("webpush.ttl", 60)

	v.SetDefault("notify_interval", 15)

	v.SetDefault("gravatar.enabled", true)
	v.SetDefault("gravatar.default_image", "identicon")
	v.SetDefault("gravatar.rating", "g")
	v.SetDefault("gravatar.size", 80)
}

// validateConfig validates the configuration.
func validateConfig(c *Config) error {
	if c.SessionKey == "" {
		return fmt.Errorf("session_key is required")
	}

	if c.Database == nil || c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	if c.Auth == nil {
		return fmt.Errorf("missing auth config")
	}

	authEnabled := false
	if c.Auth.OIDC != nil && c.Auth.OIDC.Enabled {
		authEnabled = true
		if c.Auth.OIDC.Issuer == "" {
			return fmt.Errorf("OIDC issuer is required when OIDC is enabled")
		}
		if c.Auth.OIDC.ClientID == "" {
			return fmt.Errorf("OIDC client ID is required when OIDC is enabled")
		}
		if c.Auth.OIDC.ClientSecret == "" {
			return fmt.Errorf("OIDC client secret is required when OIDC is enabled")
		}
		if c.Auth.OIDC.RedirectURL == "" {
			return fmt.Errorf("OIDC redirect URL is required when OIDC is enabled")
		}
	}
	if c.Auth.Guest != nil && c.Auth.Guest.Enabled {
		authEnabled = true
	}
	if !authEnabled {
		return fmt.Errorf("no authentication provider is enabled")
	}

	if c.Render != nil && c.Render.CacheBackend == "redis" && c.Render.RedisAddr == "" {
		return fmt.Errorf("redis address is required when the redis render cache is enabled")
	}

	if c.Email != nil && c.Email.Enabled {
		if c.Email.SMTPHost == "" {
			return fmt.Errorf("SMTP host is required when email digests are enabled")
		}
		if c.Email.FromEmail == "" {
			return fmt.Errorf("from email is required when email digests are enabled")
		}
		if len(c.Email.ModeratorEmails) == 0 {
			return fmt.Errorf("at least one moderator email is required when email digests are enabled")
		}
	}

	if c.WebPush != nil && c.WebPush.Enabled {
		if c.WebPush.PublicKey == "" || c.WebPush.PrivateKey == "" {
			return fmt.Errorf("VAPID keys are required when webpush is enabled (run `sidenote generate-vapid-keys`)")
		}
		if c.WebPush.VAPIDEmail == "" {
			return fmt.Errorf("VAPID email is required when webpush is enabled")
		}
	}

	return nil
}
