// Package gravatar builds avatar URLs for commenters from their login
// email. Emails themselves are never exposed to the embedding page,
// only the hashed URL.
package gravatar

import (
	"crypto/md5"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/sidenote-app/sidenote/internal/config"
)

const baseURL = "https://www.gravatar.com/avatar/"

// URL returns the avatar URL for an email address, or an empty string
// when avatars are disabled or no email is known.
func URL(email string, cfg *config.GravatarConfig) string {
	if cfg == nil || !cfg.Enabled || email == "" {
		return ""
	}

	hash := md5.Sum([]byte(strings.TrimSpace(strings.ToLower(email))))

	params := url.Values{}
	if cfg.DefaultImage != "" {
		params.Set("d", cfg.DefaultImage)
	}
	if cfg.Rating != "" {
		params.Set("r", cfg.Rating)
	}
	if cfg.Size > 0 {
		params.Set("s", strconv.Itoa(cfg.Size))
	}

	u := baseURL + fmt.Sprintf("%x", hash)
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// ValidDefaultImage reports whether the value is a fallback image
// gravatar.com accepts.
func ValidDefaultImage(defaultImage string) bool {
	switch defaultImage {
	case "404", "mp", "identicon", "monsterid", "wavatar", "retro", "robohash", "blank":
		return true
	}
	return false
}

// ValidRating reports whether the value is a gravatar.com content
// rating.
func ValidRating(rating string) bool {
	switch rating {
	case "g", "pg", "r", "x":
		return true
	}
	return false
}

// ValidSize reports whether the pixel size is within gravatar.com
// limits.
func ValidSize(size int) bool {
	return size >= 1 && size <= 2048
}
