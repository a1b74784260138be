package handler

import (
	_ "embed"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

//go:embed static/embed.js
var embedJS string

var (
	embedOnce sync.Once
	embedBody string
)

// EmbedScript serves the client script that host pages include to show
// the comment widget. The script needs to know where the service
// lives, so the configured base URL is substituted on first request.
func (h *Handler) EmbedScript(c *gin.Context) {
	embedOnce.Do(func() {
		embedBody = strings.ReplaceAll(embedJS, "__SIDENOTE_HOST__", strings.TrimRight(h.serverURL, "/"))
	})
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "application/javascript; charset=utf-8", []byte(embedBody))
}
