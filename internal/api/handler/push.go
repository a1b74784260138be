package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sidenote-app/sidenote/internal/api/models"
	"github.com/sidenote-app/sidenote/internal/notify/webpush"
)

// PushPublicKey hands the VAPID public key to the admin view so the
// browser can subscribe.
func (h *Handler) PushPublicKey(c *gin.Context) {
	if h.push == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "push notifications are disabled"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"public_key": h.push.PublicKey()})
}

// PushSubscribe registers the moderator's browser for digest pushes.
func (h *Handler) PushSubscribe(c *gin.Context) {
	if h.push == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "push notifications are disabled"})
		return
	}

	var sub webpush.Subscription
	if err := c.ShouldBindJSON(&sub); err != nil || sub.Endpoint == "" {
		c.JSON(http.StatusBadRequest, models.NewRejection("malformed subscription"))
		return
	}
	sub.UserAgent = c.Request.UserAgent()

	id := h.push.Subscribe(&sub)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "id": id})
}

type pushUnsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

// PushUnsubscribe removes a browser subscription.
func (h *Handler) PushUnsubscribe(c *gin.Context) {
	if h.push == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "push notifications are disabled"})
		return
	}

	var req pushUnsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Endpoint == "" {
		c.JSON(http.StatusBadRequest, models.NewRejection("malformed request body"))
		return
	}

	h.push.Unsubscribe(req.Endpoint)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
