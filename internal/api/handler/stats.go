package handler

import (
	"net/http"
	"os"
	"time"

	"github.com/ccoveille/go-safecast"
	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/process"
)

var startedAt = time.Now()

// statsResponse summarizes the service for the admin view.
type statsResponse struct {
	UptimeSeconds int64   `json:"uptime_seconds"`
	MemoryRSS     uint64  `json:"memory_rss_bytes"`
	CPUPercent    float64 `json:"cpu_percent"`
	PendingPages  int     `json:"pending_pages"`
	PendingTotal  int     `json:"pending_comments"`
}

// AdminStats reports process health and the moderation backlog size.
func (h *Handler) AdminStats(c *gin.Context) {
	pending, err := h.svc.PendingSlugs(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := statsResponse{
		UptimeSeconds: int64(time.Since(startedAt).Seconds()),
		PendingPages:  len(pending),
	}
	for _, p := range pending {
		resp.PendingTotal += p.Count
	}

	pid, err := safecast.ToInt32(os.Getpid())
	if err == nil {
		if proc, err := process.NewProcess(pid); err == nil {
			if mem, err := proc.MemoryInfo(); err == nil {
				resp.MemoryRSS = mem.RSS
			}
			if cpu, err := proc.CPUPercent(); err == nil {
				resp.CPUPercent = cpu
			}
		}
	}

	c.JSON(http.StatusOK, resp)
}
