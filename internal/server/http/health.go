package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Version is reported by /health.
const Version = "1.0.0"

// Health reports dependency state: 200 "healthy" when the database and the
// bucket are reachable, otherwise 503 "degraded".
func (h *Handler) Health(c *gin.Context) {
	r := h.health.Check(c.Request.Context())

	status, code := "healthy", http.StatusOK
	if !r.Healthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": h.now().UTC(),
		"checks": gin.H{
			"database":       r.Database,
			"storage":        r.Storage,
			"deletion_queue": gin.H{"pending": r.DeletionBacklog},
		},
		"performance": gin.H{"responseTimeMs": r.Took.Milliseconds()},
		"version":     Version,
	})
}
