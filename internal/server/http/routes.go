package http

import (
	"github.com/dmitrijs2005/savethatagain/internal/server/metrics"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the engine. A nil m disables request metrics and the
// /metrics endpoint.
func NewRouter(h *Handler, m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(Recovery(h.logger))
	r.Use(RequestID())
	r.Use(AccessLog(h.logger))
	if m != nil {
		r.Use(Metrics(m))
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	r.GET("/health", h.Health)

	authGroup := r.Group("/auth", RateLimit(h.limiter, h.logger))
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)
	authGroup.POST("/google", h.GoogleAuth)

	clips := r.Group("/clips", h.RequireAuth())
	clips.GET("", h.ListClips)
	clips.POST("", h.CreateClip)
	clips.GET("/:id", h.GetClip)
	clips.DELETE("/:id", h.DeleteClip)

	user := r.Group("/user", h.RequireAuth())
	user.GET("/privacy", h.GetPrivacy)
	user.PUT("/privacy", h.UpdatePrivacy)
	user.DELETE("/delete", h.DeleteAccount)
	user.POST("/delete", h.CancelDeletion)
	user.GET("/export", h.Export)

	return r
}
