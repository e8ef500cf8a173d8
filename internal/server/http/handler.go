// Package http is the JSON API of the server: gin routes, middleware and
// the mapping of service errors to HTTP statuses.
package http

import (
	"time"

	"github.com/dmitrijs2005/savethatagain/internal/logging"
	"github.com/dmitrijs2005/savethatagain/internal/server/ratelimit"
	"github.com/dmitrijs2005/savethatagain/internal/server/services"
)

// DefaultMaxUploadBytes bounds a clip upload when no limit is configured.
const DefaultMaxUploadBytes = 50 << 20

// Handler serves every route. It holds no per-request state.
type Handler struct {
	auth     *services.AuthService
	accounts *services.AccountService
	clips    *services.ClipService
	health   *services.HealthService

	limiter   ratelimit.Limiter
	logger    logging.Logger
	maxUpload int64
	now       func() time.Time
}

// Options are the optional collaborators of a Handler.
type Options struct {
	Limiter        ratelimit.Limiter
	Logger         logging.Logger
	MaxUploadBytes int64
}

func NewHandler(a *services.AuthService, acc *services.AccountService, cl *services.ClipService, hs *services.HealthService, opts Options) *Handler {
	h := &Handler{
		auth:      a,
		accounts:  acc,
		clips:     cl,
		health:    hs,
		limiter:   opts.Limiter,
		logger:    opts.Logger,
		maxUpload: opts.MaxUploadBytes,
		now:       time.Now,
	}
	if h.limiter == nil {
		h.limiter = ratelimit.NoopLimiter{}
	}
	if h.logger == nil {
		h.logger = logging.Nop()
	}
	h.logger = h.logger.With("module", "http")
	if h.maxUpload <= 0 {
		h.maxUpload = DefaultMaxUploadBytes
	}
	return h
}
