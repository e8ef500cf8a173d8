// Package services contains server-side business logic: authentication,
// the account lifecycle, clip management and the background janitor.
// Services return either a result or one of the sentinel errors in
// internal/common, which the route layer maps to HTTP statuses.
package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/savethatagain/internal/dbx"
	"github.com/dmitrijs2005/savethatagain/internal/logging"
	"github.com/dmitrijs2005/savethatagain/internal/server/blob"
	"github.com/dmitrijs2005/savethatagain/internal/server/events"
	"github.com/dmitrijs2005/savethatagain/internal/server/metrics"
	"github.com/dmitrijs2005/savethatagain/internal/server/repositories/repomanager"
)

// Deps are the collaborators shared by every service.
type Deps struct {
	// DB binds repositories outside transactions.
	DB    dbx.DBTX
	Tx    dbx.Transactor
	Repos repomanager.RepositoryManager
	Blobs blob.Store

	// Optional. Zero values fall back to no-op implementations.
	Events  events.Publisher
	Logger  logging.Logger
	Metrics *metrics.Metrics
	Now     func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Events == nil {
		d.Events = events.NewNoop()
	}
	if d.Logger == nil {
		d.Logger = logging.Nop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// publish sends e and only logs a failure; events never fail a request.
func publish(ctx context.Context, d Deps, e events.Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = d.Now().UTC()
	}
	if err := d.Events.Publish(ctx, e); err != nil {
		d.Logger.Warn(ctx, "event publish failed", "type", e.Type, "error", err)
	}
}
