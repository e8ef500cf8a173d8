package services

import (
	"context"
	"time"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// CheckResult is the outcome of one dependency check.
type CheckResult struct {
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// HealthReport is the state of every dependency at one point in time.
type HealthReport struct {
	Healthy         bool
	Database        CheckResult
	Storage         CheckResult
	DeletionBacklog int
	Took            time.Duration
}

// HealthService checks the database and the blob bucket. The deletion
// backlog is informational and never makes the service unhealthy.
type HealthService struct {
	d       Deps
	db      Pinger
	timeout time.Duration
}

// NewHealthService checks db with PingContext; a nil db counts as healthy.
func NewHealthService(d Deps, db Pinger) *HealthService {
	return &HealthService{d: d.withDefaults(), db: db, timeout: 2 * time.Second}
}

func (s *HealthService) Check(ctx context.Context) *HealthReport {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	r := &HealthReport{
		Database: check(func() error {
			if s.db == nil {
				return nil
			}
			return s.db.PingContext(ctx)
		}),
		Storage: check(func() error { return s.d.Blobs.Ping(ctx) }),
	}

	if r.Database.Healthy {
		if n, err := s.d.Repos.BlobDeletions(s.d.DB).Count(ctx); err == nil {
			r.DeletionBacklog = n
		}
	}

	r.Healthy = r.Database.Healthy && r.Storage.Healthy
	r.Took = time.Since(start)
	if !r.Healthy {
		s.d.Logger.Warn(ctx, "health check failed", "database", r.Database.Error, "storage", r.Storage.Error)
	}
	return r
}

// Healthy is Check reduced to a boolean, suitable as a janitor probe.
func (s *HealthService) Healthy(ctx context.Context) bool {
	return s.Check(ctx).Healthy
}

func check(fn func() error) CheckResult {
	if err := fn(); err != nil {
		return CheckResult{Error: err.Error()}
	}
	return CheckResult{Healthy: true}
}
