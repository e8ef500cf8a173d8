package services

import (
	"context"
	"time"
)

// Batch sizes of one janitor sweep.
const (
	sweepBlobBatch    = 100
	sweepAccountBatch = 50
)

// HealthReporter receives the dependency state observed by each sweep.
type HealthReporter interface {
	SetServing(serving bool)
}

// Janitor periodically retries queued blob deletions and purges accounts
// whose deletion grace period has ended.
type Janitor struct {
	d        Deps
	accounts *AccountService
	reaper   *blobReaper
	interval time.Duration
	health   HealthReporter
	probe    func(ctx context.Context) bool
}

// NewJanitor sweeps every interval, or every minute when interval is not
// positive.
func NewJanitor(d Deps, accounts *AccountService, interval time.Duration) *Janitor {
	d = d.withDefaults()
	if interval <= 0 {
		interval = time.Minute
	}
	return &Janitor{d: d, accounts: accounts, reaper: newBlobReaper(d), interval: interval}
}

// ReportHealth makes every tick run probe and pass its result to r.
func (j *Janitor) ReportHealth(r HealthReporter, probe func(ctx context.Context) bool) {
	j.health = r
	j.probe = probe
}

// Run sweeps once immediately and then every interval until ctx is done.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		j.Sweep(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// SweepResult counts what one sweep did.
type SweepResult struct {
	BlobsDeleted   int
	BlobsFailed    int
	AccountsPurged int
}

// Sweep runs one pass.
func (j *Janitor) Sweep(ctx context.Context) SweepResult {
	var res SweepResult
	log := j.d.Logger

	if j.health != nil && j.probe != nil {
		j.health.SetServing(j.probe(ctx))
	}

	deletions := j.d.Repos.BlobDeletions(j.d.DB)
	pending, err := deletions.ListPending(ctx, sweepBlobBatch)
	if err != nil {
		log.Error(ctx, "list pending blob deletions", "error", err)
	} else if len(pending) > 0 {
		items := make([]queuedBlob, 0, len(pending))
		for _, p := range pending {
			items = append(items, queuedBlob{ID: p.ID, Pathname: p.BlobPathname})
		}
		res.BlobsFailed = j.reaper.dispose(ctx, items)
		res.BlobsDeleted = len(items) - res.BlobsFailed
	}

	now := j.d.Now().UTC()
	due, err := j.d.Repos.Users(j.d.DB).ListDueForDeletion(ctx, now, sweepAccountBatch)
	if err != nil {
		log.Error(ctx, "list accounts due for deletion", "error", err)
	}
	for _, id := range due {
		if ctx.Err() != nil {
			break
		}
		purged, err := j.accounts.PurgeDue(ctx, id, now)
		if err != nil {
			log.Error(ctx, "purge account", "user_id", id, "error", err)
			continue
		}
		if !purged {
			continue
		}
		res.AccountsPurged++
		j.d.Metrics.AccountPurged()
	}

	if n, err := deletions.Count(ctx); err == nil {
		j.d.Metrics.SetDeletionQueue(n)
	}

	if res != (SweepResult{}) {
		log.Info(ctx, "janitor sweep",
			"blobs_deleted", res.BlobsDeleted, "blobs_failed", res.BlobsFailed, "accounts_purged", res.AccountsPurged)
	}
	return res
}
