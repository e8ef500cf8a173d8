package services

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// queuedBlob is a blob_deletions row: a pathname whose metadata is gone.
type queuedBlob struct {
	ID       int64
	Pathname string
}

// blobReaper removes queued blobs from storage. A blob that still cannot be
// deleted after all retries stays queued for the janitor.
type blobReaper struct {
	d       Deps
	retries uint64
	base    time.Duration
}

func newBlobReaper(d Deps) *blobReaper {
	return &blobReaper{d: d, retries: 2, base: 200 * time.Millisecond}
}

// deleteWithRetry makes up to retries+1 attempts with exponential backoff.
func (r *blobReaper) deleteWithRetry(ctx context.Context, pathname string) error {
	b := retry.WithMaxRetries(r.retries, retry.NewExponential(r.base))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		if err := r.d.Blobs.Delete(ctx, pathname); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

// dispose deletes every item and reports how many are left in the queue.
// It runs detached from ctx cancellation because the rows are already
// committed.
func (r *blobReaper) dispose(ctx context.Context, items []queuedBlob) (remaining int) {
	ctx = context.WithoutCancel(ctx)
	deletions := r.d.Repos.BlobDeletions(r.d.DB)

	for _, it := range items {
		if err := r.deleteWithRetry(ctx, it.Pathname); err != nil {
			remaining++
			r.d.Metrics.BlobDeleted(false)
			r.d.Logger.Warn(ctx, "blob delete failed, left queued", "pathname", it.Pathname, "error", err)
			if mErr := deletions.MarkFailed(ctx, it.ID, err.Error()); mErr != nil {
				r.d.Logger.Error(ctx, "mark blob deletion failed", "id", it.ID, "error", mErr)
			}
			continue
		}

		r.d.Metrics.BlobDeleted(true)
		if err := deletions.Dequeue(ctx, it.ID); err != nil {
			r.d.Logger.Error(ctx, "dequeue blob deletion failed", "id", it.ID, "error", err)
		}
	}
	return remaining
}
