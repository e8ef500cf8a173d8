package blobdeletions

import (
	"context"

	"github.com/dmitrijs2005/savethatagain/internal/server/models"
)

// Repository is the queue of objects that must be removed from blob storage
// after their metadata rows are gone.
type Repository interface {
	Enqueue(ctx context.Context, pathname string) (int64, error)
	Dequeue(ctx context.Context, id int64) error
	ListPending(ctx context.Context, limit int) ([]*models.BlobDeletion, error)
	MarkFailed(ctx context.Context, id int64, reason string) error
	Count(ctx context.Context) (int, error)
}
