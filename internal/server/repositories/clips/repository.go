package clips

import (
	"context"

	"github.com/dmitrijs2005/savethatagain/internal/server/models"
)

// Repository persists audio clip metadata. Every read and delete is scoped to
// the owning user, so a clip of another user is reported as
// common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, clip *models.AudioClip) (*models.AudioClip, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.AudioClip, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	GetByID(ctx context.Context, userID, clipID string) (*models.AudioClip, error)
	Delete(ctx context.Context, userID, clipID string) (*models.AudioClip, error)
	DeleteByUser(ctx context.Context, userID string) ([]string, error)
}
