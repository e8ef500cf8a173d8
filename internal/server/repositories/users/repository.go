package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/savethatagain/internal/server/models"
)

// Repository is the credential store accessor. Lookups return
// common.ErrorNotFound when no row matches; inserts return
// common.ErrAlreadyExists on a duplicate email or Google id.
type Repository interface {
	CreateEmailUser(ctx context.Context, email, passwordHash, name string) (*models.User, error)
	CreateGoogleUser(ctx context.Context, email string, name *string, googleID string, picture *string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	GetForUpdate(ctx context.Context, id string) (*models.User, error)
	Delete(ctx context.Context, id string) error
	RequestDeletion(ctx context.Context, id string, requested, scheduled time.Time) (*models.User, error)
	CancelDeletion(ctx context.Context, id string) error
	UpdatePrivacy(ctx context.Context, id string, settings models.PrivacySettings) (*models.User, error)
	ListDueForDeletion(ctx context.Context, now time.Time, limit int) ([]string, error)
}
