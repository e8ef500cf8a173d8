package users

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/savethatagain/internal/common"
	"github.com/dmitrijs2005/savethatagain/internal/dbx"
	"github.com/dmitrijs2005/savethatagain/internal/server/models"
	"github.com/dmitrijs2005/savethatagain/internal/server/repositories"
)

const userColumns = `id, email, password_hash, name, google_id, auth_provider, profile_picture, created_at,
		data_sharing_consent, analytics_consent, marketing_consent, last_settings_update,
		account_deletion_requested, account_deletion_scheduled`

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.GoogleID, &u.AuthProvider, &u.ProfilePicture, &u.CreatedAt,
		&u.DataSharingConsent, &u.AnalyticsConsent, &u.MarketingConsent, &u.LastSettingsUpdate,
		&u.AccountDeletionRequested, &u.AccountDeletionScheduled)
	if err != nil {
		return nil, repositories.DBError(err)
	}
	return u, nil
}

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateEmailUser inserts a password-based user. Consent flags take their
// column defaults.
func (r *PostgresRepository) CreateEmailUser(ctx context.Context, email, passwordHash, name string) (*models.User, error) {
	query := `INSERT INTO users (email, password_hash, name, auth_provider)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	return scanUser(r.db.QueryRowContext(ctx, query, email, passwordHash, name, common.ProviderEmail))
}

// CreateGoogleUser inserts a Google-authenticated user without a password.
func (r *PostgresRepository) CreateGoogleUser(ctx context.Context, email string, name *string, googleID string, picture *string) (*models.User, error) {
	query := `INSERT INTO users (email, name, google_id, auth_provider, profile_picture)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	return scanUser(r.db.QueryRowContext(ctx, query, email, name, googleID, common.ProviderGoogle, picture))
}

// GetByEmail matches the email exactly as stored.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE google_id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, googleID))
}

// GetForUpdate reads the user and locks the row until the surrounding
// transaction ends. Outside a transaction it behaves like GetByID.
func (r *PostgresRepository) GetForUpdate(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// Delete removes the user. Owned clips go with it (ON DELETE CASCADE).
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return repositories.DBError(err)
	}
	return repositories.ExpectOneRow(res)
}

// RequestDeletion stamps both deletion timestamps and returns the updated row.
func (r *PostgresRepository) RequestDeletion(ctx context.Context, id string, requested, scheduled time.Time) (*models.User, error) {
	query := `UPDATE users
		SET account_deletion_requested = $2, account_deletion_scheduled = $3
		WHERE id = $1
		RETURNING ` + userColumns

	return scanUser(r.db.QueryRowContext(ctx, query, id, requested, scheduled))
}

// CancelDeletion clears both deletion timestamps. Cancelling when nothing is
// pending is not an error.
func (r *PostgresRepository) CancelDeletion(ctx context.Context, id string) error {
	query := `UPDATE users
		SET account_deletion_requested = NULL, account_deletion_scheduled = NULL
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return repositories.DBError(err)
	}
	return repositories.ExpectOneRow(res)
}

// UpdatePrivacy overwrites all three consent flags and the update timestamp.
func (r *PostgresRepository) UpdatePrivacy(ctx context.Context, id string, s models.PrivacySettings) (*models.User, error) {
	query := `UPDATE users
		SET data_sharing_consent = $2, analytics_consent = $3, marketing_consent = $4, last_settings_update = $5
		WHERE id = $1
		RETURNING ` + userColumns

	return scanUser(r.db.QueryRowContext(ctx, query, id,
		s.DataSharingConsent, s.AnalyticsConsent, s.MarketingConsent, s.LastUpdated))
}

// ListDueForDeletion returns ids of users whose grace period ended at or
// before now, oldest first.
func (r *PostgresRepository) ListDueForDeletion(ctx context.Context, now time.Time, limit int) ([]string, error) {
	query := `SELECT id FROM users
		WHERE account_deletion_scheduled IS NOT NULL AND account_deletion_scheduled <= $1
		ORDER BY account_deletion_scheduled
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, repositories.DBError(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.DBError(err)
	}
	return ids, nil
}
