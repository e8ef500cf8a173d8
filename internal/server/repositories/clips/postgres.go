package clips

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/savethatagain/internal/dbx"
	"github.com/dmitrijs2005/savethatagain/internal/server/models"
	"github.com/dmitrijs2005/savethatagain/internal/server/repositories"
)

const clipColumns = `id, user_id, title, "timestamp", duration, blob_url, blob_pathname, file_size, tags, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanClip(row scanner) (*models.AudioClip, error) {
	c := &models.AudioClip{}
	var tags []byte
	err := row.Scan(&c.ID, &c.UserID, &c.Title, &c.Timestamp, &c.Duration, &c.BlobURL, &c.BlobPathname,
		&c.FileSize, &tags, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, repositories.DBError(err)
	}
	c.Tags = []string{}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &c.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	return c, nil
}

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts clip and returns the stored row with its generated id.
func (r *PostgresRepository) Create(ctx context.Context, clip *models.AudioClip) (*models.AudioClip, error) {
	tags := clip.Tags
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	query := `INSERT INTO audio_clips (user_id, title, "timestamp", duration, blob_url, blob_pathname, file_size, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb)
		RETURNING ` + clipColumns

	return scanClip(r.db.QueryRowContext(ctx, query,
		clip.UserID, clip.Title, clip.Timestamp, clip.Duration, clip.BlobURL, clip.BlobPathname, clip.FileSize, string(encoded)))
}

// ListByUser returns a page of the user's clips, newest event first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.AudioClip, error) {
	query := `SELECT ` + clipColumns + ` FROM audio_clips
		WHERE user_id = $1
		ORDER BY "timestamp" DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, repositories.DBError(err)
	}
	defer rows.Close()

	result := []*models.AudioClip{}
	for rows.Next() {
		c, err := scanClip(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.DBError(err)
	}
	return result, nil
}

func (r *PostgresRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM audio_clips WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, repositories.DBError(err)
	}
	return n, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, clipID string) (*models.AudioClip, error) {
	query := `SELECT ` + clipColumns + ` FROM audio_clips WHERE id = $1 AND user_id = $2`
	return scanClip(r.db.QueryRowContext(ctx, query, clipID, userID))
}

// Delete removes the clip row and returns it so the caller can dispose of
// the blob.
func (r *PostgresRepository) Delete(ctx context.Context, userID, clipID string) (*models.AudioClip, error) {
	query := `DELETE FROM audio_clips WHERE id = $1 AND user_id = $2 RETURNING ` + clipColumns
	return scanClip(r.db.QueryRowContext(ctx, query, clipID, userID))
}

// DeleteByUser removes every clip the user owns and returns their blob
// pathnames.
func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `DELETE FROM audio_clips WHERE user_id = $1 RETURNING blob_pathname`, userID)
	if err != nil {
		return nil, repositories.DBError(err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.DBError(err)
	}
	return result, nil
}
