package blobdeletions

import (
	"context"

	"github.com/dmitrijs2005/savethatagain/internal/dbx"
	"github.com/dmitrijs2005/savethatagain/internal/server/models"
	"github.com/dmitrijs2005/savethatagain/internal/server/repositories"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Enqueue(ctx context.Context, pathname string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO blob_deletions (blob_pathname) VALUES ($1) RETURNING id`, pathname).Scan(&id)
	if err != nil {
		return 0, repositories.DBError(err)
	}
	return id, nil
}

// Dequeue removes a finished item. Removing an item that is already gone is
// not an error, since the janitor and a request may race on it.
func (r *PostgresRepository) Dequeue(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM blob_deletions WHERE id = $1`, id); err != nil {
		return repositories.DBError(err)
	}
	return nil
}

// ListPending returns up to limit queued items, least attempted first.
func (r *PostgresRepository) ListPending(ctx context.Context, limit int) ([]*models.BlobDeletion, error) {
	query := `SELECT id, blob_pathname, attempts, last_error, created_at FROM blob_deletions
		ORDER BY attempts, id
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, repositories.DBError(err)
	}
	defer rows.Close()

	var result []*models.BlobDeletion
	for rows.Next() {
		item := &models.BlobDeletion{}
		if err := rows.Scan(&item.ID, &item.BlobPathname, &item.Attempts, &item.LastError, &item.CreatedAt); err != nil {
			return nil, repositories.DBError(err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.DBError(err)
	}
	return result, nil
}

// MarkFailed bumps the attempt counter and records the last failure.
func (r *PostgresRepository) MarkFailed(ctx context.Context, id int64, reason string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE blob_deletions SET attempts = attempts + 1, last_error = $2 WHERE id = $1`, id, reason)
	if err != nil {
		return repositories.DBError(err)
	}
	return repositories.ExpectOneRow(res)
}

// Count reports the size of the backlog.
func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM blob_deletions`).Scan(&n); err != nil {
		return 0, repositories.DBError(err)
	}
	return n, nil
}
