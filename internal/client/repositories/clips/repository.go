// Package clips caches the last clip listing in the local SQLite database so
// the CLI can still show it while the server is unreachable.
package clips

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/savethatagain/internal/client/models"
	"github.com/dmitrijs2005/savethatagain/internal/dbx"
)

// ErrNotCached is returned by Get for a clip absent from the cache.
var ErrNotCached = errors.New("clip not cached")

type Repository interface {
	// Insert adds c at position pos of the listing, replacing a clip with the same id.
	Insert(ctx context.Context, c *models.Clip, pos int) error
	Get(ctx context.Context, id string) (*models.Clip, error)
	// List returns the cached clips in listing order.
	List(ctx context.Context) ([]*models.Clip, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const columns = `id, title, timestamp, duration, file_size, blob_url, tags, created_at`

func (r *SQLiteRepository) Insert(ctx context.Context, c *models.Clip, pos int) error {
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	rawTags, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO clips (`+columns+`, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Title, c.Timestamp.UTC().Format(time.RFC3339Nano), c.Duration, c.FileSize,
		c.BlobURL, string(rawTags), c.CreatedAt.UTC().Format(time.RFC3339Nano), pos)
	if err != nil {
		return fmt.Errorf("failed to cache clip %s: %w", c.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.Clip, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM clips WHERE id = ?`, id)
	c, err := scanClip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached clip %s: %w", id, err)
	}
	return c, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*models.Clip, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+columns+` FROM clips ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cached clips: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Clip, 0)
	for rows.Next() {
		c, err := scanClip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cached clip: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cached clips: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM clips WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete cached clip %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM clips`); err != nil {
		return fmt.Errorf("failed to clear clip cache: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanClip(s scanner) (*models.Clip, error) {
	var (
		c                    models.Clip
		timestamp, createdAt string
		rawTags              string
	)
	if err := s.Scan(&c.ID, &c.Title, &timestamp, &c.Duration, &c.FileSize, &c.BlobURL, &rawTags, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if c.Timestamp, err = time.Parse(time.RFC3339Nano, timestamp); err != nil {
		return nil, err
	}
	if c.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(rawTags), &c.Tags); err != nil {
		return nil, err
	}
	return &c, nil
}
