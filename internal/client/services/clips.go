package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/savethatagain/internal/client/client"
	"github.com/dmitrijs2005/savethatagain/internal/client/models"
	"github.com/dmitrijs2005/savethatagain/internal/client/repositories/clips"
	"github.com/dmitrijs2005/savethatagain/internal/dbx"
)

// ClipService lists, uploads and deletes clips. Listings are cached locally
// and served from the cache while the server is unreachable.
type ClipService interface {
	// List returns a page of clips. fromCache is true when the server could
	// not be reached and the last cached listing was returned instead.
	List(ctx context.Context, limit, offset int) (page *models.ClipPage, fromCache bool, err error)
	Get(ctx context.Context, id string) (*models.Clip, error)
	Upload(ctx context.Context, meta models.NewClip, filename string, audio io.Reader) (*models.Clip, error)
	Delete(ctx context.Context, id string) error
}

type clipService struct {
	client client.Client
	db     dbx.DBTX
	tx     dbx.Transactor
}

func NewClipService(c client.Client, db dbx.DBTX, tx dbx.Transactor) ClipService {
	return &clipService{client: c, db: db, tx: tx}
}

func (s *clipService) List(ctx context.Context, limit, offset int) (*models.ClipPage, bool, error) {
	page, err := s.client.ListClips(ctx, limit, offset)
	if errors.Is(err, client.ErrUnavailable) {
		cached, cerr := s.cachedPage(ctx, limit, offset)
		if cerr != nil {
			return nil, false, errors.Join(err, cerr)
		}
		return cached, true, nil
	}
	if err != nil {
		return nil, false, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := clips.NewSQLiteRepository(tx)
		if offset == 0 {
			if err := repo.Clear(ctx); err != nil {
				return err
			}
		}
		for i, c := range page.Clips {
			if err := repo.Insert(ctx, c, offset+i); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("cache clips: %w", err)
	}
	return page, false, nil
}

func (s *clipService) cachedPage(ctx context.Context, limit, offset int) (*models.ClipPage, error) {
	all, err := clips.NewSQLiteRepository(s.db).List(ctx)
	if err != nil {
		return nil, err
	}
	page := &models.ClipPage{Total: len(all), Limit: limit, Offset: offset, Clips: []*models.Clip{}}
	if offset < len(all) {
		end := min(offset+limit, len(all))
		page.Clips = all[offset:end]
	}
	return page, nil
}

// Get asks the server first and falls back to the cache when it is down.
func (s *clipService) Get(ctx context.Context, id string) (*models.Clip, error) {
	c, err := s.client.GetClip(ctx, id)
	if errors.Is(err, client.ErrUnavailable) {
		cached, cerr := clips.NewSQLiteRepository(s.db).Get(ctx, id)
		if cerr != nil {
			return nil, errors.Join(err, cerr)
		}
		return cached, nil
	}
	return c, err
}

func (s *clipService) Upload(ctx context.Context, meta models.NewClip, filename string, audio io.Reader) (*models.Clip, error) {
	return s.client.UploadClip(ctx, meta, filename, audio)
}

func (s *clipService) Delete(ctx context.Context, id string) error {
	if err := s.client.DeleteClip(ctx, id); err != nil {
		return err
	}
	return clips.NewSQLiteRepository(s.db).Delete(ctx, id)
}
