package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/savethatagain/internal/common"
	"github.com/dmitrijs2005/savethatagain/internal/dbx"
	"github.com/dmitrijs2005/savethatagain/internal/server/events"
	"github.com/dmitrijs2005/savethatagain/internal/server/models"
	"github.com/google/uuid"
)

// Paging bounds for clip listings.
const (
	DefaultClipLimit = 50
	MaxClipLimit     = 1000
)

// ClipUpload is a new clip as received from the client.
type ClipUpload struct {
	Title     string
	Timestamp time.Time
	// Duration in milliseconds.
	Duration    int
	Tags        []string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ClipPage is one page of a user's clips plus the total count.
type ClipPage struct {
	Clips  []*models.AudioClip
	Total  int
	Limit  int
	Offset int
}

// ClipService manages clip metadata and the audio stored for it. Every
// operation is scoped to the calling user.
type ClipService struct {
	d      Deps
	reaper *blobReaper
}

func NewClipService(d Deps) *ClipService {
	d = d.withDefaults()
	return &ClipService{d: d, reaper: newBlobReaper(d)}
}

// List returns clips newest event first.
func (s *ClipService) List(ctx context.Context, userID string, limit, offset int) (*ClipPage, error) {
	if limit < 1 || limit > MaxClipLimit || offset < 0 {
		return nil, common.Invalid("Invalid pagination parameters")
	}

	repo := s.d.Repos.Clips(s.d.DB)

	clips, err := repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list clips: %w", err)
	}
	total, err := repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count clips: %w", err)
	}

	return &ClipPage{Clips: clips, Total: total, Limit: limit, Offset: offset}, nil
}

// Get returns the clip if the user owns it. Foreign, missing and malformed
// ids are all common.ErrorNotFound.
func (s *ClipService) Get(ctx context.Context, userID, clipID string) (*models.AudioClip, error) {
	if _, err := uuid.Parse(clipID); err != nil {
		return nil, common.ErrorNotFound
	}
	c, err := s.d.Repos.Clips(s.d.DB).GetByID(ctx, userID, clipID)
	if err != nil {
		return nil, fmt.Errorf("get clip: %w", err)
	}
	return c, nil
}

// BlobPathname builds the storage path of a clip:
// audio/<userID>/<timestamp>-<random>.m4a.
func BlobPathname(userID string, ts time.Time) (string, error) {
	suffix, err := common.MakeRandHexString(4)
	if err != nil {
		return "", err
	}
	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(ts.UTC().Format("2006-01-02T15:04:05.000Z"))
	return fmt.Sprintf("audio/%s/%s-%s.m4a", userID, stamp, suffix), nil
}

// Create stores the audio and then the metadata row. When the row cannot be
// written the stored audio is removed again, or queued for removal.
func (s *ClipService) Create(ctx context.Context, userID string, up ClipUpload) (*models.AudioClip, error) {
	if up.Body == nil {
		return nil, common.Invalid("Audio file is required")
	}
	if up.Title == "" || up.Timestamp.IsZero() {
		return nil, common.Invalid("Title, timestamp, and duration are required")
	}
	if up.Duration < 0 {
		return nil, common.Invalid("Duration must not be negative")
	}

	pathname, err := BlobPathname(userID, up.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("blob pathname: %w", err)
	}

	obj, err := s.d.Blobs.Put(ctx, pathname, up.ContentType, up.Body, up.Size)
	if err != nil {
		return nil, fmt.Errorf("upload audio: %w", err)
	}

	tags := up.Tags
	if tags == nil {
		tags = []string{}
	}

	clip, err := s.d.Repos.Clips(s.d.DB).Create(ctx, &models.AudioClip{
		UserID:       userID,
		Title:        up.Title,
		Timestamp:    up.Timestamp.UTC(),
		Duration:     up.Duration,
		BlobURL:      obj.URL,
		BlobPathname: obj.Pathname,
		FileSize:     obj.Size,
		Tags:         tags,
	})
	if err != nil {
		s.discardOrphan(ctx, obj.Pathname)
		return nil, fmt.Errorf("create clip: %w", err)
	}

	s.d.Logger.Info(ctx, "clip created", "user_id", userID, "clip_id", clip.ID, "bytes", clip.FileSize)
	publish(ctx, s.d, events.Event{Type: events.ClipCreated, UserID: userID, ClipID: clip.ID})
	return clip, nil
}

// discardOrphan removes a blob whose metadata row was never written.
func (s *ClipService) discardOrphan(ctx context.Context, pathname string) {
	ctx = context.WithoutCancel(ctx)
	if err := s.reaper.deleteWithRetry(ctx, pathname); err == nil {
		return
	}
	if _, err := s.d.Repos.BlobDeletions(s.d.DB).Enqueue(ctx, pathname); err != nil {
		s.d.Logger.Error(ctx, "orphan blob not queued", "pathname", pathname, "error", err)
	}
}

// Delete removes the clip row and queues its blob in one transaction, then
// deletes the blob best effort.
func (s *ClipService) Delete(ctx context.Context, userID, clipID string) error {
	if _, err := uuid.Parse(clipID); err != nil {
		return common.ErrorNotFound
	}

	var queued queuedBlob
	err := s.d.Tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		c, err := s.d.Repos.Clips(tx).Delete(ctx, userID, clipID)
		if err != nil {
			return err
		}
		id, err := s.d.Repos.BlobDeletions(tx).Enqueue(ctx, c.BlobPathname)
		if err != nil {
			return fmt.Errorf("enqueue blob deletion: %w", err)
		}
		queued = queuedBlob{ID: id, Pathname: c.BlobPathname}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("delete clip: %w", err)
	}

	s.reaper.dispose(ctx, []queuedBlob{queued})
	publish(ctx, s.d, events.Event{Type: events.ClipDeleted, UserID: userID, ClipID: clipID})
	return nil
}
