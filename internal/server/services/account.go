package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/savethatagain/internal/common"
	"github.com/dmitrijs2005/savethatagain/internal/dbx"
	"github.com/dmitrijs2005/savethatagain/internal/server/events"
	"github.com/dmitrijs2005/savethatagain/internal/server/models"
)

// ExportClipLimit caps the number of clips in a data export.
const ExportClipLimit = 1000

// AccountService implements the account lifecycle: scheduled and immediate
// deletion, privacy consents and data export.
type AccountService struct {
	d      Deps
	grace  time.Duration
	reaper *blobReaper
}

func NewAccountService(d Deps, gracePeriod time.Duration) *AccountService {
	d = d.withDefaults()
	if gracePeriod <= 0 {
		gracePeriod = common.DeletionGracePeriod
	}
	return &AccountService{d: d, grace: gracePeriod, reaper: newBlobReaper(d)}
}

// GracePeriod is the delay between a deletion request and the purge.
func (s *AccountService) GracePeriod() time.Duration {
	return s.grace
}

// RequestDeletion schedules the account for removal after the grace period.
// Repeating the request restarts the period.
func (s *AccountService) RequestDeletion(ctx context.Context, userID string) (*models.User, error) {
	now := s.d.Now().UTC()
	u, err := s.d.Repos.Users(s.d.DB).RequestDeletion(ctx, userID, now, now.Add(s.grace))
	if err != nil {
		return nil, fmt.Errorf("request deletion: %w", err)
	}

	s.d.Logger.Info(ctx, "account deletion scheduled", "user_id", userID, "scheduled", *u.AccountDeletionScheduled)
	publish(ctx, s.d, events.Event{Type: events.AccountDeletionRequested, UserID: userID})
	return u, nil
}

// CancelDeletion clears a pending deletion. It succeeds when nothing is
// pending.
func (s *AccountService) CancelDeletion(ctx context.Context, userID string) error {
	if err := s.d.Repos.Users(s.d.DB).CancelDeletion(ctx, userID); err != nil {
		return fmt.Errorf("cancel deletion: %w", err)
	}
	publish(ctx, s.d, events.Event{Type: events.AccountDeletionCancelled, UserID: userID})
	return nil
}

// ImmediateDelete removes the user and every clip row in one transaction,
// queueing each clip's blob in the same transaction. The blobs are then
// deleted best effort; failures stay queued for the janitor.
func (s *AccountService) ImmediateDelete(ctx context.Context, userID string) error {
	_, err := s.purge(ctx, userID, nil)
	return err
}

// PurgeDue deletes the account like ImmediateDelete, but only while its
// deletion is still scheduled at or before now. The user row is locked and
// re-read inside the transaction, so a cancellation that commits first wins.
// It reports whether the account was deleted.
func (s *AccountService) PurgeDue(ctx context.Context, userID string, now time.Time) (bool, error) {
	return s.purge(ctx, userID, func(u *models.User) bool {
		return u.AccountDeletionScheduled != nil && !u.AccountDeletionScheduled.After(now)
	})
}

func (s *AccountService) purge(ctx context.Context, userID string, due func(u *models.User) bool) (bool, error) {
	var queued []queuedBlob
	skipped := false

	err := s.d.Tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		queued = queued[:0]
		skipped = false

		u, err := s.d.Repos.Users(tx).GetForUpdate(ctx, userID)
		if err != nil {
			return fmt.Errorf("lock user: %w", err)
		}
		if due != nil && !due(u) {
			skipped = true
			return nil
		}

		// Holding the row lock keeps new clips out until the user is gone.
		paths, err := s.d.Repos.Clips(tx).DeleteByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("delete clips: %w", err)
		}

		deletions := s.d.Repos.BlobDeletions(tx)
		for _, p := range paths {
			id, err := deletions.Enqueue(ctx, p)
			if err != nil {
				return fmt.Errorf("enqueue blob deletion: %w", err)
			}
			queued = append(queued, queuedBlob{ID: id, Pathname: p})
		}

		if err := s.d.Repos.Users(tx).Delete(ctx, userID); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if skipped {
		s.d.Logger.Info(ctx, "account purge skipped, deletion no longer due", "user_id", userID)
		return false, nil
	}

	left := s.reaper.dispose(ctx, queued)
	s.d.Logger.Info(ctx, "account deleted", "user_id", userID, "clips", len(queued), "blobs_queued", left)
	publish(ctx, s.d, events.Event{Type: events.AccountDeleted, UserID: userID})
	return true, nil
}

// GetPrivacySettings returns the consent flags of the user.
func (s *AccountService) GetPrivacySettings(ctx context.Context, userID string) (*models.PrivacySettings, error) {
	u, err := s.d.Repos.Users(s.d.DB).GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u.PrivacySettings(), nil
}

// UpdatePrivacySettings overwrites all three flags and stamps the update
// time, even when nothing changed.
func (s *AccountService) UpdatePrivacySettings(ctx context.Context, userID string, dataSharing, analytics, marketing bool) (*models.PrivacySettings, error) {
	now := s.d.Now().UTC()
	u, err := s.d.Repos.Users(s.d.DB).UpdatePrivacy(ctx, userID, models.PrivacySettings{
		DataSharingConsent: dataSharing,
		AnalyticsConsent:   analytics,
		MarketingConsent:   marketing,
		LastUpdated:        &now,
	})
	if err != nil {
		return nil, fmt.Errorf("update privacy: %w", err)
	}
	return u.PrivacySettings(), nil
}

// Export gathers everything stored about the user, up to ExportClipLimit
// clips, newest first.
func (s *AccountService) Export(ctx context.Context, userID string) (*models.Export, error) {
	u, err := s.d.Repos.Users(s.d.DB).GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	clips, err := s.d.Repos.Clips(s.d.DB).ListByUser(ctx, userID, ExportClipLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("list clips: %w", err)
	}

	return models.NewExport(u, clips, s.d.Now().UTC()), nil
}
