package services

import (
	"context"
	"io"

	"github.com/dmitrijs2005/savethatagain/internal/client/client"
	"github.com/dmitrijs2005/savethatagain/internal/client/models"
)

// AccountService covers privacy settings, data export and account deletion.
type AccountService interface {
	Privacy(ctx context.Context) (*models.PrivacySettings, error)
	UpdatePrivacy(ctx context.Context, upd models.PrivacyUpdate) (*models.PrivacySettings, error)
	Export(ctx context.Context, w io.Writer) error
	// DeleteAccount schedules deletion, or deletes at once when immediate is
	// set. After an immediate deletion the local session is cleared.
	DeleteAccount(ctx context.Context, immediate bool) (*models.DeletionResult, error)
	CancelDeletion(ctx context.Context) error
}

type accountService struct {
	client  client.Client
	session SessionService
}

func NewAccountService(c client.Client, session SessionService) AccountService {
	return &accountService{client: c, session: session}
}

func (s *accountService) Privacy(ctx context.Context) (*models.PrivacySettings, error) {
	return s.client.GetPrivacy(ctx)
}

func (s *accountService) UpdatePrivacy(ctx context.Context, upd models.PrivacyUpdate) (*models.PrivacySettings, error) {
	return s.client.UpdatePrivacy(ctx, upd)
}

func (s *accountService) Export(ctx context.Context, w io.Writer) error {
	return s.client.Export(ctx, w)
}

func (s *accountService) DeleteAccount(ctx context.Context, immediate bool) (*models.DeletionResult, error) {
	res, err := s.client.DeleteAccount(ctx, immediate)
	if err != nil {
		return nil, err
	}
	if res.Immediate {
		if err := s.session.Logout(ctx); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (s *accountService) CancelDeletion(ctx context.Context) error {
	return s.client.CancelDeletion(ctx)
}
