package memory

import (
	"context"
	"slices"
	"time"

	"github.com/dmitrijs2005/savethatagain/internal/common"
	"github.com/dmitrijs2005/savethatagain/internal/server/models"
	"github.com/google/uuid"
)

type usersRepo struct {
	m *Manager
}

func (r *usersRepo) insert(u models.User) (*models.User, error) {
	for _, existing := range r.m.st.users {
		if existing.Email == u.Email {
			return nil, common.ErrAlreadyExists
		}
		if u.GoogleID != nil && existing.GoogleID != nil && *existing.GoogleID == *u.GoogleID {
			return nil, common.ErrAlreadyExists
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = r.m.Now()
	u.DataSharingConsent = true
	u.AnalyticsConsent = true
	r.m.st.users[u.ID] = u
	return &u, nil
}

func (r *usersRepo) CreateEmailUser(_ context.Context, email, passwordHash, name string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failure("users.CreateEmailUser"); err != nil {
		return nil, err
	}
	return r.insert(models.User{Email: email, PasswordHash: &passwordHash, Name: &name, AuthProvider: common.ProviderEmail})
}

func (r *usersRepo) CreateGoogleUser(_ context.Context, email string, name *string, googleID string, picture *string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failure("users.CreateGoogleUser"); err != nil {
		return nil, err
	}
	return r.insert(models.User{Email: email, Name: name, GoogleID: &googleID, ProfilePicture: picture, AuthProvider: common.ProviderGoogle})
}

func (r *usersRepo) find(op string, match func(models.User) bool) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failure(op); err != nil {
		return nil, err
	}
	for _, u := range r.m.st.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *usersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find("users.GetByEmail", func(u models.User) bool { return u.Email == email })
}

func (r *usersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	return r.find("users.GetByID", func(u models.User) bool { return u.ID == id })
}

func (r *usersRepo) GetByGoogleID(_ context.Context, googleID string) (*models.User, error) {
	return r.find("users.GetByGoogleID", func(u models.User) bool { return u.GoogleID != nil && *u.GoogleID == googleID })
}

func (r *usersRepo) GetForUpdate(_ context.Context, id string) (*models.User, error) {
	return r.find("users.GetForUpdate", func(u models.User) bool { return u.ID == id })
}

// Delete removes the user and cascades to the user's clips.
func (r *usersRepo) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failure("users.Delete"); err != nil {
		return err
	}
	if _, ok := r.m.st.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.m.st.users, id)
	for cid, c := range r.m.st.clips {
		if c.UserID == id {
			delete(r.m.st.clips, cid)
		}
	}
	return nil
}

func (r *usersRepo) update(op, id string, fn func(u *models.User)) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failure(op); err != nil {
		return nil, err
	}
	u, ok := r.m.st.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	fn(&u)
	r.m.st.users[id] = u
	return &u, nil
}

func (r *usersRepo) RequestDeletion(_ context.Context, id string, requested, scheduled time.Time) (*models.User, error) {
	return r.update("users.RequestDeletion", id, func(u *models.User) {
		u.AccountDeletionRequested = &requested
		u.AccountDeletionScheduled = &scheduled
	})
}

func (r *usersRepo) CancelDeletion(_ context.Context, id string) error {
	_, err := r.update("users.CancelDeletion", id, func(u *models.User) {
		u.AccountDeletionRequested = nil
		u.AccountDeletionScheduled = nil
	})
	return err
}

func (r *usersRepo) UpdatePrivacy(_ context.Context, id string, s models.PrivacySettings) (*models.User, error) {
	return r.update("users.UpdatePrivacy", id, func(u *models.User) {
		u.DataSharingConsent = s.DataSharingConsent
		u.AnalyticsConsent = s.AnalyticsConsent
		u.MarketingConsent = s.MarketingConsent
		u.LastSettingsUpdate = s.LastUpdated
	})
}

func (r *usersRepo) ListDueForDeletion(_ context.Context, now time.Time, limit int) ([]string, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failure("users.ListDueForDeletion"); err != nil {
		return nil, err
	}

	var due []models.User
	for _, u := range r.m.st.users {
		if u.AccountDeletionScheduled != nil && !u.AccountDeletionScheduled.After(now) {
			due = append(due, u)
		}
	}
	slices.SortFunc(due, func(a, b models.User) int {
		return a.AccountDeletionScheduled.Compare(*b.AccountDeletionScheduled)
	})

	var ids []string
	for _, u := range due {
		if len(ids) == limit {
			break
		}
		ids = append(ids, u.ID)
	}
	return ids, nil
}
