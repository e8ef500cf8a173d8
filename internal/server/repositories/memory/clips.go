package memory

import (
	"context"
	"slices"

	"github.com/dmitrijs2005/savethatagain/internal/common"
	"github.com/dmitrijs2005/savethatagain/internal/server/models"
	"github.com/google/uuid"
)

type clipsRepo struct {
	m *Manager
}

func (r *clipsRepo) Create(_ context.Context, clip *models.AudioClip) (*models.AudioClip, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failure("clips.Create"); err != nil {
		return nil, err
	}

	c := *clip
	c.ID = uuid.NewString()
	c.CreatedAt = r.m.Now()
	c.UpdatedAt = c.CreatedAt
	c.Tags = slices.Clone(clip.Tags)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	r.m.st.clips[c.ID] = c
	return &c, nil
}

func (r *clipsRepo) owned(userID string) []models.AudioClip {
	var out []models.AudioClip
	for _, c := range r.m.st.clips {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out
}

func (r *clipsRepo) ListByUser(_ context.Context, userID string, limit, offset int) ([]*models.AudioClip, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failure("clips.ListByUser"); err != nil {
		return nil, err
	}

	owned := r.owned(userID)
	slices.SortFunc(owned, func(a, b models.AudioClip) int {
		return b.Timestamp.Compare(a.Timestamp)
	})

	result := []*models.AudioClip{}
	for i := offset; i < len(owned) && len(result) < limit; i++ {
		c := owned[i]
		result = append(result, &c)
	}
	return result, nil
}

func (r *clipsRepo) CountByUser(_ context.Context, userID string) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failure("clips.CountByUser"); err != nil {
		return 0, err
	}
	return len(r.owned(userID)), nil
}

func (r *clipsRepo) GetByID(_ context.Context, userID, clipID string) (*models.AudioClip, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failure("clips.GetByID"); err != nil {
		return nil, err
	}
	c, ok := r.m.st.clips[clipID]
	if !ok || c.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return &c, nil
}

func (r *clipsRepo) Delete(_ context.Context, userID, clipID string) (*models.AudioClip, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failure("clips.Delete"); err != nil {
		return nil, err
	}
	c, ok := r.m.st.clips[clipID]
	if !ok || c.UserID != userID {
		return nil, common.ErrorNotFound
	}
	delete(r.m.st.clips, clipID)
	return &c, nil
}

func (r *clipsRepo) DeleteByUser(_ context.Context, userID string) ([]string, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failure("clips.DeleteByUser"); err != nil {
		return nil, err
	}
	var out []string
	for _, c := range r.owned(userID) {
		out = append(out, c.BlobPathname)
		delete(r.m.st.clips, c.ID)
	}
	return out, nil
}
