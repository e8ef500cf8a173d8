package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"

	"github.com/dmitrijs2005/savethatagain/internal/common"
	"github.com/dmitrijs2005/savethatagain/internal/server/models"
)

type deletionsRepo struct {
	m *Manager
}

func (r *deletionsRepo) Enqueue(_ context.Context, pathname string) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failure("blobdeletions.Enqueue"); err != nil {
		return 0, err
	}
	r.m.st.nextDeletion++
	id := r.m.st.nextDeletion
	r.m.st.deletions[id] = models.BlobDeletion{ID: id, BlobPathname: pathname, CreatedAt: r.m.Now()}
	return id, nil
}

func (r *deletionsRepo) Dequeue(_ context.Context, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failure("blobdeletions.Dequeue"); err != nil {
		return err
	}
	delete(r.m.st.deletions, id)
	return nil
}

func (r *deletionsRepo) ListPending(_ context.Context, limit int) ([]*models.BlobDeletion, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failure("blobdeletions.ListPending"); err != nil {
		return nil, err
	}

	all := slices.Collect(maps.Values(r.m.st.deletions))
	slices.SortFunc(all, func(a, b models.BlobDeletion) int {
		return cmp.Or(cmp.Compare(a.Attempts, b.Attempts), cmp.Compare(a.ID, b.ID))
	})

	var out []*models.BlobDeletion
	for i := 0; i < len(all) && i < limit; i++ {
		d := all[i]
		out = append(out, &d)
	}
	return out, nil
}

func (r *deletionsRepo) MarkFailed(_ context.Context, id int64, reason string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failure("blobdeletions.MarkFailed"); err != nil {
		return err
	}
	d, ok := r.m.st.deletions[id]
	if !ok {
		return common.ErrorNotFound
	}
	d.Attempts++
	d.LastError = &reason
	r.m.st.deletions[id] = d
	return nil
}

func (r *deletionsRepo) Count(_ context.Context) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failure("blobdeletions.Count"); err != nil {
		return 0, err
	}
	return len(r.m.st.deletions), nil
}
