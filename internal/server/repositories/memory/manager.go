// Package memory is an in-process RepositoryManager. It keeps the whole
// store in maps, supports transactions by snapshot and restore, and can be
// told to fail individual operations. Service and route tests run on it.
package memory

import (
	"context"
	"database/sql"
	"maps"
	"sync"
	"time"

	"github.com/dmitrijs2005/savethatagain/internal/dbx"
	"github.com/dmitrijs2005/savethatagain/internal/server/models"
	"github.com/dmitrijs2005/savethatagain/internal/server/repositories/blobdeletions"
	"github.com/dmitrijs2005/savethatagain/internal/server/repositories/clips"
	"github.com/dmitrijs2005/savethatagain/internal/server/repositories/users"
)

type state struct {
	users        map[string]models.User
	clips        map[string]models.AudioClip
	deletions    map[int64]models.BlobDeletion
	nextDeletion int64
}

func (s *state) clone() state {
	return state{
		users:        maps.Clone(s.users),
		clips:        maps.Clone(s.clips),
		deletions:    maps.Clone(s.deletions),
		nextDeletion: s.nextDeletion,
	}
}

// Manager implements repomanager.RepositoryManager and dbx.Transactor.
type Manager struct {
	txMu sync.Mutex
	mu   sync.Mutex
	st   state

	failures map[string]error

	// Now stamps created_at and similar columns.
	Now func() time.Time
}

func NewManager() *Manager {
	return &Manager{
		st: state{
			users:     map[string]models.User{},
			clips:     map[string]models.AudioClip{},
			deletions: map[int64]models.BlobDeletion{},
		},
		failures: map[string]error{},
		Now:      time.Now,
	}
}

// FailOn makes every later call of op (e.g. "clips.Create") return err.
// A nil err clears the failure.
func (m *Manager) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

func (m *Manager) failure(op string) error {
	return m.failures[op]
}

func (m *Manager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *Manager) Users(dbx.DBTX) users.Repository {
	return &usersRepo{m: m}
}

func (m *Manager) Clips(dbx.DBTX) clips.Repository {
	return &clipsRepo{m: m}
}

func (m *Manager) BlobDeletions(dbx.DBTX) blobdeletions.Repository {
	return &deletionsRepo{m: m}
}

// WithinTx runs fn and discards every change it made when it returns an
// error. Transactions are serialised.
func (m *Manager) WithinTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	snap := m.st.clone()
	m.mu.Unlock()

	if err := fn(ctx, nil); err != nil {
		m.mu.Lock()
		m.st = snap
		m.mu.Unlock()
		return err
	}
	return nil
}

// UserCount, ClipCount and PendingDeletions expose the store size to tests.
func (m *Manager) UserCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.st.users)
}

func (m *Manager) ClipCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.st.clips)
}

func (m *Manager) PendingDeletions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, d := range m.st.deletions {
		out = append(out, d.BlobPathname)
	}
	return out
}
