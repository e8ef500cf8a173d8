package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/savethatagain/internal/server/auth"
	"github.com/dmitrijs2005/savethatagain/internal/server/blob"
	"github.com/dmitrijs2005/savethatagain/internal/server/events"
	"github.com/dmitrijs2005/savethatagain/internal/server/metrics"
	"github.com/dmitrijs2005/savethatagain/internal/server/repositories/memory"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeGoogle struct {
	identities map[string]*auth.GoogleIdentity
}

func (f *fakeGoogle) Verify(_ context.Context, idToken string) (*auth.GoogleIdentity, error) {
	id, ok := f.identities[idToken]
	if !ok {
		return nil, errors.New("token rejected")
	}
	return id, nil
}

type testEnv struct {
	repos   *memory.Manager
	blobs   *blob.MemoryStore
	events  *recordingPublisher
	metrics *metrics.Metrics
	google  *fakeGoogle
	now     time.Time

	auth     *AuthService
	accounts *AccountService
	clips    *ClipService
	janitor  *Janitor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	e := &testEnv{
		repos:   memory.NewManager(),
		blobs:   blob.NewMemoryStore("http://blobs.test"),
		events:  &recordingPublisher{},
		metrics: metrics.New(),
		google:  &fakeGoogle{identities: map[string]*auth.GoogleIdentity{}},
		now:     time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	d := Deps{
		Tx:      e.repos,
		Repos:   e.repos,
		Blobs:   e.blobs,
		Events:  e.events,
		Metrics: e.metrics,
		Now:     func() time.Time { return e.now },
	}

	e.auth = NewAuthService(d, auth.NewTokenCodec("test-secret", time.Hour), e.google)
	e.accounts = NewAccountService(d, 0)
	e.clips = NewClipService(d)
	e.janitor = NewJanitor(d, e.accounts, time.Minute)

	for _, r := range []*blobReaper{e.accounts.reaper, e.clips.reaper, e.janitor.reaper} {
		r.base = time.Millisecond
	}
	return e
}

func (e *testEnv) register(t *testing.T, email string) *AuthResult {
	t.Helper()
	res, err := e.auth.Register(context.Background(), email, "password123", "Tester")
	require.NoError(t, err)
	return res
}

func (e *testEnv) upload(t *testing.T, userID, title string, ts time.Time, duration int) string {
	t.Helper()
	c, err := e.clips.Create(context.Background(), userID, ClipUpload{
		Title:       title,
		Timestamp:   ts,
		Duration:    duration,
		Tags:        []string{"test"},
		ContentType: "audio/mp4",
		Body:        strings.NewReader("audio-bytes"),
	})
	require.NoError(t, err)
	return c.ID
}
