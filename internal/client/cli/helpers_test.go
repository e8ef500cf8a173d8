package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/savethatagain/internal/client/models"
	"github.com/dmitrijs2005/savethatagain/internal/logging"
)

type fakeSession struct {
	restoreEmail string
	restoreOK    bool

	loginErr    error
	lastEmail   string
	lastPass    string
	lastName    string
	logoutCalls int
	pingErr     error
}

func (f *fakeSession) Register(_ context.Context, email string, password []byte, name string) (*models.User, error) {
	f.lastEmail, f.lastPass, f.lastName = email, string(password), name
	return &models.User{ID: "u-new", Email: email}, f.loginErr
}

func (f *fakeSession) Login(_ context.Context, email string, password []byte) (*models.User, error) {
	f.lastEmail, f.lastPass = email, string(password)
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &models.User{ID: "u1", Email: email}, nil
}

func (f *fakeSession) Restore(context.Context) (string, bool, error) {
	return f.restoreEmail, f.restoreOK, nil
}

func (f *fakeSession) Logout(context.Context) error {
	f.logoutCalls++
	return nil
}

func (f *fakeSession) Ping(context.Context) error { return f.pingErr }

type fakeClips struct {
	page      *models.ClipPage
	fromCache bool
	listErr   error
	lastLimit int
	lastOff   int

	clip    *models.Clip
	getErr  error
	deleted []string

	uploadMeta models.NewClip
	uploadName string
	uploadBody string
}

func (f *fakeClips) List(_ context.Context, limit, offset int) (*models.ClipPage, bool, error) {
	f.lastLimit, f.lastOff = limit, offset
	return f.page, f.fromCache, f.listErr
}

func (f *fakeClips) Get(context.Context, string) (*models.Clip, error) {
	return f.clip, f.getErr
}

func (f *fakeClips) Upload(_ context.Context, meta models.NewClip, filename string, audio io.Reader) (*models.Clip, error) {
	f.uploadMeta, f.uploadName = meta, filename
	b, _ := io.ReadAll(audio)
	f.uploadBody = string(b)
	return &models.Clip{ID: "c-new", Title: meta.Title, FileSize: int64(len(b))}, nil
}

func (f *fakeClips) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeAccount struct {
	settings  *models.PrivacySettings
	lastUpd   *models.PrivacyUpdate
	export    string
	deletion  *models.DeletionResult
	immediate *bool
	cancelled bool
}

func (f *fakeAccount) Privacy(context.Context) (*models.PrivacySettings, error) {
	return f.settings, nil
}

func (f *fakeAccount) UpdatePrivacy(_ context.Context, upd models.PrivacyUpdate) (*models.PrivacySettings, error) {
	f.lastUpd = &upd
	return f.settings, nil
}

func (f *fakeAccount) Export(_ context.Context, w io.Writer) error {
	_, err := io.WriteString(w, f.export)
	return err
}

func (f *fakeAccount) DeleteAccount(_ context.Context, immediate bool) (*models.DeletionResult, error) {
	f.immediate = &immediate
	return f.deletion, nil
}

func (f *fakeAccount) CancelDeletion(context.Context) error {
	f.cancelled = true
	return nil
}

type testApp struct {
	*App
	session *fakeSession
	clips   *fakeClips
	account *fakeAccount
	out     *bytes.Buffer
}

// newTestApp returns an App on fakes, signed in as ann@example.com when
// loggedIn is set. stdin is what interactive prompts read.
func newTestApp(t *testing.T, loggedIn bool, stdin string) *testApp {
	t.Helper()
	ta := &testApp{
		session: &fakeSession{},
		clips:   &fakeClips{},
		account: &fakeAccount{},
		out:     &bytes.Buffer{},
	}
	ta.App = newApp(ta.session, ta.clips, ta.account, logging.Nop())
	ta.App.out = ta.out
	ta.App.reader = bufio.NewReader(strings.NewReader(stdin))
	ta.App.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	if loggedIn {
		ta.App.email = "ann@example.com"
	}
	return ta
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}
