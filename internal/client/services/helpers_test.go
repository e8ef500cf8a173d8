package services

import (
	"context"
	"database/sql"
	"io"
	"testing"

	"github.com/dmitrijs2005/savethatagain/internal/client/migrations"
	"github.com/dmitrijs2005/savethatagain/internal/client/models"
	"github.com/dmitrijs2005/savethatagain/internal/dbx"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) (*sql.DB, dbx.Transactor) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Up(context.Background(), db))
	return db, dbx.NewSQLTransactor(db)
}

// fakeClient implements client.Client with canned answers.
type fakeClient struct {
	token string

	session *models.Session
	authErr error

	lastEmail    string
	lastPassword string
	lastName     string

	page    *models.ClipPage
	listErr error
	clip    *models.Clip
	getErr  error

	uploaded  []byte
	uploadErr error

	deletedIDs []string
	deleteErr  error

	privacy    *models.PrivacySettings
	privacyErr error
	lastUpdate models.PrivacyUpdate

	deletion    *models.DeletionResult
	deletionErr error
	immediate   bool
	cancelled   bool

	export  string
	pingErr error
}

func (f *fakeClient) SetToken(token string)      { f.token = token }
func (f *fakeClient) Ping(context.Context) error { return f.pingErr }

func (f *fakeClient) Register(_ context.Context, email, password, name string) (*models.Session, error) {
	f.lastEmail, f.lastPassword, f.lastName = email, password, name
	return f.session, f.authErr
}

func (f *fakeClient) Login(_ context.Context, email, password string) (*models.Session, error) {
	f.lastEmail, f.lastPassword = email, password
	return f.session, f.authErr
}

func (f *fakeClient) ListClips(context.Context, int, int) (*models.ClipPage, error) {
	return f.page, f.listErr
}

func (f *fakeClient) GetClip(context.Context, string) (*models.Clip, error) {
	return f.clip, f.getErr
}

func (f *fakeClient) UploadClip(_ context.Context, _ models.NewClip, _ string, audio io.Reader) (*models.Clip, error) {
	f.uploaded, _ = io.ReadAll(audio)
	return f.clip, f.uploadErr
}

func (f *fakeClient) DeleteClip(_ context.Context, id string) error {
	f.deletedIDs = append(f.deletedIDs, id)
	return f.deleteErr
}

func (f *fakeClient) GetPrivacy(context.Context) (*models.PrivacySettings, error) {
	return f.privacy, f.privacyErr
}

func (f *fakeClient) UpdatePrivacy(_ context.Context, upd models.PrivacyUpdate) (*models.PrivacySettings, error) {
	f.lastUpdate = upd
	return f.privacy, f.privacyErr
}

func (f *fakeClient) DeleteAccount(_ context.Context, immediate bool) (*models.DeletionResult, error) {
	f.immediate = immediate
	return f.deletion, f.deletionErr
}

func (f *fakeClient) CancelDeletion(context.Context) error {
	f.cancelled = true
	return nil
}

func (f *fakeClient) Export(_ context.Context, w io.Writer) error {
	_, err := io.WriteString(w, f.export)
	return err
}
