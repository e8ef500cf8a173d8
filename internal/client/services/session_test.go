package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/savethatagain/internal/client/client"
	"github.com/dmitrijs2005/savethatagain/internal/client/models"
	"github.com/dmitrijs2005/savethatagain/internal/client/repositories/clips"
	"github.com/dmitrijs2005/savethatagain/internal/client/repositories/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_PersistsSession(t *testing.T) {
	db, tx := setupDB(t)
	fc := &fakeClient{session: &models.Session{User: &models.User{ID: "u1", Email: "ann@example.com"}, Token: "jwt"}}
	s := NewSessionService(fc, db, tx)
	ctx := context.Background()

	require.NoError(t, clips.NewSQLiteRepository(db).Insert(ctx, &models.Clip{ID: "stale"}, 0))

	u, err := s.Login(ctx, "ann@example.com", []byte("hunter22"))
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "hunter22", fc.lastPassword)
	assert.Equal(t, "jwt", fc.token)

	token, ok, err := metadata.NewSQLiteRepository(db).Get(ctx, metadata.KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "jwt", token)

	cached, err := clips.NewSQLiteRepository(db).List(ctx)
	require.NoError(t, err)
	assert.Empty(t, cached)
}

func TestLogin_FailureKeepsNothing(t *testing.T) {
	db, tx := setupDB(t)
	fc := &fakeClient{authErr: &client.APIError{Status: 401, Message: "Invalid credentials"}}
	s := NewSessionService(fc, db, tx)

	_, err := s.Login(context.Background(), "ann@example.com", []byte("bad"))
	require.Error(t, err)
	assert.Empty(t, fc.token)

	_, ok, err := s.Restore(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegister_PassesName(t *testing.T) {
	db, tx := setupDB(t)
	fc := &fakeClient{session: &models.Session{User: &models.User{ID: "u2"}, Token: "t2"}}
	s := NewSessionService(fc, db, tx)

	u, err := s.Register(context.Background(), "bob@example.com", []byte("password1"), "Bob")
	require.NoError(t, err)
	assert.Equal(t, "u2", u.ID)
	assert.Equal(t, "Bob", fc.lastName)
	assert.Equal(t, "t2", fc.token)
}

func TestRestoreAndLogout(t *testing.T) {
	db, tx := setupDB(t)
	fc := &fakeClient{session: &models.Session{User: &models.User{ID: "u1"}, Token: "jwt"}}
	s := NewSessionService(fc, db, tx)
	ctx := context.Background()

	_, err := s.Login(ctx, "ann@example.com", []byte("pw"))
	require.NoError(t, err)

	fresh := &fakeClient{}
	restored := NewSessionService(fresh, db, tx)
	email, ok, err := restored.Restore(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ann@example.com", email)
	assert.Equal(t, "jwt", fresh.token)

	require.NoError(t, restored.Logout(ctx))
	assert.Empty(t, fresh.token)
	_, ok, err = restored.Restore(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPing_Delegates(t *testing.T) {
	db, tx := setupDB(t)
	fc := &fakeClient{pingErr: client.ErrUnavailable}
	assert.ErrorIs(t, NewSessionService(fc, db, tx).Ping(context.Background()), client.ErrUnavailable)
}
