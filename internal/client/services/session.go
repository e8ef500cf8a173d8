// Package services contains application services for the savethatagain CLI.
// This file defines the session service: register, login, logout and
// restoring the saved session on startup.
package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/savethatagain/internal/client/client"
	"github.com/dmitrijs2005/savethatagain/internal/client/models"
	"github.com/dmitrijs2005/savethatagain/internal/client/repositories/clips"
	"github.com/dmitrijs2005/savethatagain/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/savethatagain/internal/dbx"
)

// SessionService manages the signed-in identity of the CLI.
//
// Contract:
//   - Register / Login: authenticate against the server and persist the token.
//   - Restore: load a saved token into the API client.
//   - Logout: forget the token and everything cached for the user.
//   - Ping: check server liveness.
type SessionService interface {
	Register(ctx context.Context, email string, password []byte, name string) (*models.User, error)
	Login(ctx context.Context, email string, password []byte) (*models.User, error)
	Restore(ctx context.Context) (email string, ok bool, err error)
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
}

type sessionService struct {
	client client.Client
	db     dbx.DBTX
	tx     dbx.Transactor
}

// NewSessionService binds the service to an API client and the local database.
func NewSessionService(c client.Client, db dbx.DBTX, tx dbx.Transactor) SessionService {
	return &sessionService{client: c, db: db, tx: tx}
}

func (s *sessionService) Register(ctx context.Context, email string, password []byte, name string) (*models.User, error) {
	sess, err := s.client.Register(ctx, email, string(password), name)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, email, sess.Token); err != nil {
		return nil, err
	}
	return sess.User, nil
}

func (s *sessionService) Login(ctx context.Context, email string, password []byte) (*models.User, error) {
	sess, err := s.client.Login(ctx, email, string(password))
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, email, sess.Token); err != nil {
		return nil, err
	}
	return sess.User, nil
}

// save stores the new session and drops the clip cache of any previous one.
func (s *sessionService) save(ctx context.Context, email, token string) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		md := metadata.NewSQLiteRepository(tx)
		if err := md.Set(ctx, metadata.KeyToken, token); err != nil {
			return err
		}
		if err := md.Set(ctx, metadata.KeyEmail, email); err != nil {
			return err
		}
		return clips.NewSQLiteRepository(tx).Clear(ctx)
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.client.SetToken(token)
	return nil
}

func (s *sessionService) Restore(ctx context.Context) (string, bool, error) {
	md := metadata.NewSQLiteRepository(s.db)
	token, ok, err := md.Get(ctx, metadata.KeyToken)
	if err != nil || !ok {
		return "", false, err
	}
	email, _, err := md.Get(ctx, metadata.KeyEmail)
	if err != nil {
		return "", false, err
	}
	s.client.SetToken(token)
	return email, true, nil
}

func (s *sessionService) Logout(ctx context.Context) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := metadata.NewSQLiteRepository(tx).Clear(ctx); err != nil {
			return err
		}
		return clips.NewSQLiteRepository(tx).Clear(ctx)
	})
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.client.SetToken("")
	return nil
}

func (s *sessionService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}
