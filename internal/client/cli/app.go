package cli

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/savethatagain/internal/client/client"
	"github.com/dmitrijs2005/savethatagain/internal/client/config"
	"github.com/dmitrijs2005/savethatagain/internal/client/services"
	"github.com/dmitrijs2005/savethatagain/internal/dbx"
	"github.com/dmitrijs2005/savethatagain/internal/logging"
)

type App struct {
	session services.SessionService
	clips   services.ClipService
	account services.AccountService

	logger logging.Logger
	reader *bufio.Reader
	out    io.Writer
	now    func() time.Time

	email string
	db    *sql.DB
}

// NewApp opens the local database under c.HomeDir and builds the services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabasePath())
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.FormatText, os.Stderr)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	api := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	tx := dbx.NewSQLTransactor(db)
	session := services.NewSessionService(api, db, tx)

	a := newApp(session, services.NewClipService(api, db, tx), services.NewAccountService(api, session), logger)
	a.db = db
	return a, nil
}

func newApp(s services.SessionService, c services.ClipService, acc services.AccountService, l logging.Logger) *App {
	return &App{
		session: s,
		clips:   c,
		account: acc,
		logger:  l.With("module", "cli"),
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		now:     time.Now,
	}
}

// Close releases the local database.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Run restores the saved session, then runs cmd once, or starts the REPL
// when cmd is empty.
func (a *App) Run(ctx context.Context, cmd string, args []string) error {
	email, ok, err := a.session.Restore(ctx)
	if err != nil {
		return err
	}
	if ok {
		a.email = email
	}

	if cmd == "" {
		a.repl(ctx)
		return nil
	}
	return a.Exec(ctx, cmd, args)
}

func (a *App) isLoggedIn() bool {
	return a.email != ""
}

func (a *App) status() string {
	if a.email == "" {
		return ""
	}
	return "(" + a.email + ")"
}
