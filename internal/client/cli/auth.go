package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/savethatagain/internal/client/client"
	"github.com/dmitrijs2005/savethatagain/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// askEmail returns args[0] when given, otherwise prompts for it.
func (a *App) askEmail(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return getSimpleText(a.reader, "Enter email", a.out)
}

// Register creates an account and keeps its session. The password byte
// slice is wiped before returning.
func (a *App) Register(ctx context.Context, args []string) error {
	fs := a.newFlagSet("register")
	name := fs.String("name", "", "display name")
	if err := a.parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return &usageError{usage: commands["register"].usage}
	}

	email, err := a.askEmail(fs.Args())
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.session.Register(ctx, email, password, *name)
	if err != nil {
		return signInError(err)
	}
	a.email = email
	fmt.Fprintf(a.out, "Registered and logged in as %s (id %s)\n", email, u.ID)
	return nil
}

// Login authenticates with email and password and saves the session.
func (a *App) Login(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return &usageError{usage: commands["login"].usage}
	}
	email, err := a.askEmail(args)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.session.Login(ctx, email, password); err != nil {
		return signInError(err)
	}
	a.email = email
	fmt.Fprintf(a.out, "Logged in as %s\n", email)
	return nil
}

// signInError unwraps a rejected sign-in to the server's answer, so the user
// sees why it failed and an existing session is not dropped.
func signInError(err error) error {
	var apiErr *client.APIError
	if errors.Is(err, client.ErrUnauthorized) && errors.As(err, &apiErr) {
		return apiErr
	}
	return err
}

// Logout forgets the saved session and the clip cache.
func (a *App) Logout(ctx context.Context, _ []string) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	a.email = ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// Status reports whether the server answers and who is signed in locally.
func (a *App) Status(ctx context.Context, _ []string) error {
	if err := a.session.Ping(ctx); err != nil {
		fmt.Fprintln(a.out, "Server: unreachable")
	} else {
		fmt.Fprintln(a.out, "Server: online")
	}
	if a.isLoggedIn() {
		fmt.Fprintf(a.out, "Signed in as %s\n", a.email)
	} else {
		fmt.Fprintln(a.out, "Not signed in")
	}
	return nil
}
