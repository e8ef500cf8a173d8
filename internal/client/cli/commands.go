package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/savethatagain/internal/client/client"
)

var errUnknownCommand = errors.New("unknown command")

// usageError is returned for malformed command arguments.
type usageError struct {
	usage string
}

func (e *usageError) Error() string { return "usage: " + e.usage }

type command struct {
	usage    string
	summary  string
	needAuth bool
	run      func(a *App, ctx context.Context, args []string) error
}

var commands map[string]*command

func init() {
	commands = map[string]*command{
		"register":        {usage: "register [-name NAME] [EMAIL]", summary: "create an account", run: (*App).Register},
		"login":           {usage: "login [EMAIL]", summary: "sign in with email and password", run: (*App).Login},
		"logout":          {usage: "logout", summary: "forget the saved session", run: (*App).Logout},
		"status":          {usage: "status", summary: "show server reachability and the signed-in account", run: (*App).Status},
		"clips":           {usage: "clips [-limit N] [-offset N]", summary: "list your clips", needAuth: true, run: (*App).List},
		"upload":          {usage: "upload -duration MS [-title T] [-timestamp RFC3339] [-tags a,b] FILE", summary: "upload an audio clip", needAuth: true, run: (*App).Upload},
		"get":             {usage: "get ID", summary: "show one clip", needAuth: true, run: (*App).Get},
		"delete":          {usage: "delete ID", summary: "delete a clip and its audio", needAuth: true, run: (*App).Delete},
		"privacy":         {usage: "privacy [-data-sharing=BOOL] [-analytics=BOOL] [-marketing=BOOL]", summary: "show or change consent settings", needAuth: true, run: (*App).Privacy},
		"export":          {usage: "export [-o FILE]", summary: "download all your data as JSON", needAuth: true, run: (*App).Export},
		"delete-account":  {usage: "delete-account [-now] [-yes]", summary: "schedule account deletion, or delete at once with -now", needAuth: true, run: (*App).DeleteAccount},
		"cancel-deletion": {usage: "cancel-deletion", summary: "cancel a scheduled account deletion", needAuth: true, run: (*App).CancelDeletion},
	}
}

// order in which help lists the commands
var commandOrder = []string{
	"register", "login", "logout", "status", "clips", "upload", "get", "delete",
	"privacy", "export", "delete-account", "cancel-deletion",
}

// Exec runs a single command. Commands other than register, login and
// logout need a saved session.
func (a *App) Exec(ctx context.Context, name string, args []string) error {
	if name == "help" {
		a.printHelp()
		return nil
	}
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("%w: %s", errUnknownCommand, name)
	}
	if cmd.needAuth && !a.isLoggedIn() {
		return client.ErrNotLoggedIn
	}
	err := cmd.run(a, ctx, args)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if errors.Is(err, client.ErrUnauthorized) && a.isLoggedIn() {
		// the saved token is no longer accepted
		if lerr := a.session.Logout(ctx); lerr == nil {
			a.email = ""
		}
	}
	return err
}

func (a *App) printHelp() {
	fmt.Fprintln(a.out, "Commands:")
	for _, name := range commandOrder {
		cmd := commands[name]
		fmt.Fprintf(a.out, "  %-70s %s\n", cmd.usage, cmd.summary)
	}
	fmt.Fprintf(a.out, "  %-70s %s\n", "help", "show this list")
	fmt.Fprintf(a.out, "  %-70s %s\n", "exit", "leave the REPL")
}

// newFlagSet returns a flag set for the named command whose usage errors
// carry the command's usage line.
func (a *App) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {
		fmt.Fprintln(a.out, "usage: "+commands[name].usage)
	}
	return fs
}

func (a *App) parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return &usageError{usage: commands[fs.Name()].usage}
	}
	return nil
}

// Describe turns an error returned by Exec into a message for the user.
func Describe(err error) string {
	var apiErr *client.APIError
	var usage *usageError
	switch {
	case errors.As(err, &usage):
		return usage.Error()
	case errors.Is(err, client.ErrNotLoggedIn):
		return "Not logged in. Use 'login' or 'register' first."
	case errors.Is(err, client.ErrUnauthorized):
		return "Session is invalid or expired. Please log in again."
	case errors.Is(err, client.ErrUnavailable):
		return "Server unavailable. Try again later."
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, errUnknownCommand):
		return err.Error() + " (type 'help' for commands)"
	default:
		return err.Error()
	}
}

func (a *App) report(ctx context.Context, name string, err error) {
	a.logger.Debug(ctx, "command failed", "command", name, "error", err)
	fmt.Fprintln(a.out, Describe(err))
}
