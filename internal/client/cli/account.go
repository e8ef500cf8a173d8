package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/savethatagain/internal/client/models"
)

// Privacy prints the consent settings, or changes the ones given as flags.
func (a *App) Privacy(ctx context.Context, args []string) error {
	fs := a.newFlagSet("privacy")
	fs.String("data-sharing", "", "share data (true|false)")
	fs.String("analytics", "", "allow analytics (true|false)")
	fs.String("marketing", "", "allow marketing (true|false)")
	if err := a.parseFlags(fs, args); err != nil {
		return err
	}

	var upd models.PrivacyUpdate
	changed := false
	var parseErr error
	fs.Visit(func(f *flag.Flag) {
		v, err := strconv.ParseBool(f.Value.String())
		if err != nil {
			parseErr = &usageError{usage: commands["privacy"].usage}
			return
		}
		changed = true
		switch f.Name {
		case "data-sharing":
			upd.DataSharing = &v
		case "analytics":
			upd.Analytics = &v
		case "marketing":
			upd.Marketing = &v
		}
	})
	if parseErr != nil {
		return parseErr
	}

	var (
		s   *models.PrivacySettings
		err error
	)
	if changed {
		s, err = a.account.UpdatePrivacy(ctx, upd)
	} else {
		s, err = a.account.Privacy(ctx)
	}
	if err != nil {
		return err
	}

	if changed {
		fmt.Fprintln(a.out, "Privacy settings updated.")
	}
	fmt.Fprintf(a.out, "Data sharing: %s\n", onOff(s.DataSharingConsent))
	fmt.Fprintf(a.out, "Analytics:    %s\n", onOff(s.AnalyticsConsent))
	fmt.Fprintf(a.out, "Marketing:    %s\n", onOff(s.MarketingConsent))
	if s.LastUpdated != nil {
		fmt.Fprintf(a.out, "Last updated: %s\n", s.LastUpdated.Local().Format(time.DateTime))
	}
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// Export writes the data export to a file, or to the output with -o -.
func (a *App) Export(ctx context.Context, args []string) error {
	fs := a.newFlagSet("export")
	out := fs.String("o", "", "output file, - for standard output")
	if err := a.parseFlags(fs, args); err != nil {
		return err
	}

	if *out == "-" {
		return a.account.Export(ctx, a.out)
	}
	path := *out
	if path == "" {
		path = fmt.Sprintf("save-that-again-data-%d.json", a.now().UnixMilli())
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := a.account.Export(ctx, f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Data exported to %s\n", path)
	return nil
}

// DeleteAccount schedules account deletion. With -now the account is
// deleted at once after a typed confirmation, skipped by -yes.
func (a *App) DeleteAccount(ctx context.Context, args []string) error {
	fs := a.newFlagSet("delete-account")
	now := fs.Bool("now", false, "delete immediately")
	yes := fs.Bool("yes", false, "do not ask for confirmation")
	if err := a.parseFlags(fs, args); err != nil {
		return err
	}

	if *now && !*yes {
		answer, err := getSimpleText(a.reader, "This permanently deletes your account and all clips. Type DELETE to confirm", a.out)
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if answer != "DELETE" {
			fmt.Fprintln(a.out, "Aborted.")
			return nil
		}
	}

	res, err := a.account.DeleteAccount(ctx, *now)
	if err != nil {
		return err
	}
	if res.Immediate {
		a.email = ""
		fmt.Fprintln(a.out, res.Message)
		return nil
	}
	fmt.Fprintln(a.out, res.Message)
	if res.ScheduledDate != nil {
		fmt.Fprintf(a.out, "Scheduled for %s (%d day grace period). Run 'cancel-deletion' to keep your account.\n",
			res.ScheduledDate.Local().Format(time.DateOnly), res.GracePeriodDays)
	}
	return nil
}

// CancelDeletion cancels a scheduled deletion.
func (a *App) CancelDeletion(ctx context.Context, _ []string) error {
	if err := a.account.CancelDeletion(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Account deletion cancelled.")
	return nil
}
