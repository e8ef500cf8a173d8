package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/savethatagain/internal/client/models"
)

const defaultPageSize = 20

// List prints one page of clips, newest capture first.
func (a *App) List(ctx context.Context, args []string) error {
	fs := a.newFlagSet("clips")
	limit := fs.Int("limit", defaultPageSize, "page size")
	offset := fs.Int("offset", 0, "clips to skip")
	if err := a.parseFlags(fs, args); err != nil {
		return err
	}

	page, fromCache, err := a.clips.List(ctx, *limit, *offset)
	if err != nil {
		return err
	}
	if fromCache {
		fmt.Fprintln(a.out, "Server unavailable, showing cached clips.")
	}
	if len(page.Clips) == 0 {
		fmt.Fprintln(a.out, "No clips.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tRECORDED\tDURATION\tTAGS")
	for _, c := range page.Clips {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.Title, c.Timestamp.Local().Format(time.DateTime), c.DurationValue(), strings.Join(c.Tags, ","))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Showing %d-%d of %d\n", page.Offset+1, page.Offset+len(page.Clips), page.Total)
	return nil
}

// Upload sends an audio file. The title defaults to the file name and the
// timestamp to now.
func (a *App) Upload(ctx context.Context, args []string) error {
	fs := a.newFlagSet("upload")
	title := fs.String("title", "", "clip title")
	duration := fs.Int("duration", -1, "length in milliseconds")
	timestamp := fs.String("timestamp", "", "when the moment happened (RFC 3339)")
	tags := fs.String("tags", "", "comma separated tags")
	if err := a.parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 || *duration < 0 {
		return &usageError{usage: commands["upload"].usage}
	}

	path := fs.Arg(0)
	meta := models.NewClip{
		Title:     *title,
		Timestamp: a.now(),
		Duration:  *duration,
		Tags:      splitTags(*tags),
	}
	if meta.Title == "" {
		meta.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if *timestamp != "" {
		ts, err := time.Parse(time.RFC3339, *timestamp)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", *timestamp, err)
		}
		meta.Timestamp = ts
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	c, err := a.clips.Upload(ctx, meta, filepath.Base(path), f)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Uploaded %q as %s (%d bytes)\n", c.Title, c.ID, c.FileSize)
	return nil
}

func splitTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Get prints the details of one clip.
func (a *App) Get(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return &usageError{usage: commands["get"].usage}
	}
	c, err := a.clips.Get(ctx, args[0])
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", c.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", c.Title)
	fmt.Fprintf(tw, "Recorded:\t%s\n", c.Timestamp.Local().Format(time.DateTime))
	fmt.Fprintf(tw, "Duration:\t%s\n", c.DurationValue())
	fmt.Fprintf(tw, "Size:\t%d bytes\n", c.FileSize)
	fmt.Fprintf(tw, "Tags:\t%s\n", strings.Join(c.Tags, ", "))
	fmt.Fprintf(tw, "URL:\t%s\n", c.BlobURL)
	return tw.Flush()
}

// Delete removes a clip.
func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return &usageError{usage: commands["delete"].usage}
	}
	if err := a.clips.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %s\n", args[0])
	return nil
}
