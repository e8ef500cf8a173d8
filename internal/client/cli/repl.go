package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// repl reads commands from a.reader until EOF, "exit" or "quit". Each line is
// split into a command and its arguments and handed to Exec. Command errors
// are reported and the loop goes on.
func (a *App) repl(ctx context.Context) {
	fmt.Fprintln(a.out, "Save That Again CLI (type 'help' for commands)")
	for {
		fmt.Fprintf(a.out, "sta%s> ", a.status())
		line, err := a.reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			a.logger.Error(ctx, "read input", "error", err)
			return
		}
		parts := strings.Fields(line)
		if len(parts) > 0 {
			switch parts[0] {
			case "exit", "quit":
				fmt.Fprintln(a.out, "Bye!")
				return
			default:
				if cmdErr := a.Exec(ctx, parts[0], parts[1:]); cmdErr != nil {
					a.report(ctx, parts[0], cmdErr)
				}
			}
		}
		if err != nil {
			fmt.Fprintln(a.out)
			return
		}
		if ctx.Err() != nil {
			return
		}
	}
}
