package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/savethatagain/internal/client/cli"
	"github.com/dmitrijs2005/savethatagain/internal/client/config"
	"github.com/dmitrijs2005/savethatagain/internal/flagx"
)

func main() {
	global, cmd, args := flagx.SplitCommand(os.Args[1:], config.ValueFlags)

	cfg, err := config.LoadConfig(global)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(ctx, cmd, args); err != nil {
		fmt.Fprintln(os.Stderr, cli.Describe(err))
		app.Close()
		os.Exit(1)
	}
}
