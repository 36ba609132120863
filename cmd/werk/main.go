package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/pterm/pterm"

	"github.com/ayoisaiah/werk/app"
	"github.com/ayoisaiah/werk/internal/osutil"
)

func run(ctx context.Context, args []string) error {
	return app.Get().RunContext(ctx, args)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := run(ctx, os.Args)

	stop()

	if err != nil {
		pterm.Error.Println(err)
		os.Exit(int(osutil.ExitError))
	}
}
