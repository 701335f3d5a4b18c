package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vanroute/tripedit/internal/config"
)

// Version information - injected at build time
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	versionInfo := config.VersionInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	app := NewDefaultApp(versionInfo)

	if err := app.Config.ParseFlags(); err != nil {
		_, _ = fmt.Fprintf(app.Stderr, "❌ Error: %v\n", err)
		app.exit(1)
	}

	// Initialize the app (logger, lock, etc.)
	if err := app.Initialize(); err != nil {
		_, _ = fmt.Fprintf(app.Stderr, "❌ Error: %v\n", err)
		app.exit(1)
	}

	// Commands finish quickly; the context only has to stop a publish that is
	// waiting on the network
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	if err := app.Run(ctx); err != nil {
		if ctx.Err() == nil {
			_, _ = fmt.Fprintf(app.Stderr, "❌ Error: %v\n", err)
		}
		_ = app.Close()
		app.exit(1)
	}

	_ = app.Close()
}
