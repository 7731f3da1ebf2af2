package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pgavriel/MOADv2/cmd/moad/commands"
)

// Build-time variables injected via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.Execute(ctx); err != nil {
		stop()
		commands.Exit("Error: %v", err)
	}
}
