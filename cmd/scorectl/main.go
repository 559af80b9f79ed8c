package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/2beens/dailyscore/internal/cli"
	"github.com/2beens/dailyscore/internal/logging"

	log "github.com/sirupsen/logrus"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// stdout carries command output, exports included
	log.SetOutput(os.Stderr)
	level := os.Getenv("SCORECTL_LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	log.SetLevel(logging.GetLevel(level))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cli.NewRootCmd(&cli.App{Open: cli.OpenFiles})
	return rootCmd.ExecuteContext(ctx)
}
