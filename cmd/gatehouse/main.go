package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gatehouse/internal/config"
	"github.com/dmitrijs2005/gatehouse/internal/core"
	"github.com/dmitrijs2005/gatehouse/internal/logging"
	"github.com/dmitrijs2005/gatehouse/internal/shell"
)

func main() {

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger := logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)

	c, err := core.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	initSignalHandler(ctx, c)

	shell.NewApp(c, os.Stdin, os.Stdout).Run(ctx)
}

// initSignalHandler closes the session on SIGINT/SIGTERM so the logout is
// audited and logged before the process ends.
func initSignalHandler(ctx context.Context, c *core.Core) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		sig := <-sigs
		c.Session.Logout(ctx)
		c.Logger.Info(ctx, "shutting down", "signal", sig.String())
		os.Exit(0)
	}()
}
