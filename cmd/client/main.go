package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/taskboard/internal/client/cli"
	"github.com/dmitrijs2005/taskboard/internal/client/config"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	app, closeFn, err := cli.NewFromConfig(ctx, cfg, os.Stdin, os.Stdout, os.Stderr)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}
	defer closeFn()

	app.Run(ctx)

}
