package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/wgdashboard/wgdash/cmd/wgdash/commands"
	"github.com/wgdashboard/wgdash/pkg/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, session := commands.WithSession(ctx)
	err := commands.Root().ExecuteContext(ctx)
	if closeErr := session.Close(context.WithoutCancel(ctx)); closeErr != nil {
		log.Debugf("- closing session: %v", closeErr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
