package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fpawel/curtains/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "error:", cli.UserMessage(err))
		os.Exit(1)
	}
}
