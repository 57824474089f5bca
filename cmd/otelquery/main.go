// Package main provides the otelquery command.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"go.nhat.io/otelquery/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := cli.Execute(ctx)

	stop()

	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		os.Exit(1)
	}
}
