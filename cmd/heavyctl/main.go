// Package main содержит точку входа консольного клиента дашборда.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MindThoth/HeavyD-sub001/internal/app/heavyctl"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts, err := heavyctl.OptionsFromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "heavyctl:", err)
		os.Exit(1)
	}

	if err := heavyctl.NewRootCommand(opts).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "heavyctl:", err)
		os.Exit(1)
	}
}
