package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"QuantSentinel/internal/logger"
)

func main() {
	_ = godotenv.Load()
	if err := logger.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	_ = logger.Shutdown(context.Background())
	if err != nil {
		os.Exit(1)
	}
}
