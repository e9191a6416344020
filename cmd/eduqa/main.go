package main

import (
	"context"
	"os"
	"os/signal"

	"eduqa-backend/internal/cli"
	"eduqa-backend/internal/shared/telemetry"
)

func main() {
	telemetry.SetOutput(os.Stderr)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
