package main

import (
	"log"

	"eduqa-backend/internal/bootstrap"
	"eduqa-backend/internal/shared/config"
	"eduqa-backend/internal/shared/server"
	"eduqa-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}

	addr := server.Addr(cfg.Port)
	telemetry.Info("server.start", map[string]any{
		"addr":    addr,
		"env":     cfg.Env,
		"uploads": app.Store.Dir(),
		"rubric":  cfg.RubricPath,
		"grader":  cfg.GraderCommand,
	})

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
