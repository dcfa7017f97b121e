// Package main runs the selector demo service: a synthetic workspace whose derived views are
// memoized by selector caches, with the performance monitor exposed over HTTP.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/guttosm/selectorcache/config"
	"github.com/guttosm/selectorcache/internal/app"
)

func main() {
	cfg := config.Load()

	a := app.InitializeApp(cfg)
	a.Start()

	server := app.NewServer(a.Router, cfg.Server.Port)
	server.OnStop(a.Stop)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server error")
	}
}
