package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/huddle-dev/huddle/internal/adapters/crdt"
	"github.com/huddle-dev/huddle/internal/adapters/credentials"
	router "github.com/huddle-dev/huddle/internal/adapters/http"
	"github.com/huddle-dev/huddle/internal/adapters/jobstore"
	"github.com/huddle-dev/huddle/internal/adapters/judge0"
	"github.com/huddle-dev/huddle/internal/adapters/media"
	"github.com/huddle-dev/huddle/internal/app"
	"github.com/huddle-dev/huddle/internal/app/execrelay"
	"github.com/huddle-dev/huddle/internal/config"
	"github.com/huddle-dev/huddle/internal/core"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	_ = godotenv.Load()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
	}

	issuer := credentials.NewClient(cfg.CredentialEndpoint)
	exec := judge0.NewClient(cfg.Judge0URL, cfg.Judge0Key, cfg.Judge0Host)
	relay := execrelay.New(exec)
	docs := crdt.NewProvider(cfg.ReplicationEndpoint)
	defer docs.Close()
	rooms := media.NewFactory(cfg.E2EECapable)

	var jobs core.JobStore
	if cfg.RedisAddr != "" {
		jobs = jobstore.NewRedis(cfg.RedisAddr)
		log.Info().Str("addr", cfg.RedisAddr).Msg("using redis job store")
	} else {
		jobs = jobstore.NewMemory()
	}

	coord := app.NewCoordinator(rooms, issuer, docs, relay, jobs)

	r := router.SetupRouter(ctx, cfg, coord)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Huddle server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
