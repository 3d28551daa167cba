package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wordimpostor/backend/internal/config"
	"github.com/wordimpostor/backend/internal/httpapi"
	"github.com/wordimpostor/backend/internal/hub"
	"github.com/wordimpostor/backend/internal/words"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	pool := words.Default()
	if cfg.WordsFile != "" {
		pool, err = words.Load(cfg.WordsFile)
		if err != nil {
			logger.Fatal("load word list", zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h := hub.New(ctx, hub.Options{
		Words: pool.Words(),
		Config: hub.Config{
			Countdown:        cfg.Countdown,
			MinPlayers:       cfg.MinPlayers,
			AllowJoinInRound: cfg.AllowJoinInRound,
		},
		Logger: logger,
	})

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: httpapi.SetupRoutes(h, logger),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Addr), zap.Int("words", pool.Len()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server exited")
}
