package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Amen1412/strem-mal-addon/internal/catalog"
	"github.com/Amen1412/strem-mal-addon/internal/config"
	httpserver "github.com/Amen1412/strem-mal-addon/internal/http"
	"github.com/Amen1412/strem-mal-addon/internal/tmdb"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := log.New(os.Stdout, "[mal-addon] ", log.LstdFlags|log.Lshortfile)

	if cfg.TMDBAPIKey == config.DefaultAPIKeyPlaceholder {
		logger.Println("TMDB_API_KEY not set; upstream requests will fail until one is provided")
	}

	tmdbClient, err := tmdb.NewHTTPClient(cfg.TMDBBaseURL, cfg.TMDBAPIKey, time.Duration(cfg.DiscoverTimeoutSecs)*time.Second, logger)
	if err != nil {
		log.Fatalf("init tmdb client: %v", err)
	}

	catalogSvc := catalog.New(tmdbClient, catalog.Options{
		MaxPages:        cfg.MaxDiscoverPages,
		DiscoverTimeout: time.Duration(cfg.DiscoverTimeoutSecs) * time.Second,
		LookupTimeout:   time.Duration(cfg.LookupTimeoutSecs) * time.Second,
		RefreshInterval: time.Duration(cfg.RefreshIntervalHrs) * time.Hour,
		Logger:          logger,
	})

	// Initial cache build runs in the background so the endpoints come up
	// immediately, same as the manual /refresh trigger.
	go catalogSvc.Run(ctx)

	server := httpserver.New(cfg, catalogSvc, logger)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			log.Printf("server error: %v", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("graceful shutdown error: %v", err)
	}
}
