package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/printforge/server/internal/db"
	"github.com/printforge/server/internal/designgen"
	"github.com/printforge/server/internal/http/handlers"
	httpapi "github.com/printforge/server/internal/http/httpapi"
	"github.com/printforge/server/internal/infra"
	"github.com/printforge/server/internal/infra/geoip"
	"github.com/printforge/server/internal/middleware"
	"github.com/printforge/server/internal/mockup"
	"github.com/printforge/server/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	if err := db.Migrate(dbpool); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	store, err := storage.NewObjectStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure object storage")
	}

	assets, err := storage.NewFileStore(cfg.MockupAssetsPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open mockup assets directory")
	}
	compositor := mockup.NewCompositor(assets)
	if err := compositor.ValidateAssets(); err != nil {
		logger.Fatal().Err(err).Msg("mockup assets incomplete")
	}

	queries := db.New(dbpool)
	fetcher := storage.NewHTTPFetcher(cfg.GenerationTimeout, cfg.UploadMaxBytes)
	builder := designgen.NewBuilder(cfg.DesignTextMinLen, cfg.DesignTextMaxLen, cfg.PatternTextMax)
	generator := designgen.NewClient(designgen.Options{
		BaseURL: cfg.GenerationBaseURL,
		APIKey:  cfg.GenerationAPIKey,
		Model:   cfg.GenerationModel,
		Timeout: cfg.GenerationTimeout,
	})
	pipeline := designgen.NewPipeline(builder, generator, store, fetcher, queries, logger, cfg.DesignsBucket, cfg.ReferencesBucket)

	var lookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip database unavailable, locale falls back to headers")
	} else if resolver != nil {
		lookup = resolver.CountryCode
	}

	app := &handlers.App{
		Cfg:        cfg,
		Log:        logger,
		Q:          queries,
		Pipeline:   pipeline,
		Compositor: compositor,
		Store:      store,
		Fetcher:    fetcher,
	}

	router := httpapi.NewRouter(app, lookup)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
