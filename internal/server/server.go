// Package server boots the application: configuration, logging, the
// database, cache, storage, and the HTTP stack, then serves until
// interrupted.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vitrinehq/vitrine/app/routes"
	"github.com/vitrinehq/vitrine/config"
	"github.com/vitrinehq/vitrine/pkg/cache"
	"github.com/vitrinehq/vitrine/pkg/database"
	"github.com/vitrinehq/vitrine/pkg/logger"
	"github.com/vitrinehq/vitrine/pkg/metrics"
	"github.com/vitrinehq/vitrine/pkg/middleware"
	"github.com/vitrinehq/vitrine/pkg/orm"
	"github.com/vitrinehq/vitrine/pkg/reqid"
	"github.com/vitrinehq/vitrine/pkg/router"
	"github.com/vitrinehq/vitrine/pkg/storage"
)

const shutdownTimeout = 10 * time.Second

// redisCacher adapts pkg/cache to the orm read-through hook.
type redisCacher struct{}

func (redisCacher) Get(key string, dest interface{}) bool { return cache.Get(key, dest) }
func (redisCacher) Set(key string, value interface{}, ttl time.Duration) error {
	return cache.Set(key, value, ttl)
}

// Start boots every subsystem and blocks until SIGINT/SIGTERM.
func Start() error {
	if err := config.Load(); err != nil {
		return err
	}
	setupLogging()

	if err := database.Connect(); err != nil {
		return err
	}
	if err := cache.Connect(); err != nil {
		// the catalog works uncached; log and carry on
		logger.Warn("redis unavailable, caching disabled", "error", err)
	} else {
		orm.CacheStore = redisCacher{}
	}
	storage.Connect()

	r := router.New()
	r.Use(
		metrics.Middleware(),
		middleware.Recovery,
		reqid.Middleware(),
		middleware.Logger,
		middleware.CORS(middleware.DefaultCORSOptions()),
		middleware.RateLimit(120, time.Minute),
	)
	routes.Register(r)
	r.HandleFunc("/metrics", metrics.Handler())

	addr := ":" + config.AppPort()
	srv := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("vitrine listening", "addr", addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

// setupLogging optionally fans log records out to MongoDB next to the
// default stdout handler.
func setupLogging() {
	uri := config.LogMongoURI()
	if uri == "" {
		return
	}
	mh, err := logger.NewMongoHandler(uri, config.LogMongoDatabase(), config.LogMongoCollection())
	if err != nil {
		logger.Warn("mongo log sink unavailable", "error", err)
		return
	}
	logger.UseHandler(logger.NewMultiHandler(logger.L.Handler(), mh))
}
