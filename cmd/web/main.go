package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/user/pricepulse-web/internal/adapter/backend"
	"github.com/user/pricepulse-web/internal/adapter/memory"
	redis_adapter "github.com/user/pricepulse-web/internal/adapter/redis"
	"github.com/user/pricepulse-web/internal/delivery/http/handler"
	"github.com/user/pricepulse-web/internal/delivery/http/router"
	"github.com/user/pricepulse-web/internal/delivery/http/server"
	"github.com/user/pricepulse-web/internal/repository"
	"github.com/user/pricepulse-web/internal/usecase"
	"github.com/user/pricepulse-web/internal/view"
	"github.com/user/pricepulse-web/pkg/config"
	"github.com/user/pricepulse-web/pkg/logger"
	"github.com/user/pricepulse-web/pkg/metrics"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("could not load config", zap.Error(err))
	}

	// --- Logger ---
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		zap.NewExample().Fatal("could not build logger", zap.Error(err))
	}
	defer log.Sync()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal("invalid DISPLAY_TIMEZONE", zap.String("timezone", cfg.DisplayTimezone), zap.Error(err))
	}

	// --- Metrics ---
	m := metrics.New(prometheus.DefaultRegisterer)

	// --- View state ---
	var views repository.ViewStateRepository
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatal("unable to connect to redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		views = redis_adapter.NewViewStateRepo(rdb, cfg.ViewStateTTL())
		log.Info("redis view state store ready", zap.String("addr", cfg.RedisAddr))
	} else {
		mem := memory.NewViewStateRepo(cfg.ViewStateTTL())
		mem.StartSweeper(time.Minute)
		defer mem.Close()
		views = mem
		log.Info("in-memory view state store ready")
	}

	// --- Backend ---
	client, err := backend.NewClient(backend.Options{
		BaseURL: cfg.BackendBaseURL,
		Token:   cfg.BackendToken,
		Timeout: cfg.BackendTimeout(),
	}, m, log)
	if err != nil {
		log.Fatal("invalid backend configuration", zap.Error(err))
	}

	// --- Use Cases ---
	home := usecase.NewHome(client, views, m, log)
	detail := usecase.NewProductDetail(client, log)

	// --- HTTP Server ---
	renderer, err := view.NewRenderer(client.BaseURL(), loc)
	if err != nil {
		log.Fatal("could not load templates", zap.Error(err))
	}
	h := handler.NewHandler(home, detail, views, renderer, log)
	srv := server.New(cfg.ServerPort, router.New(h, m, prometheus.DefaultGatherer, log))

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("could not start server", zap.Error(err))
		}
	}()
	log.Info("server started", zap.String("port", cfg.ServerPort), zap.String("backend", cfg.BackendBaseURL))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exiting")
}
