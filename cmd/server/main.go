package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/dancerank/internal/api"
	"github.com/vytor/dancerank/internal/cache"
	"github.com/vytor/dancerank/internal/config"
	"github.com/vytor/dancerank/internal/db"
	"github.com/vytor/dancerank/internal/jobs"
	"github.com/vytor/dancerank/internal/logger"
	"github.com/vytor/dancerank/internal/metrics"
	"github.com/vytor/dancerank/internal/repository/sqlstore"
	"github.com/vytor/dancerank/internal/scoring"
	"github.com/vytor/dancerank/internal/services"
	"github.com/vytor/dancerank/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration: %v", err)
		os.Exit(1)
	}

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	log.Info("===========================================")
	log.Info("DanceRank Server Starting")
	log.Info("===========================================")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_driver=%s", cfg.DBDriver)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("redis_enabled=%t", cfg.RedisURL != "")
	log.Debug("leaderboard_min_top=%d", cfg.LeaderboardMinTop)
	log.Debug("leaderboard_max_top=%d", cfg.LeaderboardMaxTop)
	log.Debug("persist_retry_attempts=%d", cfg.PersistRetryAttempts)
	log.Debug("refresh_worker_count=%d", cfg.RefreshWorkerCount)

	database, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	var boardCache cache.LeaderboardCache = cache.Noop{}
	if cfg.RedisURL != "" {
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := cache.Dial(pingCtx, cfg.RedisURL)
		pingCancel()
		if err != nil {
			// Rankings are still served from the database.
			log.Warn("leaderboard cache disabled: %v", err)
		} else {
			defer client.Close()
			boardCache = cache.NewRedisCache(client, cfg.LeaderboardCacheTTL)
			log.Info("leaderboard cache connected")
		}
	}

	m := metrics.NewManager()
	refreshPool := worker.NewPool(cfg.RefreshWorkerCount, cfg.RefreshQueueSize)

	scores := sqlstore.NewScoreRepository(database)
	users := sqlstore.NewUserRepository(database)
	leaderboard := services.NewLeaderboardService(scores, users, boardCache, m, cfg.LeaderboardMinTop, cfg.LeaderboardMaxTop)
	recorder := services.NewScoreRecorder(scores, services.RecorderConfig{
		Attempts: cfg.PersistRetryAttempts,
		Delay:    cfg.PersistRetryDelay,
		Timeout:  cfg.PersistTimeout,
	}, jobs.NewWorkerQueue(refreshPool, leaderboard), m)
	scoringService := services.NewScoringService(
		scoring.NewEngine(),
		sqlstore.NewSheetRepository(database),
		scores,
		users,
		recorder,
		m,
	)

	srv := &api.Server{
		Scoring:     scoringService,
		Leaderboard: leaderboard,
		Metrics:     m,
		DB:          database,
		CORSOrigins: cfg.Origins(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	refreshPool.Start(ctx)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// In-flight requests may still queue refreshes until Shutdown returns.
	log.Debug("stopping refresh pool")
	refreshPool.Stop()
	cancel()

	log.Info("===========================================")
	log.Info("DanceRank Server Stopped")
	log.Info("===========================================")
}
