package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"matka/internal/backend"
	"matka/internal/config"
	"matka/internal/db"
	"matka/internal/handlers"
	"matka/internal/logger"
)

func main() {
	cfg := config.Load()
	log := logger.GetLogger()
	if err := log.Configure(cfg.LogLevel, cfg.LogFile, cfg.LogMaxSizeMB, cfg.LogMaxBackups); err != nil {
		log.WithError(err).Fatal("logger setup failed")
	}
	secret := strings.TrimSpace(cfg.JWTSecret)
	if secret == "" || secret == "change-me" {
		log.Fatal("JWT_SECRET must be set to a non-default value")
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		client, err := db.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.WithError(err).Fatal("redis error")
		}
		rdb = client
	}
	var mysql *sql.DB
	if cfg.JournalEnabled {
		conn, err := db.NewMySQL(cfg.MySQLDSN)
		if err != nil {
			log.WithError(err).Fatal("mysql error")
		}
		mysql = conn
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := backend.NewClient(cfg.APIBaseURL, cfg.APIToken, cfg.APITimeout, cfg.APIRPS, cfg.APIBurst)
	srv := handlers.NewServer(cfg, rdb, mysql, api)
	if err := srv.Journal.Migrate(ctx); err != nil {
		log.WithError(err).Fatal("journal migrate failed")
	}

	go srv.Feed.Run(ctx)
	resetCron, err := srv.Feed.ScheduleReset(cfg.MarketResetCron)
	if err != nil {
		log.WithError(err).Fatal("invalid MARKET_RESET_CRON")
	}
	resetCron.Start()
	defer resetCron.Stop()
	srv.StartPlacementFlusher(ctx)

	gin.SetMode(gin.ReleaseMode)
	httpSrv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Router(),
	}
	go func() {
		log.WithFields(logger.Fields{"addr": cfg.HTTPAddr}).Info("server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown failed")
	}
	log.Info("server stopped")
}
