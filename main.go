package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/munify/doc_vault/biz/dal/db"
	"github.com/munify/doc_vault/biz/handler"
	"github.com/munify/doc_vault/biz/middleware"
	"github.com/munify/doc_vault/biz/router"
	filesvc "github.com/munify/doc_vault/biz/service/file"
	"github.com/munify/doc_vault/pkg/config"
	"github.com/munify/doc_vault/pkg/database"
	"github.com/munify/doc_vault/pkg/lock"
	"github.com/munify/doc_vault/pkg/metrics"
	pkgredis "github.com/munify/doc_vault/pkg/redis"
	"github.com/munify/doc_vault/pkg/storage"
	"github.com/munify/doc_vault/pkg/validator"
)

var configPath = flag.String("config", "config.yaml", "path to config file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		hlog.Fatalf("load config: %v", err)
	}
	hlog.SetLevel(logLevel(cfg.Log.Level))

	dbConn, err := database.Open(cfg.Database, cfg.Log.Level)
	if err != nil {
		hlog.Fatalf("open database: %v", err)
	}
	if err := db.Migrate(dbConn); err != nil {
		hlog.Fatalf("migrate database: %v", err)
	}

	store, err := storage.New(cfg.Storage)
	if err != nil {
		hlog.Fatalf("init storage: %v", err)
	}
	hlog.Infof("storage backend: %s", store.Type())

	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		hlog.Fatalf("init redis: %v", err)
	}
	if redisClient != nil {
		middleware.InitFileLock(lock.New(redisClient, cfg.Redis.LockPrefix, cfg.Redis.LockTTL, cfg.Redis.LockTimeout))
		hlog.Infof("per-file write lock enabled via redis %s", cfg.Redis.Address)
	}

	upload := validator.NewUploadConfig(cfg.Upload.MaxSize, cfg.Upload.AllowedExtensions, cfg.Upload.AllowedTypes)
	svc := filesvc.NewService(dbConn, store, upload)

	// Multipart framing needs headroom above the file limit.
	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithMaxRequestBodySize(int(cfg.Upload.MaxSize)+1<<20),
	)
	h.Use(middleware.Recovery(), middleware.Logging(), middleware.CORS(&cfg.CORS), middleware.Auth())
	router.RegisterFileRoutes(h, handler.NewFileHandler(svc))

	var metricsServer *http.Server
	if cfg.Metrics.Address != "" {
		metricsServer = &http.Server{
			Addr:              cfg.Metrics.Address,
			Handler:           metrics.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			hlog.Infof("metrics server listening on %s", cfg.Metrics.Address)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				hlog.Errorf("metrics server error: %v", err)
			}
		}()
	}

	h.OnShutdown = append(h.OnShutdown, func(ctx context.Context) {
		if metricsServer != nil {
			_ = metricsServer.Shutdown(ctx)
		}
		if redisClient != nil {
			_ = redisClient.Close()
		}
		if sqlDB, err := dbConn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	h.Spin()
}

func logLevel(level string) hlog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return hlog.LevelTrace
	case "debug":
		return hlog.LevelDebug
	case "warn", "warning":
		return hlog.LevelWarn
	case "error":
		return hlog.LevelError
	default:
		return hlog.LevelInfo
	}
}
