package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/handlers/http/chi"
	lookuphandler "github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/handlers/http/chi/v1/lookup"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/handlers/http/chi/v1/tag"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/handlers/http/chi/v1/upload"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/repository/postgres"
	redisstore "github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/sessionstore/redis"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/storage/minio"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/storage/s3"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/config"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/port"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/service/broker"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/service/lookup"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/service/resource"
	tagservice "github.com/KhoaHuuDeang/MDHH-sub001/internal/core/service/tag"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/service/verifier"

	"github.com/redis/go-redis/v9"
)

func main() {

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := initDB(cfg.Database)
	if err != nil {
		logger.Error("failed to init database", "error", err)
		os.Exit(1)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}(db)
	logger.Info("db connection established")

	//storage
	storage, err := initStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to init storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}

	//sessions
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("failed to close redis", "error", err)
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("failed to reach redis", "addr", cfg.Redis.Addr, "error", err)
		os.Exit(1)
	}
	sessions := redisstore.NewStore(redisClient, cfg.Redis.KeyPrefix)

	//repositories
	tagRepo := postgres.NewSqlTagRepository(db)
	unitOfWork := postgres.NewUnitOfWork(db)

	//services
	tagService := tagservice.NewTagService(tagRepo, logger)
	lookupService := lookup.NewLookupService(unitOfWork, logger)
	brokerService := broker.NewBrokerService(storage, sessions, unitOfWork, cfg.Upload, logger)
	resourceService := resource.NewResourceService(unitOfWork, sessions, storage, logger)
	verifierService := verifier.NewVerifierService(unitOfWork, storage, cfg.Upload, logger)

	//http
	handlers := chi.Handlers{
		Tag:    tag.NewTagHandlerV1(tagService, logger),
		Upload: upload.NewUploadHandlerV1(brokerService, resourceService, verifierService, logger),
		Lookup: lookuphandler.NewLookupHandlerV1(lookupService, logger),
	}
	router := chi.NewRouter(logger, handlers, []byte(cfg.Auth.JWTSecret), cfg.Env.Env)
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("starting server", "host", cfg.Server.Host, "port", cfg.Server.Port)
		servErr := server.ListenAndServe()
		if servErr != nil && !errors.Is(servErr, http.ErrServerClosed) {
			logger.Error("failed to start server", "error", servErr)
			stop()
		}
	}()

	// periodic verification
	wg.Add(2)
	go func() {
		defer wg.Done()
		runPeriodic(ctx, "reconcile", cfg.Upload.ReconcileEvery, logger, func(ctx context.Context, now time.Time) error {
			return verifierService.ReconcileStale(ctx, now)
		})
	}()
	go func() {
		defer wg.Done()
		runPeriodic(ctx, "orphan sweep", cfg.Upload.OrphanSweepEvery, logger, func(ctx context.Context, now time.Time) error {
			found, err := verifierService.CollectOrphans(ctx, now)
			if err == nil {
				logger.Info("orphan sweep found objects", "count", found, "policy", cfg.Upload.OrphanPolicy)
			}
			return err
		})
	}()

	//wait for context cancel
	<-ctx.Done()
	logger.Info("gracefully shutting down app")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	} else {
		logger.Info("server gracefully shutdown complete")
	}

	wg.Wait()
	logger.Info("app shutdown complete")

}

func initDB(cfg config.DatabaseConfig) (*sql.DB, error) {

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenCons)
	db.SetMaxIdleConns(cfg.MaxIdleCons)
	db.SetConnMaxLifetime(cfg.ConMaxLifeTime)

	return db, nil
}

func initStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (port.ObjectStorage, error) {
	switch cfg.Storage.Driver {
	case "minio":
		return minio.NewAdapter(ctx, cfg.Minio, logger)
	case "s3":
		return s3.NewAdapter(ctx, cfg.S3, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func runPeriodic(ctx context.Context, name string, every time.Duration, logger *slog.Logger, task func(context.Context, time.Time) error) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	logger.Info("periodic task initialized", "task", name, "interval", every)

	for {
		select {
		case now := <-ticker.C:
			logger.Info("periodic task starting", "task", name)
			if err := task(ctx, now); err != nil {
				logger.Error("periodic task failed", "task", name, "error", err)
			} else {
				logger.Info("periodic task completed", "task", name)
			}
		case <-ctx.Done():
			logger.Info("periodic task stopped", "task", name)
			return
		}
	}

}
