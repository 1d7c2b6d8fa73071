package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/abduss/moviesapi/internal/auth"
	"github.com/abduss/moviesapi/internal/config"
	"github.com/abduss/moviesapi/internal/logger"
	"github.com/abduss/moviesapi/internal/movie"
	"github.com/abduss/moviesapi/internal/scheduler"
	"github.com/abduss/moviesapi/internal/server"
	"github.com/abduss/moviesapi/internal/storage"
	"github.com/abduss/moviesapi/internal/user"
)

const movieSyncJob = "movie-sync"

func main() {
	log, err := logger.Init()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL.Duration())
	if err != nil {
		log.Fatal("configure token service", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := storage.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	defer dbPool.Close()

	if cfg.Postgres.RunMigrations {
		if err := storage.Migrate(ctx, dbPool, log); err != nil {
			log.Fatal("apply migrations", zap.Error(err))
		}
	}

	deps := server.Dependencies{Config: cfg, DB: dbPool, Tokens: tokens}
	syncOpts := []movie.SyncOption{
		movie.WithLogger(log),
		movie.WithMaxRetries(cfg.Sync.MaxRetries),
		movie.WithHTTPClient(&http.Client{Timeout: cfg.Sync.Timeout}),
	}

	if cfg.MinIO.Enabled {
		minioClient, err := storage.NewMinIOClient(cfg.MinIO)
		if err != nil {
			log.Fatal("connect minio", zap.Error(err))
		}
		if err := storage.EnsureBucket(ctx, minioClient, cfg.MinIO.Bucket, cfg.MinIO.Region); err != nil {
			log.Fatal("ensure bucket", zap.Error(err))
		}
		deps.ObjectStore = storage.NewBucketPinger(minioClient, cfg.MinIO.Bucket)
		syncOpts = append(syncOpts, movie.WithArchive(movie.NewMinIOArchive(minioClient, cfg.MinIO.Bucket)))
	}

	hasher := auth.NewHasher(cfg.Auth.BcryptCost)
	userRepo := auth.NewRepository(dbPool)
	movieRepo := movie.NewRepository(dbPool)

	deps.AuthService = auth.NewService(userRepo, hasher, tokens, log)
	deps.UserService = user.NewService(userRepo, hasher, log)
	deps.MovieService = movie.NewService(movieRepo, log)

	jobs := scheduler.New(log)
	if cfg.Sync.Enabled {
		syncer := movie.NewSyncer(movieRepo, cfg.Sync.BaseMoviesURL, syncOpts...)
		runSync := func(ctx context.Context) error {
			_, err := syncer.Run(ctx)
			return err
		}
		// One run may spend a full client timeout on every attempt.
		jobTimeout := cfg.Sync.Timeout * time.Duration(cfg.Sync.MaxRetries+1)
		if err := jobs.Add(movieSyncJob, cfg.Sync.Schedule, jobTimeout, runSync); err != nil {
			log.Fatal("schedule movie sync", zap.Error(err))
		}
		if cfg.Sync.RunOnStart {
			if err := jobs.RunNow(movieSyncJob); err != nil {
				log.Error("trigger movie sync", zap.Error(err))
			}
		}
	}
	jobs.Start()

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      server.NewRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("movies API listening", zap.String("addr", cfg.Server.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	if err := jobs.Stop(shutdownCtx); err != nil {
		log.Error("scheduler shutdown", zap.Error(err))
	}
}
