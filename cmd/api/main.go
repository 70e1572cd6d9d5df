package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"product-admin/internal/cache"
	"product-admin/internal/cleanup"
	"product-admin/internal/config"
	"product-admin/internal/database"
	"product-admin/internal/handlers"
	"product-admin/internal/logger"
	"product-admin/internal/media"
	"product-admin/internal/repository"
	"product-admin/internal/routes"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		log.WithField("error", err).Fatal("product admin stopped")
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Disconnect(client); err != nil {
			log.WithFields(log.Fields{"component": "database", "error": err}).Error("database connection close failed")
		}
	}()

	repo := repository.NewProductRepository(client.Database(cfg.MongoDB).Collection(repository.CollectionName))
	if err := repo.EnsureIndexes(ctx); err != nil {
		return err
	}

	cld, err := media.NewCloudinaryClient(cfg.CloudinaryURL)
	if err != nil {
		return err
	}

	worker := cleanup.NewWorker(cld, cleanup.Options{
		Workers:        cfg.CleanupWorkers,
		QueueSize:      cfg.CleanupQueueSize,
		MaxElapsedTime: cfg.CleanupMaxElapsed,
	})
	// El worker usa su propio contexto para terminar la cola después de cerrar el servidor
	workerCtx, cancelWorker := context.WithCancel(context.Background())
	defer cancelWorker()
	worker.Start(workerCtx)

	listCache, closeCache := newListCache(ctx, cfg)
	defer closeCache()

	h := handlers.NewProductHandler(repo, worker, listCache, cfg.HostName)

	router := gin.Default()
	routes.RegisterRoutes(router, h)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{"component": "server", "port": cfg.Port}).Info("server running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithFields(log.Fields{"component": "server", "error": err}).Error("http server shutdown failed")
	}

	stopped := make(chan struct{})
	go func() {
		worker.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-shutdownCtx.Done():
		cancelWorker()
		<-stopped
		log.WithField("pending", worker.Pending()).Warn("image cleanup interrupted by shutdown timeout")
	}

	log.Info("graceful shutdown completed")
	return nil
}

// newListCache usa Redis si REDIS_ADDR está configurado, si no un caché en memoria
func newListCache(ctx context.Context, cfg *config.Config) (*cache.Cache, func()) {
	if cfg.RedisAddr == "" {
		return cache.New(cache.NewMemory(ctx, 5*time.Minute), cfg.CacheTTL), func() {}
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	log.WithFields(log.Fields{"component": "cache", "addr": cfg.RedisAddr}).Info("using redis list cache")
	return cache.New(cache.NewRedis(client, "product-admin:"), cfg.CacheTTL), func() {
		if err := client.Close(); err != nil {
			log.WithFields(log.Fields{"component": "cache", "error": err}).Error("redis close failed")
		}
	}
}
