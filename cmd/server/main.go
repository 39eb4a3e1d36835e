package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"clearplot/internal/auth"
	"clearplot/internal/cache"
	"clearplot/internal/config"
	apphttp "clearplot/internal/http"
	"clearplot/internal/repository"
	"clearplot/internal/repository/mongo"
	"clearplot/internal/repository/sqlite"
	"clearplot/internal/service"
	"clearplot/internal/storage"
	"clearplot/internal/upstream"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users, props, closeDB, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup database: %v", err)
	}
	defer closeDB()

	if err := users.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := props.Init(ctx); err != nil {
		logger.Fatalf("init property repository: %v", err)
	}

	images, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}
	if err := images.PurgeStaging(ctx, cfg.StagingGrace()); err != nil {
		logger.Warnf("purge staged images: %v", err)
	}

	readCache := buildCache(ctx, cfg, logger)
	defer readCache.Close()

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.TokenTTL())
	userService := service.NewUserService(users, tokens, readCache)
	propertyService := service.NewPropertyService(service.PropertyDeps{
		Properties: props,
		Images:     images,
		Cache:      readCache,
		Predictor:  upstream.NewPredictor(cfg.Predictor.URL, cfg.UpstreamTimeout()),
		Enhancer:   upstream.NewEnhancer(cfg.Enhancer.URL, cfg.UpstreamTimeout()),
		Logger:     logger,
	})
	profileService := service.NewProfileService(tokens, userService, propertyService)

	if cfg.Predictor.URL == "" {
		logger.Warn("predictor.url not set, price prediction disabled")
	}
	if cfg.Enhancer.URL == "" {
		logger.Warn("enhancer.url not set, description enhancement disabled")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.MaxMultipartMemory = cfg.Upload.MaxBytes
	handler := apphttp.NewHandler(apphttp.Options{
		Users:          userService,
		Properties:     propertyService,
		Profiles:       profileService,
		Images:         images,
		Tokens:         tokens,
		Logger:         logger,
		MaxUploadBytes: cfg.Upload.MaxBytes,
	})
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func buildRepositories(ctx context.Context, cfg config.Config, logger *logrus.Logger) (repository.UserRepository, repository.PropertyRepository, func(), error) {
	switch cfg.Database.Driver {
	case config.DriverMongo:
		client, err := mongo.Connect(ctx, cfg.Database.URI)
		if err != nil {
			return nil, nil, nil, err
		}
		db := client.Database(cfg.Database.Name)
		logger.Infof("using mongo database %s", cfg.Database.Name)
		closeFn := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(disconnectCtx); err != nil {
				logger.Warnf("mongo disconnect: %v", err)
			}
		}
		return mongo.NewUserRepository(db), mongo.NewPropertyRepository(db), closeFn, nil
	default:
		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open database: %w", err)
		}
		logger.Infof("using sqlite database %s", cfg.Database.Path)
		closeFn := func() {
			if err := db.Close(); err != nil {
				logger.Warnf("close database: %v", err)
			}
		}
		return sqlite.NewUserRepository(db), sqlite.NewPropertyRepository(db), closeFn, nil
	}
}

func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Storage.Driver != config.StorageS3 {
		logger.Infof("storing images in %s", cfg.Storage.Dir)
		return storage.NewLocalService(cfg.Storage.Dir, cfg.Storage.StagingDir)
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client, storage.S3Options{
		Bucket:    cfg.Storage.Bucket,
		KeyPrefix: cfg.Storage.KeyPrefix,
		URLTTL:    cfg.URLTTL(),
	})
}

// buildCache returns nil (a disabled cache) when no Redis address is configured.
func buildCache(ctx context.Context, cfg config.Config, logger *logrus.Logger) *cache.Client {
	if cfg.Redis.Addr == "" {
		logger.Info("redis.addr not set, read cache disabled")
		return nil
	}
	c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.CacheTTL())
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		logger.Warnf("redis unreachable at %s, continuing without cache hits: %v", cfg.Redis.Addr, err)
	}
	return c
}
