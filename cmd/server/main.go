package main

import (
	"context"
	"database/sql"
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

	"clinic-api/internal/auth"
	"clinic-api/internal/config"
	apphttp "clinic-api/internal/http"
	"clinic-api/internal/repository"
	"clinic-api/internal/repository/memory"
	"clinic-api/internal/repository/sqlite"
	"clinic-api/internal/service"
	"clinic-api/internal/storage"
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

	tokens, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)
	if err != nil {
		logger.Fatalf("setup auth: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, db, err := buildStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup store: %v", err)
	}
	if db != nil {
		defer db.Close()
	}

	storageSvc, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	attachmentService := service.NewAttachmentService(storageSvc, store.Patients, service.AttachmentConfig{
		Bucket:        cfg.Storage.Bucket,
		KeyPrefix:     cfg.Storage.KeyPrefix,
		PresignExpiry: time.Duration(cfg.Storage.PresignMinutes) * time.Minute,
	})
	userService, err := service.NewUserService(store.Users, tokens)
	if err != nil {
		logger.Fatalf("setup user service: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(apphttp.Services{
		Users:         userService,
		Patients:      service.NewPatientService(store.Patients, attachmentService, logger),
		Consultations: service.NewConsultationService(store.Consultations, store.Patients),
		Attachments:   attachmentService,
	}, tokens, logger)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

// buildStore returns the seeded memory store in demo mode and the migrated
// sqlite store otherwise. The returned db is nil in demo mode.
func buildStore(ctx context.Context, cfg config.Config, logger *logrus.Logger) (repository.Store, *sql.DB, error) {
	if cfg.Demo.Enabled {
		hash, err := auth.HashPassword(cfg.Demo.Password)
		if err != nil {
			return repository.Store{}, nil, fmt.Errorf("hash demo password: %w", err)
		}
		store, err := memory.NewDemoStore(ctx, hash)
		if err != nil {
			return repository.Store{}, nil, err
		}
		logger.Warnf("demo mode: serving seeded in-memory data, log in as %q", memory.DemoUsername)
		return store, nil, nil
	}

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return repository.Store{}, nil, fmt.Errorf("open database: %w", err)
	}
	if err := sqlite.Migrate(ctx, db); err != nil {
		db.Close()
		return repository.Store{}, nil, fmt.Errorf("migrate database: %w", err)
	}
	logger.Infof("using sqlite database %s", cfg.Database.Path)
	return sqlite.NewStore(db), db, nil
}

// buildStorage returns nil when no bucket is configured; attachment endpoints
// then answer 503.
func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Storage.Bucket == "" {
		logger.Info("no storage bucket configured, attachments disabled")
		return nil, nil
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
	return storage.NewS3Service(client), nil
}
