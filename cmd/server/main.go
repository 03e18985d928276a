package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"faceverify/internal/adapters/awsclient"
	"faceverify/internal/adapters/httpapi"
	"faceverify/internal/adapters/postgres"
	rekadapter "faceverify/internal/adapters/rekognition"
	"faceverify/internal/adapters/s3store"
	"faceverify/internal/adapters/security"
	"faceverify/internal/adapters/snspub"
	"faceverify/internal/adapters/sqsqueue"
	"faceverify/internal/core/domain"
	"faceverify/internal/events"
	"faceverify/internal/shared/config"
	"faceverify/internal/shared/logger"
	"faceverify/internal/shared/metrics"
	"faceverify/internal/verify"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize Logger
	isDevMode := cfg.AppEnv == "dev"
	baseLogger := logger.New(isDevMode)
	baseLogger.Info().
		Str("app_env", cfg.AppEnv).
		Str("region", cfg.AWS.Region).
		Str("labels_region", cfg.AWS.LabelsRegion).
		Msg("Configuration loaded")

	// Root context cancelled on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Initialize the Security Service
	keyBytes, err := hex.DecodeString(cfg.EncryptionKey)
	if err != nil {
		baseLogger.Fatal().Err(err).Msg("Failed to decode ENCRYPTION_KEY. It must be hex-encoded.")
	}
	secSvc, err := security.NewAESService(keyBytes, &baseLogger)
	if err != nil {
		baseLogger.Fatal().Err(err).Msg("Failed to initialize security service")
	}

	// 4. Initialize Database
	db, err := postgres.NewDB(ctx, cfg.DatabaseURL, &baseLogger)
	if err != nil {
		baseLogger.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// 5. Initialize AWS clients. Two rekognition clients: label detection
	// runs in its own region, face comparison in the default one.
	awsCfg, err := awsclient.Load(ctx, cfg.AWS.Region, cfg.AWS.EndpointURL)
	if err != nil {
		baseLogger.Fatal().Err(err).Msg("Failed to load AWS configuration")
	}
	labelsCfg, err := awsclient.Load(ctx, cfg.AWS.LabelsRegion, cfg.AWS.EndpointURL)
	if err != nil {
		baseLogger.Fatal().Err(err).Msg("Failed to load AWS configuration for labels region")
	}

	s3Client := s3.NewFromConfig(awsCfg)
	sqsClient := sqs.NewFromConfig(awsCfg)
	snsClient := sns.NewFromConfig(awsCfg)
	compareClient := rekognition.NewFromConfig(awsCfg)
	labelsClient := rekognition.NewFromConfig(labelsCfg)

	// 6. Initialize Repositories and Adapters
	m := metrics.New()

	userRepo := postgres.NewUserRepository(db, secSvc, &baseLogger)
	denylistRepo := postgres.NewTokenDenylistRepository(db, &baseLogger)
	verificationRepo := postgres.NewVerificationRepository(db, &baseLogger)

	imageStore := s3store.NewImageStore(s3Client, cfg.AWS.Bucket, cfg.AWS.Region, &baseLogger)
	queue := sqsqueue.NewClient(sqsClient, cfg.AWS.QueueURL, cfg.Poller, &baseLogger)
	publisher := snspub.NewPublisher(snsClient, cfg.AWS.TopicARN, &baseLogger)
	oracle := rekadapter.NewOracle(compareClient, labelsClient, cfg.SimilarityThreshold, &baseLogger)

	// 7. Core: engine, router, consumer
	classifier := domain.NewClassifier(cfg.PhotoIDLabels, cfg.SelfieLabels)
	engine := verify.NewEngine(
		verificationRepo, imageStore, oracle, publisher,
		classifier, cfg.NotifyFailClosed, m, &baseLogger,
	)
	router := events.NewRouter(userRepo, denylistRepo, engine, m, &baseLogger)
	consumer := events.NewConsumer(queue, router, cfg.Poller.Interval, m, &baseLogger)

	go consumer.Run(ctx)

	// 8. HTTP ingress
	api := httpapi.NewServer(
		userRepo, denylistRepo, verificationRepo, imageStore, queue,
		cfg.JWTSecret, &baseLogger,
	)
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.Handler(),
	}

	go func() {
		baseLogger.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	baseLogger.Info().Msg("All services initialized successfully")

	<-ctx.Done()
	baseLogger.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	baseLogger.Info().Msg("Shutdown complete")
}
