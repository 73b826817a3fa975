package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	tushandler "github.com/tus/tusd/v2/pkg/handler"

	"github.com/scanforge/scan-service/internal/api"
	"github.com/scanforge/scan-service/internal/api/handlers"
	"github.com/scanforge/scan-service/internal/configuration"
	natsclient "github.com/scanforge/scan-service/internal/nats"
	"github.com/scanforge/scan-service/internal/services"
	"github.com/scanforge/scan-service/internal/storage"
	"github.com/scanforge/scan-service/internal/uploads"
)

func main() {
	cfg := configuration.Load()

	// Relational store: Postgres, with an in-memory fallback so the service
	// still boots in storage-less development.
	var store storage.Storage
	pg := &storage.PostgresStorage{}
	if err := pg.Connect(cfg.Database.ConnectionString()); err != nil {
		log.Printf("Warning: Postgres unavailable, using in-memory storage: %v", err)
		store = storage.NewMemoryStorage()
	} else {
		store = pg
	}

	if err := services.InitializeMinio(
		cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey,
		cfg.MinIO.BucketName, cfg.MinIO.UseSSL,
	); err != nil {
		log.Fatalf("Failed to initialize MinIO: %v", err)
	}
	objects := services.GetMinioService()

	bus, err := natsclient.NewClient(cfg.NATSURL)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer bus.Close()

	thumbnails := services.NewThumbnailGenerator(objects, cfg.FFmpegPath)

	scanService := &services.ScanService{
		Files:    store,
		Projects: store,
		Scans:    store,
		Objects:  objects,
		Bus:      bus,
	}
	projectService := &services.ProjectService{
		Files:    store,
		Projects: store,
		Objects:  objects,
	}
	activityService := &services.ActivityService{
		Projects:   store,
		Scans:      store,
		Activities: store,
		Users:      store,
		Bus:        bus,
	}
	notificationService := &services.NotificationService{
		Store: store,
		Bus:   bus,
	}
	processing := services.NewProcessingClient(cfg.Processing.BaseURL, cfg.Processing.APIKey)
	ingest := &services.IngestService{
		Files:      store,
		Objects:    objects,
		Thumbnails: thumbnails,
	}

	// Event fabric: subscribe every subject once during startup.
	if err := bus.SubscribeAll(natsclient.Routes(processing, activityService, notificationService)); err != nil {
		log.Fatalf("Failed to subscribe NATS routes: %v", err)
	}

	// Resumable upload server: register hooks, then start listening.
	registry := uploads.NewRegistry()
	registry.RegisterNaming(uploads.DefaultNaming)
	registry.RegisterUploadFinish(uploads.CompletionHandler(ingest))
	registry.Register(uploads.EventUploadTerminate, func(hook tushandler.HookEvent) {
		log.Printf("[UPLOAD] upload %s terminated", hook.Upload.ID)
	})

	uploadServer := uploads.NewServer(uploads.ServerConfig{
		Addr:     ":" + cfg.Upload.Port,
		BasePath: cfg.Upload.BasePath,
		Bucket:   cfg.MinIO.BucketName,
		S3:       newS3Client(cfg),
	}, registry)
	if err := uploadServer.Start(); err != nil {
		log.Fatalf("Failed to start upload server: %v", err)
	}

	setupGracefulShutdown(bus)

	r := gin.Default()
	api.RegisterRoutes(r, &handlers.API{
		Projects:      projectService,
		Scans:         scanService,
		Activity:      activityService,
		Notifications: notificationService,
		Users:         store,
		WebhookKey:    cfg.Processing.APIKey,
	})

	log.Println("Server starting on :" + cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// newS3Client builds the AWS SDK client the tus store writes through,
// pointed at the same MinIO endpoint the gateway reads from.
func newS3Client(cfg *configuration.Config) *s3.Client {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.MinIO.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, "")),
	)
	if err != nil {
		log.Fatalf("Failed to load S3 config: %v", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.MinIO.EndpointURL())
		o.UsePathStyle = true
	})
}

func setupGracefulShutdown(bus *natsclient.Client) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Shutting down gracefully...")
		bus.Close()
		os.Exit(0)
	}()
}
