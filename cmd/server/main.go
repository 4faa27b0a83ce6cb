package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"video-pipeline/api/rest/routes"
	"video-pipeline/config"
	"video-pipeline/core/invoke"
	"video-pipeline/core/locator"
	"video-pipeline/core/models"
	"video-pipeline/core/pipeline"
	"video-pipeline/media"
	"video-pipeline/services/classify"
	"video-pipeline/services/genai"
	"video-pipeline/services/transcribe"
	"video-pipeline/storage"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	transcribesvc "github.com/aws/aws-sdk-go-v2/service/transcribe"
	"github.com/gorilla/mux"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		log.Fatalf("Failed to load AWS configuration: %v", err)
	}

	// Initialize stores
	videoStore := storage.NewS3Store(s3.NewFromConfig(awsCfg), cfg.VideoBucket)
	transcriptStore := storage.NewS3Store(s3.NewFromConfig(awsCfg), cfg.TranscriptBucket)
	highlightStore := storage.NewS3Store(s3.NewFromConfig(awsCfg), cfg.HighlightsBucket)

	// Initialize service clients
	transcriber := transcribe.NewClient(transcribesvc.NewFromConfig(awsCfg))
	classifier := classify.NewClient(sagemaker.NewFromConfig(awsCfg))
	model := genai.NewClient(bedrockruntime.NewFromConfig(awsCfg), cfg.ModelID, cfg.InferenceProfileARN)

	// Initialize the retry policy for the generative model call
	invoker := invoke.New(invoke.Policy{
		MaxRetries:        cfg.MaxRetries,
		InitialBackoff:    time.Duration(cfg.InitialBackoffSeconds) * time.Second,
		BackoffMultiplier: cfg.BackoffMultiplier,
		BackoffCap:        time.Duration(cfg.BackoffCapSeconds) * time.Second,
		JitterFraction:    invoke.DefaultJitterFraction,
	})

	// Initialize stages
	ingest := pipeline.NewIngestStage(videoStore, transcriber, classifier, media.NewFFmpegExtractor(), pipeline.IngestConfig{
		TranscriptBucket:       cfg.TranscriptBucket,
		LanguageCode:           cfg.LanguageCode,
		ClassifierModelName:    cfg.ClassifierModelName,
		ClassifierInstanceType: cfg.ClassifierInstanceType,
	})
	highlight := pipeline.NewHighlightStage(transcriptStore, highlightStore, locator.New(videoStore, models.InputPrefix), invoker, model, pipeline.HighlightConfig{
		Bucket:  cfg.VideoBucket,
		ModelID: cfg.ModelID,
	})

	// Setup routes
	r := mux.NewRouter()
	routes.SetupRoutes(r, ingest, highlight, highlightStore)

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	// Start server
	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Starting server on port %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := server.Shutdown(context.Background()); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
