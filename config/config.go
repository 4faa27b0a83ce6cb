package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	// Server
	ServerPort string `yaml:"server_port"`

	// AWS
	AWSRegion string `yaml:"aws_region"`

	// Buckets; they default to one shared bucket
	VideoBucket      string `yaml:"video_bucket"`
	TranscriptBucket string `yaml:"transcript_bucket"`
	HighlightsBucket string `yaml:"highlights_bucket"`

	// Transcription
	LanguageCode string `yaml:"language_code"`

	// Classification
	ClassifierModelName    string `yaml:"classifier_model_name"`
	ClassifierInstanceType string `yaml:"classifier_instance_type"`

	// Generative model
	ModelID             string `yaml:"model_id"`
	InferenceProfileARN string `yaml:"inference_profile_arn"`

	// Retry policy for the generative model call
	MaxRetries            int     `yaml:"max_retries"`
	InitialBackoffSeconds int     `yaml:"initial_backoff_seconds"`
	BackoffMultiplier     float64 `yaml:"backoff_multiplier"`
	BackoffCapSeconds     int     `yaml:"backoff_cap_seconds"`
}

// Load loads configuration from environment variables, applying an optional
// YAML file named by CONFIG_FILE on top of them
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:             getEnv("SERVER_PORT", "8080"),
		AWSRegion:              getEnv("AWS_REGION", "us-east-1"),
		VideoBucket:            getEnv("VIDEO_BUCKET", "video-pipeline-bucket"),
		TranscriptBucket:       getEnv("TRANSCRIPT_BUCKET", ""),
		HighlightsBucket:       getEnv("HIGHLIGHTS_BUCKET", ""),
		LanguageCode:           getEnv("LANGUAGE_CODE", "en-US"),
		ClassifierModelName:    getEnv("CLASSIFIER_MODEL_NAME", "AudioEventClassifier"),
		ClassifierInstanceType: getEnv("CLASSIFIER_INSTANCE_TYPE", "ml.m5.large"),
		ModelID:                getEnv("MODEL_ID", "amazon.nova-pro-v1:0"),
		InferenceProfileARN:    getEnv("INFERENCE_PROFILE_ARN", ""),
		MaxRetries:             getEnvInt("MAX_RETRIES", 5),
		InitialBackoffSeconds:  getEnvInt("INITIAL_BACKOFF_SECONDS", 1),
		BackoffMultiplier:      getEnvFloat("BACKOFF_MULTIPLIER", 3),
		BackoffCapSeconds:      getEnvInt("BACKOFF_CAP_SECONDS", 30),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if cfg.TranscriptBucket == "" {
		cfg.TranscriptBucket = cfg.VideoBucket
	}
	if cfg.HighlightsBucket == "" {
		cfg.HighlightsBucket = cfg.VideoBucket
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
