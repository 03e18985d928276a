package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// AWSConfig holds the settings for every AWS client the process owns.
// Clients are constructed once in main and injected; nothing reads
// these values from ambient globals.
type AWSConfig struct {
	Region       string // default region: SQS, S3, SNS, CompareFaces
	LabelsRegion string // DetectLabels is not available in every region
	EndpointURL  string // optional override, e.g. http://localstack:4566
	QueueURL     string
	TopicARN     string
	Bucket       string
}

// PollerConfig holds the queue-consumer tunables.
type PollerConfig struct {
	Interval          time.Duration
	BatchSize         int32
	WaitTime          time.Duration
	VisibilityTimeout time.Duration
}

// Config holds all configuration for the application.
type Config struct {
	AppEnv        string
	HTTPAddr      string
	DatabaseURL   string
	JWTSecret     string
	EncryptionKey string // hex-encoded AES key for PII at rest

	AWS    AWSConfig
	Poller PollerConfig

	SimilarityThreshold float32
	PhotoIDLabels       []string
	SelfieLabels        []string

	// NotifyFailClosed makes a failed face-verified publish an error
	// (the message redelivers) instead of log-and-continue.
	NotifyFailClosed bool
}

// bindings maps viper keys to their environment variables.
var bindings = map[string]string{
	"app.env":              "APP_ENV",
	"http.addr":            "HTTP_ADDR",
	"database.url":         "DATABASE_URL",
	"jwt.secret":           "JWT_ACCESS_SECRET",
	"encryption.key":       "ENCRYPTION_KEY",
	"aws.region":           "AWS_REGION",
	"aws.labels_region":    "AWS_LABELS_REGION",
	"aws.endpoint_url":     "AWS_ENDPOINT_URL",
	"aws.queue_url":        "SQS_QUEUE_URL",
	"aws.topic_arn":        "SNS_VERIFY_TOPIC_ARN",
	"aws.bucket":           "S3_BUCKET",
	"poll.interval":        "POLL_INTERVAL_SECONDS",
	"poll.batch_size":      "POLL_BATCH_SIZE",
	"poll.wait":            "POLL_WAIT_SECONDS",
	"poll.visibility":      "POLL_VISIBILITY_SECONDS",
	"face.threshold":       "FACE_SIMILARITY_THRESHOLD",
	"face.photo_id_labels": "PHOTO_ID_LABELS",
	"face.selfie_labels":   "SELFIE_LABELS",
	"notify.fail_closed":   "NOTIFY_FAIL_CLOSED",
}

// Load loads configuration from the environment (and .env, when present).
func Load() (*Config, error) {
	// .env is optional; in prod we rely on OS-set env vars.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("could not bind %s: %w", key, err)
		}
	}

	viper.SetDefault("app.env", "dev")
	viper.SetDefault("http.addr", ":8080")
	viper.SetDefault("aws.region", "ca-central-1")
	viper.SetDefault("aws.labels_region", "us-east-1")
	viper.SetDefault("poll.interval", 10)
	viper.SetDefault("poll.batch_size", 10)
	viper.SetDefault("poll.wait", 20)
	viper.SetDefault("poll.visibility", 5)
	viper.SetDefault("face.threshold", 90)
	viper.SetDefault("face.photo_id_labels", []string{
		"id cards", "license", "driving license",
	})
	viper.SetDefault("face.selfie_labels", []string{
		"head", "person", "face", "portrait", "beard", "adult",
		"male", "female", "man", "boy", "women", "girl", "neck",
	})
	viper.SetDefault("notify.fail_closed", false)

	cfg := Config{
		AppEnv:        viper.GetString("app.env"),
		HTTPAddr:      viper.GetString("http.addr"),
		DatabaseURL:   viper.GetString("database.url"),
		JWTSecret:     viper.GetString("jwt.secret"),
		EncryptionKey: viper.GetString("encryption.key"),
		AWS: AWSConfig{
			Region:       viper.GetString("aws.region"),
			LabelsRegion: viper.GetString("aws.labels_region"),
			EndpointURL:  viper.GetString("aws.endpoint_url"),
			QueueURL:     viper.GetString("aws.queue_url"),
			TopicARN:     viper.GetString("aws.topic_arn"),
			Bucket:       viper.GetString("aws.bucket"),
		},
		Poller: PollerConfig{
			Interval:          time.Duration(viper.GetInt("poll.interval")) * time.Second,
			BatchSize:         viper.GetInt32("poll.batch_size"),
			WaitTime:          time.Duration(viper.GetInt("poll.wait")) * time.Second,
			VisibilityTimeout: time.Duration(viper.GetInt("poll.visibility")) * time.Second,
		},
		SimilarityThreshold: float32(viper.GetFloat64("face.threshold")),
		PhotoIDLabels:       viper.GetStringSlice("face.photo_id_labels"),
		SelfieLabels:        viper.GetStringSlice("face.selfie_labels"),
		NotifyFailClosed:    viper.GetBool("notify.fail_closed"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is not set in environment or .env file")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_ACCESS_SECRET is not set in environment or .env file")
	}
	if len(cfg.EncryptionKey) != 64 {
		return nil, fmt.Errorf("ENCRYPTION_KEY must be a 64-character hex string (32 bytes), but got %d chars", len(cfg.EncryptionKey))
	}
	if cfg.AWS.QueueURL == "" {
		return nil, errors.New("SQS_QUEUE_URL is not set in environment or .env file")
	}
	if cfg.AWS.TopicARN == "" {
		return nil, errors.New("SNS_VERIFY_TOPIC_ARN is not set in environment or .env file")
	}
	if cfg.AWS.Bucket == "" {
		return nil, errors.New("S3_BUCKET is not set in environment or .env file")
	}
	if cfg.Poller.BatchSize < 1 || cfg.Poller.BatchSize > 10 {
		return nil, fmt.Errorf("POLL_BATCH_SIZE must be between 1 and 10, got %d", cfg.Poller.BatchSize)
	}

	return &cfg, nil
}
