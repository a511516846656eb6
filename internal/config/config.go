package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Storage  StorageConfig
	Queue    QueueConfig
	Indexing IndexingConfig
	SMTP     SMTPConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	RedisURL           string
	JwtSecret          string
	FilenameKey        string // hex-encoded 32-byte key for stored-name encryption
}

type DatabaseConfig struct {
	Connection string
}

type StorageConfig struct {
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string
}

type QueueConfig struct {
	Driver      string // "nats" or "channel"
	NatsURL     string
	Topic       string
	DurableName string
}

type IndexingConfig struct {
	MaxSegmentSize    int
	MaxUploadSize     int64
	WorkerCount       int
	Prefetch          int
	IndexMaxAttempts  int           // per-call backoff attempts against the search index
	RetryCeiling      int           // cross-run per-segment retry ceiling
	RetryInterval     time.Duration // retry scheduler tick
	ReconcileInterval time.Duration // consistency reconciler tick
	UploadedGrace     time.Duration // how stale an UPLOADED document must be before rescue
	ShutdownTimeout   time.Duration
	LockTTL           time.Duration
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
	AlertEmail string // empty disables reconciliation alerts
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
			FilenameKey:        getEnv("FILENAME_ENCRYPTION_KEY", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Storage: StorageConfig{
			AwsAccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
			AwsSecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			AwsRegion:    getEnv("AWS_REGION", ""),
			BucketName:   getEnv("S3_BUCKET_NAME", ""),
		},
		Queue: QueueConfig{
			Driver:      getEnv("QUEUE_DRIVER", "nats"),
			NatsURL:     getEnv("NATS_URL", "nats://localhost:4222"),
			Topic:       getEnv("DOCUMENT_UPLOADED_TOPIC_NAME", "DOCUMENT_UPLOADED"),
			DurableName: getEnv("DOCUMENT_CONSUMER_DURABLE", "document-indexer"),
		},
		Indexing: IndexingConfig{
			MaxSegmentSize:    getEnvAsInt("MAX_SEGMENT_SIZE", 1000),
			MaxUploadSize:     int64(getEnvAsInt("MAX_UPLOAD_SIZE_BYTES", 10*1024*1024)),
			WorkerCount:       getEnvAsInt("INDEXING_WORKER_COUNT", 4),
			Prefetch:          getEnvAsInt("INDEXING_PREFETCH", 8),
			IndexMaxAttempts:  getEnvAsInt("INDEX_MAX_ATTEMPTS", 3),
			RetryCeiling:      getEnvAsInt("SEGMENT_RETRY_CEILING", 5),
			RetryInterval:     getEnvAsDuration("RETRY_INTERVAL", 5*time.Minute),
			ReconcileInterval: getEnvAsDuration("RECONCILE_INTERVAL", 30*time.Minute),
			UploadedGrace:     getEnvAsDuration("UPLOADED_GRACE", 10*time.Minute),
			ShutdownTimeout:   getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
			LockTTL:           getEnvAsDuration("DOCUMENT_LOCK_TTL", 10*time.Minute),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "DocIx"),
			AlertEmail: getEnv("RECONCILER_ALERT_EMAIL", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
