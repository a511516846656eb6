package bootstrap

import (
	"context"
	"log"

	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/config"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/controller"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/pkg/logger"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/pkg/mailer"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/repository/unitofwork"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/service"
	"github.com/JoshuaPangaribuan/DocIx-sub000/pkg/extraction"
	"github.com/JoshuaPangaribuan/DocIx-sub000/pkg/filecrypt"
	"github.com/JoshuaPangaribuan/DocIx-sub000/pkg/lock"
	"github.com/JoshuaPangaribuan/DocIx-sub000/pkg/queue"
	"github.com/JoshuaPangaribuan/DocIx-sub000/pkg/searchindex"
	"github.com/JoshuaPangaribuan/DocIx-sub000/pkg/storage"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	DocumentController controller.IDocumentController
	AdminController    controller.IAdminController

	// Background services (exposed for main.go to run)
	ConsumerService   service.IConsumerService
	ReconcilerService service.IReconcilerService
	RetryScheduler    service.IRetrySchedulerService

	Logger    logger.ILogger
	Publisher queue.Publisher
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	ctx := context.Background()

	// 1. Core facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	uowFactory := unitofwork.NewRepositoryFactory(db)

	codec, err := filecrypt.NewCodec(cfg.App.FilenameKey)
	if err != nil {
		log.Fatalf("❌ Filename encryption key invalid: %v", err)
	}

	// 2. Infrastructure ports
	blobStorage, err := storage.NewS3Storage(ctx, storage.S3Config{
		AccessKey: cfg.Storage.AwsAccessKey,
		SecretKey: cfg.Storage.AwsSecretKey,
		Region:    cfg.Storage.AwsRegion,
		Bucket:    cfg.Storage.BucketName,
	})
	if err != nil {
		log.Fatalf("❌ Failed to initialize S3 storage: %v", err)
	}

	extractor := extraction.NewDocconvExtractor()

	searchIndex := searchindex.NewRetryingIndex(
		searchindex.NewPostgresIndex(db),
		cfg.Indexing.IndexMaxAttempts,
	)

	publisher, consumer := newQueue(cfg)
	locker := newLocker(cfg, sysLogger)

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Email, cfg.SMTP.Password, cfg.SMTP.Email,
	)

	// 3. Services
	indexingService := service.NewIndexingService(
		uowFactory, blobStorage, extractor, searchIndex, locker, sysLogger,
		cfg.Indexing.MaxSegmentSize, cfg.App.BaseURL,
	)
	uploadService := service.NewUploadService(
		uowFactory, blobStorage, publisher, codec, sysLogger, cfg.Indexing.MaxUploadSize,
	)
	documentService := service.NewDocumentService(uowFactory, blobStorage, searchIndex, codec, sysLogger)
	consumerService := service.NewConsumerService(consumer, indexingService, sysLogger, cfg.Indexing.WorkerCount)
	reconcilerService := service.NewReconcilerService(
		uowFactory, searchIndex, indexingService, emailService, sysLogger, cfg.SMTP.AlertEmail,
	)
	retryScheduler := service.NewRetrySchedulerService(
		uowFactory, indexingService, publisher, sysLogger,
		cfg.Indexing.RetryInterval, cfg.Indexing.RetryCeiling, cfg.Indexing.UploadedGrace,
	)

	// 4. Controllers
	documentController := controller.NewDocumentController(uploadService, documentService)
	adminController := controller.NewAdminController(reconcilerService, sysLogger)

	return &Container{
		DocumentController: documentController,
		AdminController:    adminController,
		ConsumerService:    consumerService,
		ReconcilerService:  reconcilerService,
		RetryScheduler:     retryScheduler,
		Logger:             sysLogger,
		Publisher:          publisher,
	}
}

// newQueue selects the broker driver. NATS JetStream in deployments; the
// in-process channel driver for local development without a broker.
func newQueue(cfg *config.Config) (queue.Publisher, queue.Consumer) {
	if cfg.Queue.Driver == "channel" {
		log.Println("⚠️ Using in-process channel queue; deliveries do not survive restarts")
		q := queue.NewChannelQueue(cfg.Queue.Topic)
		return q, q
	}

	publisher, err := queue.NewNatsPublisher(cfg.Queue.NatsURL, cfg.Queue.Topic)
	if err != nil {
		log.Fatalf("❌ Failed to connect NATS publisher: %v", err)
	}
	consumer, err := queue.NewNatsConsumer(
		cfg.Queue.NatsURL, cfg.Queue.Topic, cfg.Queue.DurableName, cfg.Indexing.Prefetch,
	)
	if err != nil {
		log.Fatalf("❌ Failed to connect NATS consumer: %v", err)
	}
	return publisher, consumer
}

// newLocker prefers the Redis lease so the single-writer guarantee holds
// across processes, falling back to the in-process locker when Redis is
// unreachable.
func newLocker(cfg *config.Config, sysLogger logger.ILogger) lock.DocumentLocker {
	opts, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		sysLogger.Warn("bootstrap", "Invalid REDIS_URL, using in-process document lock", map[string]interface{}{
			"error": err.Error(),
		})
		return lock.NewMemoryLocker()
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		sysLogger.Warn("bootstrap", "Redis unreachable, using in-process document lock", map[string]interface{}{
			"error": err.Error(),
		})
		return lock.NewMemoryLocker()
	}
	return lock.NewRedisLocker(client, cfg.Indexing.LockTTL)
}
