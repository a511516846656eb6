package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/dto"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/entity"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/pkg/logger"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/repository/specification"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/repository/unitofwork"
	"github.com/JoshuaPangaribuan/DocIx-sub000/pkg/queue"
)

type IRetrySchedulerService interface {
	// Run ticks Sweep on the configured interval until ctx ends. Meant for a
	// dedicated goroutine.
	Run(ctx context.Context)
	// Sweep performs one scheduling pass: retry eligible FAILED ledgers and
	// rescue UPLOADED documents whose queue signal was lost.
	Sweep(ctx context.Context) (retried, rescued int)
}

type retrySchedulerService struct {
	uowFactory    unitofwork.RepositoryFactory
	indexer       IIndexingService
	publisher     queue.Publisher
	logger        logger.ILogger
	interval      time.Duration
	retryCeiling  int
	uploadedGrace time.Duration
}

func NewRetrySchedulerService(
	uowFactory unitofwork.RepositoryFactory,
	indexer IIndexingService,
	publisher queue.Publisher,
	sysLogger logger.ILogger,
	interval time.Duration,
	retryCeiling int,
	uploadedGrace time.Duration,
) IRetrySchedulerService {
	return &retrySchedulerService{
		uowFactory:    uowFactory,
		indexer:       indexer,
		publisher:     publisher,
		logger:        sysLogger,
		interval:      interval,
		retryCeiling:  retryCeiling,
		uploadedGrace: uploadedGrace,
	}
}

func (s *retrySchedulerService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			retried, rescued := s.Sweep(ctx)
			if retried > 0 || rescued > 0 {
				s.logger.Info("retry-scheduler", "Sweep finished", map[string]interface{}{
					"retried": retried, "rescued": rescued,
				})
			}
		}
	}
}

func (s *retrySchedulerService) Sweep(ctx context.Context) (int, int) {
	return s.retryFailedLedgers(ctx), s.rescueStaleUploads(ctx)
}

// retryFailedLedgers re-runs FAILED ledgers whose segments still have retry
// budget. Ledgers with every segment at the ceiling stay FAILED until an
// operator reindexes them explicitly.
func (s *retrySchedulerService) retryFailedLedgers(ctx context.Context) int {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	ledgers, err := uow.IndexingLogRepository().FindAll(ctx,
		specification.ByIndexingStatus{Status: entity.IndexingStatusFailed},
		specification.HasRetryableSegment{Ceiling: s.retryCeiling},
	)
	if err != nil {
		s.logger.Error("retry-scheduler", "Failed to list retryable ledgers", map[string]interface{}{
			"error": err.Error(),
		})
		return 0
	}

	retried := 0
	for _, ledger := range ledgers {
		// A ledger whose document row is gone is terminal; re-running it
		// can only fail the same way.
		doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: ledger.DocumentId})
		if err != nil || doc == nil {
			continue
		}
		if err := s.indexer.ProcessIndexing(ctx, ledger.DocumentId); err != nil {
			if errors.Is(err, ErrDocumentBusy) {
				continue
			}
			s.logger.Warn("retry-scheduler", "Retry run failed to start", map[string]interface{}{
				"document_id": ledger.DocumentId, "error": err.Error(),
			})
			continue
		}
		retried++
	}
	return retried
}

// rescueStaleUploads re-publishes the index signal for documents stuck in
// UPLOADED past the grace period. Their upload committed but the original
// publish was lost or never consumed.
func (s *retrySchedulerService) rescueStaleUploads(ctx context.Context) int {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	docs, err := uow.DocumentRepository().FindAll(ctx,
		specification.ByDocumentStatus{Status: entity.DocumentStatusUploaded},
		specification.UploadedBefore{Cutoff: time.Now().Add(-s.uploadedGrace)},
	)
	if err != nil {
		s.logger.Error("retry-scheduler", "Failed to list stale uploads", map[string]interface{}{
			"error": err.Error(),
		})
		return 0
	}

	rescued := 0
	for _, doc := range docs {
		payload, err := json.Marshal(dto.PublishIndexDocumentMessage{DocumentId: doc.Id})
		if err != nil {
			continue
		}
		if err := s.publisher.Publish(ctx, payload); err != nil {
			s.logger.Warn("retry-scheduler", "Failed to re-publish index signal", map[string]interface{}{
				"document_id": doc.Id, "error": err.Error(),
			})
			continue
		}
		rescued++
	}
	return rescued
}
