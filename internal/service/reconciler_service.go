package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/dto"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/entity"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/model"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/pkg/apperrors"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/pkg/logger"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/pkg/mailer"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/repository/specification"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/repository/unitofwork"
	"github.com/JoshuaPangaribuan/DocIx-sub000/pkg/searchindex"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

const (
	summaryCacheKey = "indexing-summary"
	summaryCacheTTL = 30 * time.Second
)

type IReconcilerService interface {
	// Summary aggregates ledger counts by status plus the success rate.
	Summary(ctx context.Context) (*dto.IndexingSummaryResponse, error)
	// CheckConsistency compares PROCESSED documents against the search index
	// and persists the run for later inspection.
	CheckConsistency(ctx context.Context) (*dto.ConsistencyReportResponse, error)
	// ReindexMissing re-runs the orchestrator for documents the consistency
	// check found absent from the index.
	ReindexMissing(ctx context.Context) (*dto.RepairResponse, error)
	// ReindexAll re-runs the orchestrator for every known document.
	ReindexAll(ctx context.Context) (*dto.RepairResponse, error)
	// RetryFailed re-runs FAILED ledgers that still have retry budget.
	RetryFailed(ctx context.Context) (*dto.RepairResponse, error)
	// RecentRuns returns persisted consistency runs, newest first.
	RecentRuns(ctx context.Context, limit int) ([]*model.ReconciliationRun, error)
	// Run ticks CheckConsistency plus repair on the given interval until ctx
	// ends. Meant for a dedicated goroutine.
	Run(ctx context.Context, interval time.Duration)
}

type reconcilerService struct {
	uowFactory unitofwork.RepositoryFactory
	index      searchindex.Index
	indexer    IIndexingService
	mail       mailer.IEmailService
	logger     logger.ILogger
	cache      *gocache.Cache
	alertEmail string
}

func NewReconcilerService(
	uowFactory unitofwork.RepositoryFactory,
	index searchindex.Index,
	indexer IIndexingService,
	mail mailer.IEmailService,
	sysLogger logger.ILogger,
	alertEmail string,
) IReconcilerService {
	return &reconcilerService{
		uowFactory: uowFactory,
		index:      index,
		indexer:    indexer,
		mail:       mail,
		logger:     sysLogger,
		cache:      gocache.New(summaryCacheTTL, 2*summaryCacheTTL),
		alertEmail: alertEmail,
	}
}

func (s *reconcilerService) Summary(ctx context.Context) (*dto.IndexingSummaryResponse, error) {
	if cached, found := s.cache.Get(summaryCacheKey); found {
		return cached.(*dto.IndexingSummaryResponse), nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	counts, err := uow.IndexingLogRepository().CountByStatus(ctx)
	if err != nil {
		return nil, apperrors.WrapOrchestration("count ledgers by status", err)
	}

	resp := &dto.IndexingSummaryResponse{
		Counts:      make(map[string]int64, len(counts)),
		SuccessRate: entity.SuccessRate(counts),
	}
	for status, n := range counts {
		resp.Counts[string(status)] = n
		resp.Total += n
	}

	s.cache.Set(summaryCacheKey, resp, gocache.DefaultExpiration)
	return resp, nil
}

func (s *reconcilerService) CheckConsistency(ctx context.Context) (*dto.ConsistencyReportResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	docs, err := uow.DocumentRepository().FindAll(ctx,
		specification.ByDocumentStatus{Status: entity.DocumentStatusProcessed},
	)
	if err != nil {
		return nil, apperrors.WrapOrchestration("list processed documents", err)
	}

	report := &dto.ConsistencyReportResponse{
		ProcessedCount: len(docs),
		CheckedAt:      time.Now(),
	}
	for _, doc := range docs {
		exists, err := s.index.ExistsByDocumentId(ctx, doc.Id)
		if err != nil {
			return nil, apperrors.WrapIndex("probe index for document", err)
		}
		if exists {
			report.IndexedCount++
		} else {
			report.MissingDocumentIds = append(report.MissingDocumentIds, doc.Id)
		}
	}
	report.MissingCount = len(report.MissingDocumentIds)
	if report.ProcessedCount > 0 {
		report.ConsistencyPercentage = float64(report.ProcessedCount-report.MissingCount) /
			float64(report.ProcessedCount) * 100
	} else {
		report.ConsistencyPercentage = 100
	}

	s.persistRun(ctx, uow, report)
	return report, nil
}

func (s *reconcilerService) persistRun(ctx context.Context, uow unitofwork.UnitOfWork, report *dto.ConsistencyReportResponse) {
	payload, err := json.Marshal(map[string]interface{}{
		"missing_document_ids": report.MissingDocumentIds,
	})
	if err != nil {
		payload = []byte("{}")
	}

	run := &model.ReconciliationRun{
		ProcessedCount:        report.ProcessedCount,
		IndexedCount:          report.IndexedCount,
		MissingCount:          report.MissingCount,
		ConsistencyPercentage: report.ConsistencyPercentage,
		Report:                payload,
		RanAt:                 report.CheckedAt,
	}
	if err := uow.ReconciliationRunRepository().Create(ctx, run); err != nil {
		s.logger.Warn("reconciler", "Failed to persist reconciliation run", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *reconcilerService) ReindexMissing(ctx context.Context) (*dto.RepairResponse, error) {
	report, err := s.CheckConsistency(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.RepairResponse{Triggered: s.reindex(ctx, report.MissingDocumentIds)}, nil
}

func (s *reconcilerService) ReindexAll(ctx context.Context) (*dto.RepairResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	docs, err := uow.DocumentRepository().FindAll(ctx)
	if err != nil {
		return nil, apperrors.WrapOrchestration("list documents", err)
	}

	ids := make([]uuid.UUID, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.Id)
	}
	return &dto.RepairResponse{Triggered: s.reindex(ctx, ids)}, nil
}

func (s *reconcilerService) RetryFailed(ctx context.Context) (*dto.RepairResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	ledgers, err := uow.IndexingLogRepository().FindAll(ctx,
		specification.ByIndexingStatus{Status: entity.IndexingStatusFailed},
	)
	if err != nil {
		return nil, apperrors.WrapOrchestration("list failed ledgers", err)
	}

	ids := make([]uuid.UUID, 0, len(ledgers))
	for _, ledger := range ledgers {
		ids = append(ids, ledger.DocumentId)
	}
	return &dto.RepairResponse{Triggered: s.reindex(ctx, ids)}, nil
}

// reindex re-runs the orchestrator per document, skipping busy ones. A busy
// document is already being handled; the next tick will catch stragglers.
func (s *reconcilerService) reindex(ctx context.Context, ids []uuid.UUID) int {
	triggered := 0
	for _, id := range ids {
		if err := s.indexer.ProcessIndexing(ctx, id); err != nil {
			if errors.Is(err, ErrDocumentBusy) {
				continue
			}
			s.logger.Warn("reconciler", "Reindex run failed to start", map[string]interface{}{
				"document_id": id, "error": err.Error(),
			})
			continue
		}
		triggered++
	}
	return triggered
}

func (s *reconcilerService) RecentRuns(ctx context.Context, limit int) ([]*model.ReconciliationRun, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	runs, err := uow.ReconciliationRunRepository().FindLatest(ctx, limit)
	if err != nil {
		return nil, apperrors.WrapOrchestration("list reconciliation runs", err)
	}
	return runs, nil
}

func (s *reconcilerService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *reconcilerService) tick(ctx context.Context) {
	report, err := s.CheckConsistency(ctx)
	if err != nil {
		s.logger.Error("reconciler", "Consistency check failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	s.logger.Info("reconciler", "Consistency check finished", map[string]interface{}{
		"processed": report.ProcessedCount,
		"missing":   report.MissingCount,
		"pct":       report.ConsistencyPercentage,
	})

	if report.MissingCount == 0 {
		return
	}

	if s.alertEmail != "" {
		ids := make([]string, 0, len(report.MissingDocumentIds))
		for _, id := range report.MissingDocumentIds {
			ids = append(ids, id.String())
		}
		if err := s.mail.SendReconciliationAlert(s.alertEmail, report.MissingCount, ids); err != nil {
			s.logger.Warn("reconciler", "Failed to send reconciliation alert", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	repaired := s.reindex(ctx, report.MissingDocumentIds)
	s.logger.Info("reconciler", "Repair pass finished", map[string]interface{}{
		"triggered": repaired,
	})
}
