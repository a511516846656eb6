package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/entity"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/pkg/apperrors"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/pkg/logger"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/repository/specification"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/repository/unitofwork"
	"github.com/JoshuaPangaribuan/DocIx-sub000/pkg/extraction"
	"github.com/JoshuaPangaribuan/DocIx-sub000/pkg/lock"
	"github.com/JoshuaPangaribuan/DocIx-sub000/pkg/searchindex"
	"github.com/JoshuaPangaribuan/DocIx-sub000/pkg/segmenter"
	"github.com/JoshuaPangaribuan/DocIx-sub000/pkg/storage"

	"github.com/google/uuid"
)

// ErrDocumentBusy means another worker holds the document's indexing lease.
// Callers should redeliver or skip, never run anyway.
var ErrDocumentBusy = errors.New("document is already being indexed")

type IIndexingService interface {
	// ProcessIndexing drives one document through retrieval, extraction,
	// segmentation and per-segment indexing. Indexing failures are captured
	// into the ledger and document state, not returned; the error return is
	// reserved for ErrDocumentBusy and lock infrastructure failures.
	ProcessIndexing(ctx context.Context, documentId uuid.UUID) error
}

type indexingService struct {
	uowFactory     unitofwork.RepositoryFactory
	storage        storage.Port
	extractor      extraction.Port
	index          searchindex.Index
	locker         lock.DocumentLocker
	logger         logger.ILogger
	maxSegmentSize int
	baseURL        string
}

func NewIndexingService(
	uowFactory unitofwork.RepositoryFactory,
	storagePort storage.Port,
	extractor extraction.Port,
	index searchindex.Index,
	locker lock.DocumentLocker,
	sysLogger logger.ILogger,
	maxSegmentSize int,
	baseURL string,
) IIndexingService {
	return &indexingService{
		uowFactory:     uowFactory,
		storage:        storagePort,
		extractor:      extractor,
		index:          index,
		locker:         locker,
		logger:         sysLogger,
		maxSegmentSize: maxSegmentSize,
		baseURL:        baseURL,
	}
}

func (s *indexingService) ProcessIndexing(ctx context.Context, documentId uuid.UUID) error {
	acquired, err := s.locker.Acquire(ctx, documentId)
	if err != nil {
		return fmt.Errorf("acquire indexing lease: %w", err)
	}
	if !acquired {
		return ErrDocumentBusy
	}
	defer func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), documentId); err != nil {
			s.logger.Warn("indexing", "Failed to release indexing lease", map[string]interface{}{
				"document_id": documentId, "error": err.Error(),
			})
		}
	}()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	// Load or create the ledger for this document.
	ledger, err := uow.IndexingLogRepository().FindByDocumentId(ctx, documentId)
	if err != nil {
		return fmt.Errorf("load ledger for %s: %w", documentId, err)
	}
	if ledger == nil {
		ledger = entity.NewIndexingLog(documentId, now)
	}
	if err := uow.IndexingLogRepository().Upsert(ctx, ledger); err != nil {
		return fmt.Errorf("upsert ledger for %s: %w", documentId, err)
	}

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: documentId})
	if err != nil {
		return fmt.Errorf("load document %s: %w", documentId, err)
	}
	if doc == nil {
		// Terminal: no automatic retry for a ledger without a document.
		ledger.MarkFailed("document not found", time.Now())
		if err := uow.IndexingLogRepository().Update(ctx, ledger); err != nil {
			s.logger.Error("indexing", "Failed to persist ledger for missing document", map[string]interface{}{
				"document_id": documentId, "error": err.Error(),
			})
		}
		return nil
	}

	runErr := s.safeRun(ctx, uow, ledger, doc)
	if runErr == nil {
		return nil
	}

	// Safety net: whatever happened, the run never leaves IN_PROGRESS behind.
	s.logger.Error("indexing", "Indexing run failed", map[string]interface{}{
		"document_id": documentId, "error": runErr.Error(),
	})

	failedAt := time.Now()
	ledger.MarkFailed(runErr.Error(), failedAt)
	if err := uow.IndexingLogRepository().Update(ctx, ledger); err != nil {
		s.logger.Error("indexing", "Failed to persist failed ledger", map[string]interface{}{
			"document_id": documentId, "error": err.Error(),
		})
	}

	doc.MarkFailed(runErr.Error(), failedAt)
	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		s.logger.Error("indexing", "Failed to persist failed document", map[string]interface{}{
			"document_id": documentId, "error": err.Error(),
		})
	}

	return nil
}

// safeRun executes the pipeline and converts panics into errors so the
// caller's failure handling always runs.
func (s *indexingService) safeRun(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	ledger *entity.IndexingLog,
	doc *entity.Document,
) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.WrapOrchestration(fmt.Sprintf("unexpected failure: %v", r), nil)
		}
	}()
	return s.run(ctx, uow, ledger, doc)
}

func (s *indexingService) run(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	ledger *entity.IndexingLog,
	doc *entity.Document,
) error {
	doc.MarkProcessing()
	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		return apperrors.WrapOrchestration("mark document processing", err)
	}

	raw, err := s.storage.Retrieve(ctx, doc.StoragePath)
	if err != nil {
		return apperrors.WrapStorage("retrieve document content", err)
	}

	text, err := s.extractor.ExtractText(ctx, raw, doc.OriginalFilename)
	if err != nil {
		return apperrors.WrapExtraction("extract document text", err)
	}

	segments := segmenter.Segment(text, s.maxSegmentSize)
	if len(segments) == 0 {
		return apperrors.WrapExtraction("document produced no segments", nil)
	}

	s.logger.Info("indexing", "Document segmented", map[string]interface{}{
		"document_id": doc.Id, "segments": len(segments),
	})

	// Reinitialize the ledger for this attempt. The segment-row swap is a
	// single transaction; prior retry counts survive inside the aggregate.
	ledger.BeginAttempt(len(segments), time.Now())
	if err := uow.IndexingLogRepository().Upsert(ctx, ledger); err != nil {
		return apperrors.WrapOrchestration("persist ledger attempt", err)
	}
	if err := uow.IndexingLogRepository().ReplaceSegments(ctx, ledger); err != nil {
		return apperrors.WrapOrchestration("reinitialize segment logs", err)
	}

	// Drop whatever a previous attempt left in the index; combined with the
	// deterministic segment ids this keeps re-runs duplicate-free.
	if err := s.index.DeleteByDocumentId(ctx, doc.Id); err != nil {
		return apperrors.WrapIndex("clear previous index entries", err)
	}

	downloadUrl := fmt.Sprintf("%s/api/document/v1/%s/download", s.baseURL, doc.Id)

	// Attempt every segment; a failure never short-circuits the loop.
	for i, segment := range segments {
		number := i + 1
		indexErr := s.index.IndexSegment(ctx, searchindex.SegmentDocument{
			DocumentId:       doc.Id,
			FileName:         doc.StoredFilename,
			OriginalFileName: doc.OriginalFilename,
			ExtractedContent: segment,
			SegmentNumber:    number,
			TotalSegments:    len(segments),
			Uploader:         doc.Uploader,
			UploadedAt:       doc.UploadedAt,
			DownloadUrl:      downloadUrl,
		})
		if indexErr != nil {
			s.logger.Warn("indexing", "Segment failed to index", map[string]interface{}{
				"document_id": doc.Id, "segment": number, "error": indexErr.Error(),
			})
			ledger.MarkSegmentFailed(number, indexErr.Error())
			continue
		}
		ledger.MarkSegmentIndexed(number, time.Now())
	}

	finishedAt := time.Now()
	ledger.Finalize(finishedAt)
	if err := uow.IndexingLogRepository().Update(ctx, ledger); err != nil {
		return apperrors.WrapOrchestration("persist ledger outcome", err)
	}

	if ledger.Status == entity.IndexingStatusFullyIndexed {
		doc.MarkProcessed(text, downloadUrl, finishedAt)
	} else {
		doc.MarkFailed(fmt.Sprintf(
			"indexing incomplete: %d/%d segments indexed, %d failed",
			ledger.SegmentsIndexed, ledger.TotalSegments, ledger.SegmentsFailed,
		), finishedAt)
	}
	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		return apperrors.WrapOrchestration("persist document outcome", err)
	}

	s.logger.Info("indexing", "Indexing run finished", map[string]interface{}{
		"document_id": doc.Id,
		"status":      string(ledger.Status),
		"indexed":     ledger.SegmentsIndexed,
		"failed":      ledger.SegmentsFailed,
	})

	return nil
}
