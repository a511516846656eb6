package service

import (
	"context"
	"strings"

	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/dto"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/entity"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/pkg/apperrors"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/pkg/logger"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/repository/specification"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/repository/unitofwork"
	"github.com/JoshuaPangaribuan/DocIx-sub000/pkg/filecrypt"
	"github.com/JoshuaPangaribuan/DocIx-sub000/pkg/searchindex"
	"github.com/JoshuaPangaribuan/DocIx-sub000/pkg/storage"

	"github.com/google/uuid"
)

// DocumentDownload is a retrieved document ready to stream to a client.
type DocumentDownload struct {
	Filename    string
	ContentType string
	Content     []byte
}

type IDocumentService interface {
	// Status returns the document with its ledger, including per-segment rows.
	Status(ctx context.Context, documentId uuid.UUID) (*dto.DocumentStatusResponse, error)
	Download(ctx context.Context, documentId uuid.UUID) (*DocumentDownload, error)
	Search(ctx context.Context, query string, limit int) ([]searchindex.Hit, error)
}

type documentService struct {
	uowFactory unitofwork.RepositoryFactory
	storage    storage.Port
	index      searchindex.Index
	codec      *filecrypt.Codec
	logger     logger.ILogger
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	storagePort storage.Port,
	index searchindex.Index,
	codec *filecrypt.Codec,
	sysLogger logger.ILogger,
) IDocumentService {
	return &documentService{
		uowFactory: uowFactory,
		storage:    storagePort,
		index:      index,
		codec:      codec,
		logger:     sysLogger,
	}
}

func (s *documentService) Status(ctx context.Context, documentId uuid.UUID) (*dto.DocumentStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: documentId})
	if err != nil {
		return nil, apperrors.WrapOrchestration("load document", err)
	}
	if doc == nil {
		return nil, apperrors.NewNotFound("document not found")
	}

	resp := &dto.DocumentStatusResponse{
		Id:               doc.Id,
		OriginalFilename: doc.OriginalFilename,
		Size:             doc.Size,
		ContentType:      doc.ContentType,
		Uploader:         doc.Uploader,
		Status:           string(doc.Status),
		ErrorMessage:     doc.ErrorMessage,
		DownloadUrl:      doc.DownloadUrl,
		UploadedAt:       doc.UploadedAt,
		ProcessedAt:      doc.ProcessedAt,
	}

	ledger, err := uow.IndexingLogRepository().FindByDocumentId(ctx, documentId)
	if err != nil {
		return nil, apperrors.WrapOrchestration("load indexing ledger", err)
	}
	if ledger != nil {
		resp.Indexing = toIndexingStatusResponse(ledger)
	}
	return resp, nil
}

func toIndexingStatusResponse(ledger *entity.IndexingLog) *dto.IndexingStatusResponse {
	resp := &dto.IndexingStatusResponse{
		Status:          string(ledger.Status),
		TotalSegments:   ledger.TotalSegments,
		SegmentsIndexed: ledger.SegmentsIndexed,
		SegmentsFailed:  ledger.SegmentsFailed,
		ErrorDetail:     ledger.ErrorDetail,
		UpdatedAt:       ledger.UpdatedAt,
	}
	for _, seg := range ledger.Segments {
		resp.Segments = append(resp.Segments, dto.SegmentStatusResponse{
			SegmentNumber: seg.SegmentNumber,
			Status:        string(seg.Status),
			IndexedAt:     seg.IndexedAt,
			ErrorMessage:  seg.ErrorMessage,
			RetryCount:    seg.RetryCount,
		})
	}
	return resp
}

func (s *documentService) Download(ctx context.Context, documentId uuid.UUID) (*DocumentDownload, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: documentId})
	if err != nil {
		return nil, apperrors.WrapOrchestration("load document", err)
	}
	if doc == nil {
		return nil, apperrors.NewNotFound("document not found")
	}

	content, err := s.storage.Retrieve(ctx, doc.StoragePath)
	if err != nil {
		return nil, apperrors.WrapStorage("retrieve document content", err)
	}

	// The stored name is an encrypted token; recover the original through it
	// and fall back to the recorded name if the token does not decrypt.
	filename := doc.OriginalFilename
	if revealed, err := s.codec.Reveal(strings.TrimSuffix(doc.StoredFilename, ".pdf")); err == nil {
		filename = revealed
	}

	return &DocumentDownload{
		Filename:    filename,
		ContentType: doc.ContentType,
		Content:     content,
	}, nil
}

func (s *documentService) Search(ctx context.Context, query string, limit int) ([]searchindex.Hit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.NewValidation("search query must not be empty")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	hits, err := s.index.Search(ctx, query, limit)
	if err != nil {
		return nil, apperrors.WrapIndex("search segments", err)
	}
	return hits, nil
}
