package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/dto"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/entity"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/pkg/apperrors"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/pkg/logger"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/pkg/serverutils"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/repository/unitofwork"
	"github.com/JoshuaPangaribuan/DocIx-sub000/pkg/filecrypt"
	"github.com/JoshuaPangaribuan/DocIx-sub000/pkg/queue"
	"github.com/JoshuaPangaribuan/DocIx-sub000/pkg/storage"

	"github.com/google/uuid"
)

type IUploadService interface {
	Upload(ctx context.Context, cmd *dto.UploadDocumentCommand) (*dto.UploadDocumentResponse, error)
}

type uploadService struct {
	uowFactory    unitofwork.RepositoryFactory
	storage       storage.Port
	publisher     queue.Publisher
	codec         *filecrypt.Codec
	logger        logger.ILogger
	maxUploadSize int64
}

func NewUploadService(
	uowFactory unitofwork.RepositoryFactory,
	storagePort storage.Port,
	publisher queue.Publisher,
	codec *filecrypt.Codec,
	sysLogger logger.ILogger,
	maxUploadSize int64,
) IUploadService {
	return &uploadService{
		uowFactory:    uowFactory,
		storage:       storagePort,
		publisher:     publisher,
		codec:         codec,
		logger:        sysLogger,
		maxUploadSize: maxUploadSize,
	}
}

// Upload validates and persists one document, then signals the indexing
// pipeline. The blob write, the database write, and the queue publish are
// deliberately not one transaction: a failed database write compensates by
// deleting the blob, while a failed publish leaves the upload successful for
// the retry scheduler to pick up.
func (s *uploadService) Upload(ctx context.Context, cmd *dto.UploadDocumentCommand) (*dto.UploadDocumentResponse, error) {
	if err := serverutils.ValidateRequest(cmd); err != nil {
		return nil, err
	}
	if cmd.Size > s.maxUploadSize {
		return nil, apperrors.NewValidation(fmt.Sprintf(
			"file size %d exceeds the %d byte limit", cmd.Size, s.maxUploadSize,
		))
	}
	if !isPdfContentType(cmd.ContentType) {
		return nil, apperrors.NewValidation(fmt.Sprintf(
			"unsupported content type %q, only PDF uploads are accepted", cmd.ContentType,
		))
	}

	documentId := uuid.New()
	now := time.Now()

	storedName, err := s.codec.Obfuscate(cmd.Filename)
	if err != nil {
		return nil, apperrors.WrapOrchestration("derive stored filename", err)
	}
	storedFilename := storedName + ".pdf"

	storagePath, err := s.storage.Store(ctx, storedFilename, cmd.Content, cmd.Size, cmd.ContentType)
	if err != nil {
		return nil, apperrors.WrapStorage("store uploaded file", err)
	}

	doc := &entity.Document{
		Id:               documentId,
		OriginalFilename: cmd.Filename,
		StoredFilename:   storedFilename,
		Size:             cmd.Size,
		ContentType:      cmd.ContentType,
		StoragePath:      storagePath,
		Uploader:         cmd.Uploader,
		Status:           entity.DocumentStatusUploaded,
		UploadedAt:       now,
	}

	if err := s.persist(ctx, doc, now); err != nil {
		// Compensation: the blob must not outlive a failed metadata write.
		if delErr := s.storage.Delete(context.WithoutCancel(ctx), storagePath); delErr != nil {
			s.logger.Error("upload", "Failed to delete orphaned blob after persist failure", map[string]interface{}{
				"document_id": documentId, "storage_path": storagePath, "error": delErr.Error(),
			})
		}
		return nil, err
	}

	s.publishIndexSignal(ctx, documentId)

	s.logger.Info("upload", "Document accepted", map[string]interface{}{
		"document_id": documentId, "filename": cmd.Filename, "size": cmd.Size, "uploader": cmd.Uploader,
	})

	return &dto.UploadDocumentResponse{Id: documentId}, nil
}

func (s *uploadService) persist(ctx context.Context, doc *entity.Document, now time.Time) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return apperrors.WrapOrchestration("begin upload transaction", err)
	}
	defer uow.Rollback()

	// A ledger keyed by this id must not exist yet; a collision would let
	// two uploads share one ledger.
	existing, err := uow.IndexingLogRepository().FindByDocumentId(ctx, doc.Id)
	if err != nil {
		return apperrors.WrapOrchestration("check ledger existence", err)
	}
	if existing != nil {
		return apperrors.WrapOrchestration("persist indexing ledger",
			fmt.Errorf("ledger already exists for document %s", doc.Id))
	}

	if err := uow.DocumentRepository().Create(ctx, doc); err != nil {
		return apperrors.WrapOrchestration("persist document", err)
	}
	if err := uow.IndexingLogRepository().Upsert(ctx, entity.NewIndexingLog(doc.Id, now)); err != nil {
		return apperrors.WrapOrchestration("persist indexing ledger", err)
	}

	if err := uow.Commit(); err != nil {
		return apperrors.WrapOrchestration("commit upload transaction", err)
	}
	return nil
}

// publishIndexSignal is best-effort: the upload already committed, and a
// stale UPLOADED document gets rescued by the retry scheduler.
func (s *uploadService) publishIndexSignal(ctx context.Context, documentId uuid.UUID) {
	payload, err := json.Marshal(dto.PublishIndexDocumentMessage{DocumentId: documentId})
	if err != nil {
		s.logger.Error("upload", "Failed to marshal index signal", map[string]interface{}{
			"document_id": documentId, "error": err.Error(),
		})
		return
	}
	if err := s.publisher.Publish(ctx, payload); err != nil {
		s.logger.Warn("upload", "Failed to publish index signal, scheduler will rescue", map[string]interface{}{
			"document_id": documentId, "error": err.Error(),
		})
	}
}

func isPdfContentType(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct == "application/pdf" || ct == "application/x-pdf"
}
