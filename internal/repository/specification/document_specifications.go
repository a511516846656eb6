package specification

import (
	"time"

	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByDocumentStatus filters documents by lifecycle status.
type ByDocumentStatus struct {
	Status entity.DocumentStatus
}

func (s ByDocumentStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// ByUploader filters documents by the uploading principal.
type ByUploader struct {
	Uploader string
}

func (s ByUploader) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("uploader = ?", s.Uploader)
}

// UploadedBefore filters documents uploaded before the cut-off. The retry
// scheduler uses it to rescue UPLOADED documents whose queue signal was lost.
type UploadedBefore struct {
	Cutoff time.Time
}

func (s UploadedBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("uploaded_at < ?", s.Cutoff)
}

// ByIndexingStatus filters ledgers by indexing status.
type ByIndexingStatus struct {
	Status entity.IndexingStatus
}

func (s ByIndexingStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("indexing_status = ?", s.Status)
}

// ByDocumentID filters ledgers by their owning document.
type ByDocumentID struct {
	DocumentID uuid.UUID
}

func (s ByDocumentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentID)
}

// HasRetryableSegment keeps FAILED ledgers that still own at least one
// segment below the cross-run retry ceiling. Ledgers with no segment rows at
// all also qualify: those failed before segmentation (retrieval or
// extraction) and a later run may get further.
type HasRetryableSegment struct {
	Ceiling int
}

func (s HasRetryableSegment) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(
		"(id IN (SELECT indexing_log_id FROM segment_logs WHERE retry_count < ?)"+
			" OR id NOT IN (SELECT indexing_log_id FROM segment_logs))",
		s.Ceiling,
	)
}
