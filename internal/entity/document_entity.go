package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentStatus is the document lifecycle status. It is the single canonical
// enum shared by the domain and persistence layers.
type DocumentStatus string

const (
	DocumentStatusUploaded   DocumentStatus = "UPLOADED"
	DocumentStatusProcessing DocumentStatus = "PROCESSING"
	DocumentStatusProcessed  DocumentStatus = "PROCESSED"
	DocumentStatusFailed     DocumentStatus = "FAILED"
)

type Document struct {
	Id               uuid.UUID
	OriginalFilename string
	StoredFilename   string
	Size             int64
	ContentType      string
	StoragePath      string
	Uploader         string
	Status           DocumentStatus
	ErrorMessage     *string
	ExtractedContent *string
	DownloadUrl      *string
	UploadedAt       time.Time
	ProcessedAt      *time.Time
}

// MarkProcessing moves the document into PROCESSING for a new indexing attempt.
// Valid from UPLOADED and FAILED (retry) and from PROCESSED (reindex).
func (d *Document) MarkProcessing() {
	d.Status = DocumentStatusProcessing
	d.ErrorMessage = nil
}

// MarkProcessed records a fully indexed attempt. Extracted content is only
// ever set here.
func (d *Document) MarkProcessed(extractedContent, downloadUrl string, at time.Time) {
	d.Status = DocumentStatusProcessed
	d.ExtractedContent = &extractedContent
	d.DownloadUrl = &downloadUrl
	d.ErrorMessage = nil
	d.ProcessedAt = &at
}

// MarkFailed records a terminal failure for this attempt.
func (d *Document) MarkFailed(reason string, at time.Time) {
	d.Status = DocumentStatusFailed
	d.ErrorMessage = &reason
	d.ProcessedAt = &at
}
