package dto

import (
	"time"

	"github.com/google/uuid"
)

// UploadDocumentCommand carries one validated upload into the coordinator.
type UploadDocumentCommand struct {
	Filename    string `validate:"required"`
	ContentType string `validate:"required"`
	Size        int64  `validate:"gt=0"`
	Uploader    string `validate:"required"`
	Content     []byte `validate:"required"`
}

type UploadDocumentResponse struct {
	Id uuid.UUID `json:"id"`
}

type SegmentStatusResponse struct {
	SegmentNumber int        `json:"segment_number"`
	Status        string     `json:"status"`
	IndexedAt     *time.Time `json:"indexed_at,omitempty"`
	ErrorMessage  *string    `json:"error_message,omitempty"`
	RetryCount    int        `json:"retry_count"`
}

type IndexingStatusResponse struct {
	Status          string                  `json:"status"`
	TotalSegments   int                     `json:"total_segments"`
	SegmentsIndexed int                     `json:"segments_indexed"`
	SegmentsFailed  int                     `json:"segments_failed"`
	ErrorDetail     *string                 `json:"error_detail,omitempty"`
	UpdatedAt       time.Time               `json:"updated_at"`
	Segments        []SegmentStatusResponse `json:"segments,omitempty"`
}

type DocumentStatusResponse struct {
	Id               uuid.UUID               `json:"id"`
	OriginalFilename string                  `json:"original_filename"`
	Size             int64                   `json:"size"`
	ContentType      string                  `json:"content_type"`
	Uploader         string                  `json:"uploader"`
	Status           string                  `json:"status"`
	ErrorMessage     *string                 `json:"error_message,omitempty"`
	DownloadUrl      *string                 `json:"download_url,omitempty"`
	UploadedAt       time.Time               `json:"uploaded_at"`
	ProcessedAt      *time.Time              `json:"processed_at,omitempty"`
	Indexing         *IndexingStatusResponse `json:"indexing,omitempty"`
}

// PublishIndexDocumentMessage is the queue payload emitted after an upload
// commits.
type PublishIndexDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}
