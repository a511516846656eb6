package searchindex

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SegmentDocument is the per-segment unit shipped to the search engine.
type SegmentDocument struct {
	DocumentId       uuid.UUID
	FileName         string
	OriginalFileName string
	ExtractedContent string
	SegmentNumber    int
	TotalSegments    int
	Uploader         string
	UploadedAt       time.Time
	DownloadUrl      string
}

// SegmentId derives the deterministic index id for a document segment.
// Indexing by this id must upsert so re-runs never leave stale duplicates.
func SegmentId(documentId uuid.UUID, segmentNumber int) string {
	return fmt.Sprintf("%s_segment_%d", documentId, segmentNumber)
}

// Hit is one search result.
type Hit struct {
	Id               string  `json:"id"`
	DocumentId       string  `json:"document_id"`
	OriginalFileName string  `json:"original_file_name"`
	ExtractedContent string  `json:"extracted_content"`
	SegmentNumber    int     `json:"segment_number"`
	TotalSegments    int     `json:"total_segments"`
	DownloadUrl      string  `json:"download_url"`
	Rank             float64 `json:"rank"`
}

// Index is the indexing contract against the search engine. IndexSegment is
// idempotent by SegmentId.
type Index interface {
	IndexSegment(ctx context.Context, doc SegmentDocument) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	ExistsByDocumentId(ctx context.Context, documentId uuid.UUID) (bool, error)
	CountByDocumentId(ctx context.Context, documentId uuid.UUID) (int64, error)
	Search(ctx context.Context, query string, limit int) ([]Hit, error)
}
