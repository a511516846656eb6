package searchindex

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SegmentRecord is the indexed row backing one segment. The document id is
// a plain (keyword) column; the extracted content is matched through a
// Postgres tsvector expression index.
type SegmentRecord struct {
	Id               string    `gorm:"type:varchar(128);primaryKey"`
	DocumentId       uuid.UUID `gorm:"type:uuid;not null;index"`
	FileName         string    `gorm:"type:varchar(512);not null"`
	OriginalFileName string    `gorm:"type:varchar(512);not null"`
	ExtractedContent string    `gorm:"type:text;not null"`
	SegmentNumber    int       `gorm:"not null"`
	TotalSegments    int       `gorm:"not null"`
	Uploader         string    `gorm:"type:varchar(255)"`
	UploadedAt       time.Time
	DownloadUrl      string `gorm:"type:varchar(1024)"`
	IndexedAt        time.Time
}

func (SegmentRecord) TableName() string {
	return "search_segments"
}

// PostgresIndex implements Index on Postgres full-text search.
type PostgresIndex struct {
	db *gorm.DB
}

func NewPostgresIndex(db *gorm.DB) *PostgresIndex {
	return &PostgresIndex{db: db}
}

// EnsureSchema creates the table and the expression index used by Search.
func (i *PostgresIndex) EnsureSchema(ctx context.Context) error {
	if err := i.db.WithContext(ctx).AutoMigrate(&SegmentRecord{}); err != nil {
		return err
	}
	return i.db.WithContext(ctx).Exec(
		`CREATE INDEX IF NOT EXISTS idx_search_segments_content
		 ON search_segments USING GIN (to_tsvector('english', extracted_content))`,
	).Error
}

func (i *PostgresIndex) IndexSegment(ctx context.Context, doc SegmentDocument) error {
	record := SegmentRecord{
		Id:               SegmentId(doc.DocumentId, doc.SegmentNumber),
		DocumentId:       doc.DocumentId,
		FileName:         doc.FileName,
		OriginalFileName: doc.OriginalFileName,
		ExtractedContent: doc.ExtractedContent,
		SegmentNumber:    doc.SegmentNumber,
		TotalSegments:    doc.TotalSegments,
		Uploader:         doc.Uploader,
		UploadedAt:       doc.UploadedAt,
		DownloadUrl:      doc.DownloadUrl,
		IndexedAt:        time.Now(),
	}

	err := i.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("index segment %s: %w", record.Id, err)
	}
	return nil
}

func (i *PostgresIndex) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return i.db.WithContext(ctx).
		Where("document_id = ?", documentId).
		Delete(&SegmentRecord{}).Error
}

func (i *PostgresIndex) ExistsByDocumentId(ctx context.Context, documentId uuid.UUID) (bool, error) {
	count, err := i.CountByDocumentId(ctx, documentId)
	return count > 0, err
}

func (i *PostgresIndex) CountByDocumentId(ctx context.Context, documentId uuid.UUID) (int64, error) {
	var count int64
	err := i.db.WithContext(ctx).
		Model(&SegmentRecord{}).
		Where("document_id = ?", documentId).
		Count(&count).Error
	return count, err
}

func (i *PostgresIndex) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 10
	}

	var hits []Hit
	err := i.db.WithContext(ctx).
		Table("search_segments").
		Select(`id, document_id, original_file_name, extracted_content,
			segment_number, total_segments, download_url,
			ts_rank(to_tsvector('english', extracted_content), websearch_to_tsquery('english', ?)) AS rank`, query).
		Where("to_tsvector('english', extracted_content) @@ websearch_to_tsquery('english', ?)", query).
		Order("rank DESC").
		Limit(limit).
		Scan(&hits).Error
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return hits, nil
}
