package model

import (
	"time"

	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/entity"

	"github.com/google/uuid"
)

// IndexingLog is the ledger head row. One per document, enforced by the
// unique index rather than application-level locking; writers must upsert.
type IndexingLog struct {
	Id              uint                  `gorm:"primaryKey;autoIncrement"`
	DocumentId      uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex"`
	TotalSegments   int                   `gorm:"not null;default:0"`
	SegmentsIndexed int                   `gorm:"not null;default:0"`
	SegmentsFailed  int                   `gorm:"not null;default:0"`
	IndexingStatus  entity.IndexingStatus `gorm:"type:varchar(32);not null;index"`
	ErrorDetail     *string               `gorm:"type:text"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (IndexingLog) TableName() string {
	return "indexing_logs"
}

// SegmentLog rows are owned by their ledger and replaced wholesale at the
// start of every attempt.
type SegmentLog struct {
	Id            uint                 `gorm:"primaryKey;autoIncrement"`
	IndexingLogId uint                 `gorm:"not null;uniqueIndex:idx_segment_logs_log_number"`
	SegmentNumber int                  `gorm:"not null;uniqueIndex:idx_segment_logs_log_number"`
	SegmentStatus entity.SegmentStatus `gorm:"type:varchar(16);not null"`
	IndexedAt     *time.Time
	ErrorMessage  *string `gorm:"type:text"`
	RetryCount    int     `gorm:"not null;default:0"`
	CreatedAt     time.Time
}

func (SegmentLog) TableName() string {
	return "segment_logs"
}
