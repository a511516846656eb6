package model

import (
	"time"

	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/entity"

	"github.com/google/uuid"
)

// Document persists with the canonical entity status enum; there is no
// parallel persistence-layer status type to translate against.
type Document struct {
	Id               uuid.UUID             `gorm:"type:uuid;primaryKey"`
	OriginalFilename string                `gorm:"type:varchar(512);not null"`
	StoredFilename   string                `gorm:"type:varchar(512);not null"`
	Size             int64                 `gorm:"not null"`
	ContentType      string                `gorm:"type:varchar(128);not null"`
	StoragePath      string                `gorm:"type:varchar(1024);not null"`
	Uploader         string                `gorm:"type:varchar(255);not null;index"`
	Status           entity.DocumentStatus `gorm:"type:varchar(32);not null;index"`
	ErrorMessage     *string               `gorm:"type:text"`
	ExtractedContent *string               `gorm:"type:text"`
	DownloadUrl      *string               `gorm:"type:varchar(1024)"`
	UploadedAt       time.Time             `gorm:"not null;index"`
	ProcessedAt      *time.Time
}

func (Document) TableName() string {
	return "documents"
}
