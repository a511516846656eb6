package dto

import (
	"time"

	"github.com/google/uuid"
)

type IndexingSummaryResponse struct {
	Counts      map[string]int64 `json:"counts"`
	Total       int64            `json:"total"`
	SuccessRate float64          `json:"success_rate"`
}

type ConsistencyReportResponse struct {
	ProcessedCount        int         `json:"processed_count"`
	IndexedCount          int         `json:"indexed_count"`
	MissingCount          int         `json:"missing_count"`
	ConsistencyPercentage float64     `json:"consistency_percentage"`
	MissingDocumentIds    []uuid.UUID `json:"missing_document_ids"`
	CheckedAt             time.Time   `json:"checked_at"`
}

type RepairResponse struct {
	Triggered int `json:"triggered"`
}
