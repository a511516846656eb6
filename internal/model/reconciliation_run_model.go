package model

import (
	"time"

	"gorm.io/datatypes"
)

// ReconciliationRun records one ledger-vs-index comparison for out-of-band
// monitoring. Report holds the missing document ids as JSON.
type ReconciliationRun struct {
	Id                    uint `gorm:"primaryKey;autoIncrement"`
	ProcessedCount        int  `gorm:"not null"`
	IndexedCount          int  `gorm:"not null"`
	MissingCount          int  `gorm:"not null"`
	ConsistencyPercentage float64
	Report                datatypes.JSON
	RanAt                 time.Time `gorm:"not null;index"`
}

func (ReconciliationRun) TableName() string {
	return "reconciliation_runs"
}
