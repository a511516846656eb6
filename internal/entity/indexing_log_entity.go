package entity

import (
	"time"

	"github.com/google/uuid"
)

// IndexingStatus is the ledger lifecycle status, shared by domain and
// persistence layers.
type IndexingStatus string

const (
	IndexingStatusPending          IndexingStatus = "PENDING"
	IndexingStatusInProgress       IndexingStatus = "IN_PROGRESS"
	IndexingStatusFullyIndexed     IndexingStatus = "FULLY_INDEXED"
	IndexingStatusPartiallyIndexed IndexingStatus = "PARTIALLY_INDEXED"
	IndexingStatusFailed           IndexingStatus = "FAILED"
)

// SegmentStatus is the per-segment indexing status.
type SegmentStatus string

const (
	SegmentStatusPending SegmentStatus = "PENDING"
	SegmentStatusIndexed SegmentStatus = "INDEXED"
	SegmentStatusFailed  SegmentStatus = "FAILED"
)

// SegmentLog is a value record owned by its IndexingLog. Segment numbers are
// 1-based and dense. There is no back-pointer to the parent; all mutation
// goes through the aggregate.
type SegmentLog struct {
	SegmentNumber int
	Status        SegmentStatus
	IndexedAt     *time.Time
	ErrorMessage  *string
	RetryCount    int
	CreatedAt     time.Time
}

// IndexingLog is the per-document indexing ledger. One exists per document,
// upserted by document id. It reflects only the latest attempt: segment logs
// are rebuilt wholesale at the start of every run, carrying only each
// segment's cross-run retry count forward.
type IndexingLog struct {
	Id              uint
	DocumentId      uuid.UUID
	TotalSegments   int
	SegmentsIndexed int
	SegmentsFailed  int
	Status          IndexingStatus
	ErrorDetail     *string
	Segments        []SegmentLog
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func NewIndexingLog(documentId uuid.UUID, now time.Time) *IndexingLog {
	return &IndexingLog{
		DocumentId: documentId,
		Status:     IndexingStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// BeginAttempt resets the ledger for a fresh run: totals are set, counters
// zeroed, and segment logs 1..total rebuilt as PENDING. Retry counts from the
// previous attempt survive, keyed by segment number, so the retry scheduler
// can enforce its ceiling across runs.
func (l *IndexingLog) BeginAttempt(total int, now time.Time) {
	priorRetries := make(map[int]int, len(l.Segments))
	for _, s := range l.Segments {
		priorRetries[s.SegmentNumber] = s.RetryCount
	}

	l.TotalSegments = total
	l.SegmentsIndexed = 0
	l.SegmentsFailed = 0
	l.Status = IndexingStatusInProgress
	l.ErrorDetail = nil
	l.UpdatedAt = now

	l.Segments = make([]SegmentLog, total)
	for i := 0; i < total; i++ {
		l.Segments[i] = SegmentLog{
			SegmentNumber: i + 1,
			Status:        SegmentStatusPending,
			RetryCount:    priorRetries[i+1],
			CreatedAt:     now,
		}
	}
}

// MarkSegmentIndexed records a successful index call for the given 1-based
// segment number.
func (l *IndexingLog) MarkSegmentIndexed(number int, at time.Time) {
	if s := l.segment(number); s != nil {
		s.Status = SegmentStatusIndexed
		s.IndexedAt = &at
		s.ErrorMessage = nil
	}
}

// MarkSegmentFailed records a failed index call and bumps the segment's
// cross-run retry counter.
func (l *IndexingLog) MarkSegmentFailed(number int, reason string) {
	if s := l.segment(number); s != nil {
		s.Status = SegmentStatusFailed
		s.ErrorMessage = &reason
		s.RetryCount++
	}
}

func (l *IndexingLog) segment(number int) *SegmentLog {
	if number < 1 || number > len(l.Segments) {
		return nil
	}
	return &l.Segments[number-1]
}

// Finalize aggregates segment outcomes and derives the ledger status. The
// status is a pure function of (total, indexed, failed) once every segment
// has been attempted.
func (l *IndexingLog) Finalize(now time.Time) {
	indexed, failed := 0, 0
	for _, s := range l.Segments {
		switch s.Status {
		case SegmentStatusIndexed:
			indexed++
		case SegmentStatusFailed:
			failed++
		}
	}
	l.SegmentsIndexed = indexed
	l.SegmentsFailed = failed
	l.Status = DeriveStatus(l.TotalSegments, indexed, failed)
	l.UpdatedAt = now
}

// MarkFailed force-fails the ledger, used for pre-segmentation errors and the
// orchestrator's top-level safety net. The run never leaves IN_PROGRESS
// behind.
func (l *IndexingLog) MarkFailed(reason string, now time.Time) {
	l.Status = IndexingStatusFailed
	l.ErrorDetail = &reason
	l.UpdatedAt = now
}

// DeriveStatus maps attempt outcome counts to a ledger status.
func DeriveStatus(total, indexed, failed int) IndexingStatus {
	switch {
	case total > 0 && failed == 0 && indexed == total:
		return IndexingStatusFullyIndexed
	case indexed > 0 && failed > 0 && indexed+failed == total:
		return IndexingStatusPartiallyIndexed
	case indexed == 0 && failed == total:
		return IndexingStatusFailed
	default:
		return IndexingStatusInProgress
	}
}

// SuccessRate is the share of FULLY_INDEXED ledgers out of counted ones,
// in percent.
func SuccessRate(countsByStatus map[IndexingStatus]int64) float64 {
	var total, fully int64
	for status, n := range countsByStatus {
		total += n
		if status == IndexingStatusFullyIndexed {
			fully = n
		}
	}
	if total == 0 {
		return 0
	}
	return float64(fully) / float64(total) * 100
}
