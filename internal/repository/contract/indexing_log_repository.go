package contract

import (
	"context"

	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/entity"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/repository/specification"

	"github.com/google/uuid"
)

// IndexingLogRepository persists the ledger aggregate. The one-ledger-per-
// document invariant is the database's unique constraint; Upsert must be used
// for the head row, never insert-or-fail.
type IndexingLogRepository interface {
	// Upsert writes the head row by document id and fills in the ledger id.
	Upsert(ctx context.Context, log *entity.IndexingLog) error
	// Update writes the head row and saves the aggregate's segment rows by
	// (ledger id, segment number).
	Update(ctx context.Context, log *entity.IndexingLog) error
	// ReplaceSegments atomically swaps all segment rows of the ledger for the
	// aggregate's current ones, in a single transaction.
	ReplaceSegments(ctx context.Context, log *entity.IndexingLog) error

	FindByDocumentId(ctx context.Context, documentId uuid.UUID) (*entity.IndexingLog, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.IndexingLog, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	CountByStatus(ctx context.Context) (map[entity.IndexingStatus]int64, error)
}
