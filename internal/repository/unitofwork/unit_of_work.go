package unitofwork

import (
	"context"

	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DocumentRepository() contract.DocumentRepository
	IndexingLogRepository() contract.IndexingLogRepository
	ReconciliationRunRepository() contract.ReconciliationRunRepository
}
