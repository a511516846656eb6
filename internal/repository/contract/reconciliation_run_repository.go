package contract

import (
	"context"

	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/model"
)

type ReconciliationRunRepository interface {
	Create(ctx context.Context, run *model.ReconciliationRun) error
	FindLatest(ctx context.Context, limit int) ([]*model.ReconciliationRun, error)
}
