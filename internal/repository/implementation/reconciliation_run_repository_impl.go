package implementation

import (
	"context"

	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/model"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/repository/contract"

	"gorm.io/gorm"
)

type ReconciliationRunRepositoryImpl struct {
	db *gorm.DB
}

func NewReconciliationRunRepository(db *gorm.DB) contract.ReconciliationRunRepository {
	return &ReconciliationRunRepositoryImpl{db: db}
}

func (r *ReconciliationRunRepositoryImpl) Create(ctx context.Context, run *model.ReconciliationRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *ReconciliationRunRepositoryImpl) FindLatest(ctx context.Context, limit int) ([]*model.ReconciliationRun, error) {
	if limit <= 0 {
		limit = 10
	}
	var runs []*model.ReconciliationRun
	err := r.db.WithContext(ctx).
		Order("ran_at DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}
