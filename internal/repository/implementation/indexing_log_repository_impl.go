package implementation

import (
	"context"
	"errors"

	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/entity"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/mapper"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/model"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/repository/contract"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IndexingLogRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.IndexingLogMapper
}

func NewIndexingLogRepository(db *gorm.DB) contract.IndexingLogRepository {
	return &IndexingLogRepositoryImpl{
		db:     db,
		mapper: mapper.NewIndexingLogMapper(),
	}
}

func (r *IndexingLogRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *IndexingLogRepositoryImpl) Upsert(ctx context.Context, log *entity.IndexingLog) error {
	head := r.mapper.ToHeadModel(log)

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "document_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_segments", "segments_indexed", "segments_failed",
			"indexing_status", "error_detail", "updated_at",
		}),
	}).Create(head).Error
	if err != nil {
		return err
	}

	// The conflict path does not return the existing id; fetch it.
	if head.Id == 0 {
		var existing model.IndexingLog
		if err := r.db.WithContext(ctx).
			Where("document_id = ?", head.DocumentId).
			First(&existing).Error; err != nil {
			return err
		}
		head.Id = existing.Id
	}

	log.Id = head.Id
	return nil
}

func (r *IndexingLogRepositoryImpl) Update(ctx context.Context, log *entity.IndexingLog) error {
	head := r.mapper.ToHeadModel(log)
	if err := r.db.WithContext(ctx).Save(head).Error; err != nil {
		return err
	}

	rows := r.mapper.ToSegmentModels(log)
	if len(rows) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "indexing_log_id"}, {Name: "segment_number"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"segment_status", "indexed_at", "error_message", "retry_count",
		}),
	}).Create(rows).Error
}

// ReplaceSegments swaps the ledger's segment rows in one transaction so a
// reader never observes a half-rebuilt attempt.
func (r *IndexingLogRepositoryImpl) ReplaceSegments(ctx context.Context, log *entity.IndexingLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("indexing_log_id = ?", log.Id).Delete(&model.SegmentLog{}).Error; err != nil {
			return err
		}

		rows := r.mapper.ToSegmentModels(log)
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(rows).Error
	})
}

func (r *IndexingLogRepositoryImpl) FindByDocumentId(ctx context.Context, documentId uuid.UUID) (*entity.IndexingLog, error) {
	var head model.IndexingLog
	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentId).
		First(&head).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	segments, err := r.segmentsFor(ctx, head.Id)
	if err != nil {
		return nil, err
	}

	return r.mapper.ToEntity(&head, segments), nil
}

func (r *IndexingLogRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.IndexingLog, error) {
	var heads []*model.IndexingLog
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&heads).Error; err != nil {
		return nil, err
	}

	logs := make([]*entity.IndexingLog, len(heads))
	for i, head := range heads {
		segments, err := r.segmentsFor(ctx, head.Id)
		if err != nil {
			return nil, err
		}
		logs[i] = r.mapper.ToEntity(head, segments)
	}
	return logs, nil
}

func (r *IndexingLogRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.IndexingLog{}).Count(&count).Error
	return count, err
}

func (r *IndexingLogRepositoryImpl) CountByStatus(ctx context.Context) (map[entity.IndexingStatus]int64, error) {
	type statusCount struct {
		IndexingStatus entity.IndexingStatus
		Count          int64
	}

	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&model.IndexingLog{}).
		Select("indexing_status, COUNT(*) AS count").
		Group("indexing_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[entity.IndexingStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.IndexingStatus] = row.Count
	}
	return counts, nil
}

func (r *IndexingLogRepositoryImpl) segmentsFor(ctx context.Context, logId uint) ([]*model.SegmentLog, error) {
	var segments []*model.SegmentLog
	err := r.db.WithContext(ctx).
		Where("indexing_log_id = ?", logId).
		Order("segment_number ASC").
		Find(&segments).Error
	return segments, err
}
