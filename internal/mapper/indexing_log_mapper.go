package mapper

import (
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/entity"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/model"
)

type IndexingLogMapper struct{}

func NewIndexingLogMapper() *IndexingLogMapper {
	return &IndexingLogMapper{}
}

// ToEntity reassembles the aggregate from the head row and its segment rows.
// Segment rows are expected ordered by segment number.
func (m *IndexingLogMapper) ToEntity(head *model.IndexingLog, segments []*model.SegmentLog) *entity.IndexingLog {
	if head == nil {
		return nil
	}

	log := &entity.IndexingLog{
		Id:              head.Id,
		DocumentId:      head.DocumentId,
		TotalSegments:   head.TotalSegments,
		SegmentsIndexed: head.SegmentsIndexed,
		SegmentsFailed:  head.SegmentsFailed,
		Status:          head.IndexingStatus,
		ErrorDetail:     head.ErrorDetail,
		CreatedAt:       head.CreatedAt,
		UpdatedAt:       head.UpdatedAt,
	}

	log.Segments = make([]entity.SegmentLog, len(segments))
	for i, s := range segments {
		log.Segments[i] = entity.SegmentLog{
			SegmentNumber: s.SegmentNumber,
			Status:        s.SegmentStatus,
			IndexedAt:     s.IndexedAt,
			ErrorMessage:  s.ErrorMessage,
			RetryCount:    s.RetryCount,
			CreatedAt:     s.CreatedAt,
		}
	}

	return log
}

func (m *IndexingLogMapper) ToHeadModel(l *entity.IndexingLog) *model.IndexingLog {
	if l == nil {
		return nil
	}

	return &model.IndexingLog{
		Id:              l.Id,
		DocumentId:      l.DocumentId,
		TotalSegments:   l.TotalSegments,
		SegmentsIndexed: l.SegmentsIndexed,
		SegmentsFailed:  l.SegmentsFailed,
		IndexingStatus:  l.Status,
		ErrorDetail:     l.ErrorDetail,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

func (m *IndexingLogMapper) ToSegmentModels(l *entity.IndexingLog) []*model.SegmentLog {
	rows := make([]*model.SegmentLog, len(l.Segments))
	for i, s := range l.Segments {
		rows[i] = &model.SegmentLog{
			IndexingLogId: l.Id,
			SegmentNumber: s.SegmentNumber,
			SegmentStatus: s.Status,
			IndexedAt:     s.IndexedAt,
			ErrorMessage:  s.ErrorMessage,
			RetryCount:    s.RetryCount,
			CreatedAt:     s.CreatedAt,
		}
	}
	return rows
}
