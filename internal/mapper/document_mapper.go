package mapper

import (
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/entity"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/model"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	return &entity.Document{
		Id:               d.Id,
		OriginalFilename: d.OriginalFilename,
		StoredFilename:   d.StoredFilename,
		Size:             d.Size,
		ContentType:      d.ContentType,
		StoragePath:      d.StoragePath,
		Uploader:         d.Uploader,
		Status:           d.Status,
		ErrorMessage:     d.ErrorMessage,
		ExtractedContent: d.ExtractedContent,
		DownloadUrl:      d.DownloadUrl,
		UploadedAt:       d.UploadedAt,
		ProcessedAt:      d.ProcessedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	return &model.Document{
		Id:               d.Id,
		OriginalFilename: d.OriginalFilename,
		StoredFilename:   d.StoredFilename,
		Size:             d.Size,
		ContentType:      d.ContentType,
		StoragePath:      d.StoragePath,
		Uploader:         d.Uploader,
		Status:           d.Status,
		ErrorMessage:     d.ErrorMessage,
		ExtractedContent: d.ExtractedContent,
		DownloadUrl:      d.DownloadUrl,
		UploadedAt:       d.UploadedAt,
		ProcessedAt:      d.ProcessedAt,
	}
}

func (m *DocumentMapper) ToEntities(docs []*model.Document) []*entity.Document {
	entities := make([]*entity.Document, len(docs))
	for i, d := range docs {
		entities[i] = m.ToEntity(d)
	}
	return entities
}
