package contract

import (
	"context"

	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/entity"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/repository/specification"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	Update(ctx context.Context, doc *entity.Document) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
