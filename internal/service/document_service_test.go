package service

import (
	"context"
	"encoding/hex"
	"testing"
	"time"

	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/entity"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/pkg/apperrors"
	"github.com/JoshuaPangaribuan/DocIx-sub000/pkg/filecrypt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type documentFixture struct {
	uow     *fakeUnitOfWork
	storage *fakeStorage
	index   *fakeIndex
	codec   *filecrypt.Codec
	service IDocumentService
}

func newDocumentFixture(t *testing.T) *documentFixture {
	t.Helper()
	codec, err := filecrypt.NewCodec(hex.EncodeToString(make([]byte, 32)))
	require.NoError(t, err)

	f := &documentFixture{
		uow:     newFakeUnitOfWork(),
		storage: newFakeStorage(),
		index:   newFakeIndex(),
		codec:   codec,
	}
	f.service = NewDocumentService(&fakeFactory{uow: f.uow}, f.storage, f.index, codec, nopLogger{})
	return f
}

func TestStatusIncludesLedger(t *testing.T) {
	f := newDocumentFixture(t)
	now := time.Now()

	doc := &entity.Document{
		Id:               uuid.New(),
		OriginalFilename: "report.pdf",
		Status:           entity.DocumentStatusProcessed,
		UploadedAt:       now,
	}
	require.NoError(t, f.uow.docs.Create(context.Background(), doc))

	ledger := entity.NewIndexingLog(doc.Id, now)
	ledger.BeginAttempt(2, now)
	ledger.MarkSegmentIndexed(1, now)
	ledger.MarkSegmentFailed(2, "boom")
	ledger.Finalize(now)
	require.NoError(t, f.uow.ledgers.Upsert(context.Background(), ledger))

	res, err := f.service.Status(context.Background(), doc.Id)
	require.NoError(t, err)

	assert.Equal(t, "report.pdf", res.OriginalFilename)
	require.NotNil(t, res.Indexing)
	assert.Equal(t, string(entity.IndexingStatusPartiallyIndexed), res.Indexing.Status)
	require.Len(t, res.Indexing.Segments, 2)
	assert.Equal(t, string(entity.SegmentStatusFailed), res.Indexing.Segments[1].Status)
	assert.Equal(t, 1, res.Indexing.Segments[1].RetryCount)
}

func TestStatusUnknownDocument(t *testing.T) {
	f := newDocumentFixture(t)

	_, err := f.service.Status(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestDownloadRevealsOriginalName(t *testing.T) {
	f := newDocumentFixture(t)

	token, err := f.codec.Obfuscate("annual report.pdf")
	require.NoError(t, err)

	doc := &entity.Document{
		Id:               uuid.New(),
		OriginalFilename: "annual report.pdf",
		StoredFilename:   token + ".pdf",
		StoragePath:      token + ".pdf",
		ContentType:      "application/pdf",
		Status:           entity.DocumentStatusProcessed,
		UploadedAt:       time.Now(),
	}
	require.NoError(t, f.uow.docs.Create(context.Background(), doc))
	f.storage.blobs[doc.StoragePath] = []byte("%PDF-1.7")

	download, err := f.service.Download(context.Background(), doc.Id)
	require.NoError(t, err)

	assert.Equal(t, "annual report.pdf", download.Filename)
	assert.Equal(t, "application/pdf", download.ContentType)
	assert.Equal(t, []byte("%PDF-1.7"), download.Content)
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	f := newDocumentFixture(t)

	_, err := f.service.Search(context.Background(), "   ", 10)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}
