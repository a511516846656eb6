package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/dto"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type schedulerFixture struct {
	uow       *fakeUnitOfWork
	indexer   *recordingIndexer
	publisher *fakePublisher
	service   IRetrySchedulerService
}

func newSchedulerFixture() *schedulerFixture {
	f := &schedulerFixture{
		uow:       newFakeUnitOfWork(),
		indexer:   &recordingIndexer{},
		publisher: &fakePublisher{},
	}
	f.service = NewRetrySchedulerService(
		&fakeFactory{uow: f.uow}, f.indexer, f.publisher, nopLogger{},
		time.Minute, 3, 10*time.Minute,
	)
	return f
}

func seedFailedLedger(t *testing.T, f *schedulerFixture, retryCount int) uuid.UUID {
	t.Helper()
	now := time.Now()
	id := uuid.New()
	require.NoError(t, f.uow.docs.Create(context.Background(), &entity.Document{
		Id:         id,
		Status:     entity.DocumentStatusFailed,
		UploadedAt: now,
	}))
	ledger := entity.NewIndexingLog(id, now)
	ledger.BeginAttempt(1, now)
	for i := 0; i < retryCount; i++ {
		ledger.MarkSegmentFailed(1, "index down")
	}
	ledger.Finalize(now)
	require.NoError(t, f.uow.ledgers.Upsert(context.Background(), ledger))
	return id
}

func TestSweepRetriesFailedWithBudget(t *testing.T) {
	f := newSchedulerFixture()
	eligible := seedFailedLedger(t, f, 1)
	seedFailedLedger(t, f, 3) // at the ceiling, must not be retried

	retried, rescued := f.service.Sweep(context.Background())

	assert.Equal(t, 1, retried)
	assert.Zero(t, rescued)
	assert.Equal(t, []uuid.UUID{eligible}, f.indexer.calls)
}

func TestSweepRetriesFailureBeforeSegmentation(t *testing.T) {
	f := newSchedulerFixture()

	// Retrieval or extraction died before any segment existed; the ledger is
	// FAILED with zero segment rows and must still be swept.
	now := time.Now()
	id := uuid.New()
	require.NoError(t, f.uow.docs.Create(context.Background(), &entity.Document{
		Id:         id,
		Status:     entity.DocumentStatusFailed,
		UploadedAt: now,
	}))
	ledger := entity.NewIndexingLog(id, now)
	ledger.MarkFailed("storage unreachable", now)
	require.NoError(t, f.uow.ledgers.Upsert(context.Background(), ledger))

	retried, _ := f.service.Sweep(context.Background())

	assert.Equal(t, 1, retried)
	assert.Equal(t, []uuid.UUID{id}, f.indexer.calls)
}

func TestSweepSkipsLedgersWithoutDocument(t *testing.T) {
	f := newSchedulerFixture()

	// FAILED "document not found" ledger: no document row, terminal.
	now := time.Now()
	ledger := entity.NewIndexingLog(uuid.New(), now)
	ledger.MarkFailed("document not found", now)
	require.NoError(t, f.uow.ledgers.Upsert(context.Background(), ledger))

	retried, _ := f.service.Sweep(context.Background())

	assert.Zero(t, retried)
	assert.Empty(t, f.indexer.calls)
}

func TestSweepRescuesStaleUploads(t *testing.T) {
	f := newSchedulerFixture()

	stale := &entity.Document{
		Id:         uuid.New(),
		Status:     entity.DocumentStatusUploaded,
		UploadedAt: time.Now().Add(-30 * time.Minute),
	}
	fresh := &entity.Document{
		Id:         uuid.New(),
		Status:     entity.DocumentStatusUploaded,
		UploadedAt: time.Now(),
	}
	require.NoError(t, f.uow.docs.Create(context.Background(), stale))
	require.NoError(t, f.uow.docs.Create(context.Background(), fresh))

	retried, rescued := f.service.Sweep(context.Background())

	assert.Zero(t, retried)
	assert.Equal(t, 1, rescued)

	require.Len(t, f.publisher.payloads, 1)
	var msg dto.PublishIndexDocumentMessage
	require.NoError(t, json.Unmarshal(f.publisher.payloads[0], &msg))
	assert.Equal(t, stale.Id, msg.DocumentId, "only the stale document is re-signalled")
}

func TestSweepSkipsBusyDocuments(t *testing.T) {
	f := newSchedulerFixture()
	f.indexer.err = ErrDocumentBusy
	seedFailedLedger(t, f, 0)

	retried, _ := f.service.Sweep(context.Background())
	assert.Zero(t, retried, "busy documents do not count as retried")
}
