package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/dto"
	"github.com/JoshuaPangaribuan/DocIx-sub000/pkg/queue"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingIndexer struct {
	mu      sync.Mutex
	calls   []uuid.UUID
	ctxErrs []error // ctx.Err() observed as each run finishes
	err     error
	block   chan struct{} // closed to unblock, nil for no blocking
}

func (r *recordingIndexer) ProcessIndexing(ctx context.Context, documentId uuid.UUID) error {
	r.mu.Lock()
	r.calls = append(r.calls, documentId)
	block := r.block
	r.mu.Unlock()

	if block != nil {
		<-block
	}

	r.mu.Lock()
	r.ctxErrs = append(r.ctxErrs, ctx.Err())
	r.mu.Unlock()
	return r.err
}

func mustPayload(t *testing.T, id uuid.UUID) []byte {
	t.Helper()
	payload, err := json.Marshal(dto.PublishIndexDocumentMessage{DocumentId: id})
	require.NoError(t, err)
	return payload
}

// deliverAndWait pushes one delivery through the channel queue and waits for
// its acknowledgment to settle.
func deliverAndWait(t *testing.T, d *fakeDelivery) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if d.acked || d.naked {
			return
		}
		select {
		case <-deadline:
			t.Fatal("delivery never acknowledged")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestConsumerAcksProcessedDelivery(t *testing.T) {
	indexer := &recordingIndexer{}
	q := queue.NewChannelQueue("test-topic")
	svc := NewConsumerService(q, indexer, nopLogger{}, 2)
	require.NoError(t, svc.Consume(context.Background()))
	defer svc.Close()

	id := uuid.New()
	require.NoError(t, q.Publish(context.Background(), mustPayload(t, id)))

	assert.Eventually(t, func() bool {
		indexer.mu.Lock()
		defer indexer.mu.Unlock()
		return len(indexer.calls) == 1 && indexer.calls[0] == id
	}, 2*time.Second, 5*time.Millisecond)

	assert.True(t, svc.Drain(time.Second))
}

func TestConsumerAcksMalformedPayload(t *testing.T) {
	indexer := &recordingIndexer{}
	svc := NewConsumerService(queue.NewChannelQueue("t"), indexer, nopLogger{}, 2).(*consumerService)

	d := &fakeDelivery{payload: []byte("not json")}
	svc.handle(context.Background(), d)
	deliverAndWait(t, d)

	assert.True(t, d.acked, "malformed payloads are dropped, not redelivered")
	assert.Empty(t, indexer.calls)
}

func TestConsumerNaksBusyDocument(t *testing.T) {
	indexer := &recordingIndexer{err: ErrDocumentBusy}
	svc := NewConsumerService(queue.NewChannelQueue("t"), indexer, nopLogger{}, 2).(*consumerService)

	d := &fakeDelivery{payload: mustPayload(t, uuid.New())}
	svc.handle(context.Background(), d)
	deliverAndWait(t, d)

	assert.True(t, d.naked, "busy documents must be redelivered later")
	assert.False(t, d.acked)
}

func TestConsumerNaksEscapedError(t *testing.T) {
	indexer := &recordingIndexer{err: errors.New("lock backend down")}
	svc := NewConsumerService(queue.NewChannelQueue("t"), indexer, nopLogger{}, 2).(*consumerService)

	d := &fakeDelivery{payload: mustPayload(t, uuid.New())}
	svc.handle(context.Background(), d)
	deliverAndWait(t, d)

	assert.True(t, d.naked)
}

func TestConsumerDrainWaitsForInFlight(t *testing.T) {
	block := make(chan struct{})
	indexer := &recordingIndexer{block: block}
	svc := NewConsumerService(queue.NewChannelQueue("t"), indexer, nopLogger{}, 2).(*consumerService)

	d := &fakeDelivery{payload: mustPayload(t, uuid.New())}
	svc.handle(context.Background(), d)

	// Still blocked: drain must time out.
	assert.False(t, svc.Drain(50*time.Millisecond))

	close(block)
	assert.True(t, svc.Drain(time.Second))
	deliverAndWait(t, d)
	assert.True(t, d.acked)
}

func TestConsumerShutdownDoesNotCancelInFlight(t *testing.T) {
	block := make(chan struct{})
	indexer := &recordingIndexer{block: block}
	q := queue.NewChannelQueue("t")
	svc := NewConsumerService(q, indexer, nopLogger{}, 2).(*consumerService)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d := &fakeDelivery{payload: mustPayload(t, uuid.New())}
	svc.handle(ctx, d)

	assert.Eventually(t, func() bool {
		indexer.mu.Lock()
		defer indexer.mu.Unlock()
		return len(indexer.calls) == 1
	}, time.Second, 5*time.Millisecond)

	// Shutdown: stop intake and end the consume context while the run is
	// still blocked. The run must finish under a live context and ack.
	require.NoError(t, svc.Stop())
	cancel()
	close(block)

	assert.True(t, svc.Drain(time.Second))
	deliverAndWait(t, d)
	assert.True(t, d.acked)

	indexer.mu.Lock()
	require.Len(t, indexer.ctxErrs, 1)
	assert.NoError(t, indexer.ctxErrs[0], "in-flight run must not observe cancellation")
	indexer.mu.Unlock()
}

func TestConsumerBoundsConcurrency(t *testing.T) {
	block := make(chan struct{})
	indexer := &recordingIndexer{block: block}
	svc := NewConsumerService(queue.NewChannelQueue("t"), indexer, nopLogger{}, 1).(*consumerService)

	first := &fakeDelivery{payload: mustPayload(t, uuid.New())}
	svc.handle(context.Background(), first)

	assert.Eventually(t, func() bool {
		indexer.mu.Lock()
		defer indexer.mu.Unlock()
		return len(indexer.calls) == 1
	}, time.Second, 5*time.Millisecond)

	// The single worker slot is occupied; the second delivery must not start
	// before the first finishes.
	secondCtx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	second := &fakeDelivery{payload: mustPayload(t, uuid.New())}
	svc.handle(secondCtx, second)
	deliverAndWait(t, second)

	assert.True(t, second.naked, "acquisition timeout naks the delivery")
	indexer.mu.Lock()
	assert.Len(t, indexer.calls, 1)
	indexer.mu.Unlock()

	close(block)
	assert.True(t, svc.Drain(time.Second))
}
