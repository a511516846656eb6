package searchindex

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

// RetryingIndex shields single index calls against flaky I/O with bounded
// exponential backoff. This is independent of the ledger's per-segment retry
// counter, which tracks whole-run retries.
type RetryingIndex struct {
	inner       Index
	maxAttempts int
}

func NewRetryingIndex(inner Index, maxAttempts int) *RetryingIndex {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RetryingIndex{inner: inner, maxAttempts: maxAttempts}
}

func (r *RetryingIndex) retry(ctx context.Context, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	policy.MaxInterval = 2 * time.Second

	return backoff.Retry(op, backoff.WithContext(
		backoff.WithMaxRetries(policy, uint64(r.maxAttempts-1)), ctx))
}

func (r *RetryingIndex) IndexSegment(ctx context.Context, doc SegmentDocument) error {
	return r.retry(ctx, func() error {
		return r.inner.IndexSegment(ctx, doc)
	})
}

func (r *RetryingIndex) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.retry(ctx, func() error {
		return r.inner.DeleteByDocumentId(ctx, documentId)
	})
}

func (r *RetryingIndex) ExistsByDocumentId(ctx context.Context, documentId uuid.UUID) (bool, error) {
	return r.inner.ExistsByDocumentId(ctx, documentId)
}

func (r *RetryingIndex) CountByDocumentId(ctx context.Context, documentId uuid.UUID) (int64, error) {
	return r.inner.CountByDocumentId(ctx, documentId)
}

func (r *RetryingIndex) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	return r.inner.Search(ctx, query, limit)
}
