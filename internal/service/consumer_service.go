package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/dto"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/pkg/logger"
	"github.com/JoshuaPangaribuan/DocIx-sub000/pkg/queue"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

type IConsumerService interface {
	// Consume subscribes to the upload topic and dispatches deliveries to the
	// orchestrator until ctx ends.
	Consume(ctx context.Context) error
	// Stop halts intake of new deliveries; in-flight ones keep running.
	Stop() error
	// Drain waits for in-flight deliveries to finish, up to timeout. Returns
	// false if the timeout expired first.
	Drain(timeout time.Duration) bool
	Close() error
}

type consumerService struct {
	consumer queue.Consumer
	indexer  IIndexingService
	logger   logger.ILogger
	workers  *semaphore.Weighted
	inFlight sync.WaitGroup
}

func NewConsumerService(
	consumer queue.Consumer,
	indexer IIndexingService,
	sysLogger logger.ILogger,
	workerCount int,
) IConsumerService {
	if workerCount < 1 {
		workerCount = 1
	}
	return &consumerService{
		consumer: consumer,
		indexer:  indexer,
		logger:   sysLogger,
		workers:  semaphore.NewWeighted(int64(workerCount)),
	}
}

func (s *consumerService) Consume(ctx context.Context) error {
	return s.consumer.Consume(ctx, s.handle)
}

// handle bounds processing concurrency with the worker semaphore and hands
// each delivery to its own goroutine, so the subscription loop never blocks
// on a slow document.
func (s *consumerService) handle(ctx context.Context, d queue.Delivery) {
	if err := s.workers.Acquire(ctx, 1); err != nil {
		// Shutting down; let the broker redeliver.
		s.nak(d)
		return
	}

	s.inFlight.Add(1)
	go func() {
		defer s.inFlight.Done()
		defer s.workers.Release(1)
		// Run on a detached context: shutdown ends the subscription context,
		// but an accepted delivery must finish (and persist its outcome)
		// rather than abort mid-run. Drain owns the wait.
		s.process(context.WithoutCancel(ctx), d)
	}()
}

func (s *consumerService) process(ctx context.Context, d queue.Delivery) {
	var msg dto.PublishIndexDocumentMessage
	if err := json.Unmarshal(d.Payload(), &msg); err != nil || msg.DocumentId == uuid.Nil {
		// Malformed payloads never become processable; drop them.
		s.logger.Warn("consumer", "Discarding malformed delivery", map[string]interface{}{
			"payload": string(d.Payload()),
		})
		s.ack(d)
		return
	}

	err := s.indexer.ProcessIndexing(ctx, msg.DocumentId)
	switch {
	case err == nil:
		// Includes indexing failures the orchestrator already recorded; the
		// retry scheduler owns those, not the broker.
		s.ack(d)
	case errors.Is(err, ErrDocumentBusy):
		s.logger.Info("consumer", "Document busy, requesting redelivery", map[string]interface{}{
			"document_id": msg.DocumentId,
		})
		s.nak(d)
	default:
		s.logger.Error("consumer", "Delivery processing failed, requesting redelivery", map[string]interface{}{
			"document_id": msg.DocumentId, "error": err.Error(),
		})
		s.nak(d)
	}
}

func (s *consumerService) Stop() error {
	return s.consumer.Stop()
}

func (s *consumerService) Drain(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		s.inFlight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		s.logger.Warn("consumer", "Drain timed out with deliveries still in flight", map[string]interface{}{
			"timeout": timeout.String(),
		})
		return false
	}
}

func (s *consumerService) Close() error {
	return s.consumer.Close()
}

func (s *consumerService) ack(d queue.Delivery) {
	if err := d.Ack(); err != nil {
		s.logger.Warn("consumer", "Failed to ack delivery", map[string]interface{}{"error": err.Error()})
	}
}

func (s *consumerService) nak(d queue.Delivery) {
	if err := d.Nak(); err != nil {
		s.logger.Warn("consumer", "Failed to nak delivery", map[string]interface{}{"error": err.Error()})
	}
}
