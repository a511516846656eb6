package service

import (
	"context"
	"errors"
	"sync"

	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/entity"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/model"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/pkg/logger"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/repository/contract"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/repository/specification"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/repository/unitofwork"
	"github.com/JoshuaPangaribuan/DocIx-sub000/pkg/searchindex"

	"github.com/google/uuid"
)

// In-memory doubles for the persistence and infrastructure ports. They apply
// the few specifications the services actually use by type-switching.

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }
func (nopLogger) GetLogs(string, int, int) ([]logger.LogEntry, error) {
	return nil, nil
}

type fakeDocumentRepo struct {
	mu        sync.Mutex
	docs      map[uuid.UUID]*entity.Document
	createErr error
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: make(map[uuid.UUID]*entity.Document)}
}

func (r *fakeDocumentRepo) Create(_ context.Context, doc *entity.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if _, exists := r.docs[doc.Id]; exists {
		return errors.New("duplicate document id")
	}
	r.docs[doc.Id] = doc
	return nil
}

func (r *fakeDocumentRepo) Update(_ context.Context, doc *entity.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.Id] = doc
	return nil
}

func (r *fakeDocumentRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, spec := range specs {
		if byId, ok := spec.(specification.ByID); ok {
			return r.docs[byId.ID], nil
		}
	}
	return nil, nil
}

func (r *fakeDocumentRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Document
	for _, doc := range r.docs {
		if documentMatches(doc, specs) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func documentMatches(doc *entity.Document, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByDocumentStatus:
			if doc.Status != s.Status {
				return false
			}
		case specification.UploadedBefore:
			if !doc.UploadedAt.Before(s.Cutoff) {
				return false
			}
		}
	}
	return true
}

func (r *fakeDocumentRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	docs, _ := r.FindAll(ctx, specs...)
	return int64(len(docs)), nil
}

type fakeLedgerRepo struct {
	mu                  sync.Mutex
	ledgers             map[uuid.UUID]*entity.IndexingLog
	nextId              uint
	replaceSegmentCalls int
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{ledgers: make(map[uuid.UUID]*entity.IndexingLog)}
}

func (r *fakeLedgerRepo) Upsert(_ context.Context, log *entity.IndexingLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.ledgers[log.DocumentId]; ok {
		log.Id = existing.Id
	} else {
		r.nextId++
		log.Id = r.nextId
	}
	r.ledgers[log.DocumentId] = log
	return nil
}

func (r *fakeLedgerRepo) Update(_ context.Context, log *entity.IndexingLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ledgers[log.DocumentId] = log
	return nil
}

func (r *fakeLedgerRepo) ReplaceSegments(_ context.Context, log *entity.IndexingLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replaceSegmentCalls++
	r.ledgers[log.DocumentId] = log
	return nil
}

func (r *fakeLedgerRepo) FindByDocumentId(_ context.Context, documentId uuid.UUID) (*entity.IndexingLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ledgers[documentId], nil
}

func (r *fakeLedgerRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.IndexingLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.IndexingLog
	for _, ledger := range r.ledgers {
		if ledgerMatches(ledger, specs) {
			out = append(out, ledger)
		}
	}
	return out, nil
}

func ledgerMatches(ledger *entity.IndexingLog, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByIndexingStatus:
			if ledger.Status != s.Status {
				return false
			}
		case specification.HasRetryableSegment:
			// No segments means the run died before segmentation; still
			// worth another attempt.
			retryable := len(ledger.Segments) == 0
			for _, seg := range ledger.Segments {
				if seg.RetryCount < s.Ceiling {
					retryable = true
					break
				}
			}
			if !retryable {
				return false
			}
		}
	}
	return true
}

func (r *fakeLedgerRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	ledgers, _ := r.FindAll(ctx, specs...)
	return int64(len(ledgers)), nil
}

func (r *fakeLedgerRepo) CountByStatus(_ context.Context) (map[entity.IndexingStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[entity.IndexingStatus]int64)
	for _, ledger := range r.ledgers {
		counts[ledger.Status]++
	}
	return counts, nil
}

type fakeReconRepo struct {
	mu   sync.Mutex
	runs []*model.ReconciliationRun
}

func (r *fakeReconRepo) Create(_ context.Context, run *model.ReconciliationRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
	return nil
}

func (r *fakeReconRepo) FindLatest(_ context.Context, limit int) ([]*model.ReconciliationRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit > len(r.runs) {
		limit = len(r.runs)
	}
	out := make([]*model.ReconciliationRun, 0, limit)
	for i := len(r.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.runs[i])
	}
	return out, nil
}

type fakeUnitOfWork struct {
	docs    *fakeDocumentRepo
	ledgers *fakeLedgerRepo
	recons  *fakeReconRepo
}

func newFakeUnitOfWork() *fakeUnitOfWork {
	return &fakeUnitOfWork{
		docs:    newFakeDocumentRepo(),
		ledgers: newFakeLedgerRepo(),
		recons:  &fakeReconRepo{},
	}
}

func (u *fakeUnitOfWork) Begin(context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error               { return nil }
func (u *fakeUnitOfWork) Rollback() error             { return nil }

func (u *fakeUnitOfWork) DocumentRepository() contract.DocumentRepository {
	return u.docs
}

func (u *fakeUnitOfWork) IndexingLogRepository() contract.IndexingLogRepository {
	return u.ledgers
}

func (u *fakeUnitOfWork) ReconciliationRunRepository() contract.ReconciliationRunRepository {
	return u.recons
}

type fakeFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type fakeStorage struct {
	mu          sync.Mutex
	blobs       map[string][]byte
	storeErr    error
	retrieveErr error
	deleted     []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{blobs: make(map[string][]byte)}
}

func (s *fakeStorage) Store(_ context.Context, name string, data []byte, _ int64, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.storeErr != nil {
		return "", s.storeErr
	}
	s.blobs[name] = data
	return name, nil
}

func (s *fakeStorage) Retrieve(_ context.Context, path string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.retrieveErr != nil {
		return nil, s.retrieveErr
	}
	data, ok := s.blobs[path]
	if !ok {
		return nil, errors.New("blob not found")
	}
	return data, nil
}

func (s *fakeStorage) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, path)
	delete(s.blobs, path)
	return nil
}

func (s *fakeStorage) Exists(_ context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[path]
	return ok, nil
}

type fakeExtractor struct {
	text string
	err  error
}

func (e *fakeExtractor) ExtractText(context.Context, []byte, string) (string, error) {
	return e.text, e.err
}

type fakeIndex struct {
	mu          sync.Mutex
	segments    map[string]searchindex.SegmentDocument
	failSegment map[int]error // by segment number
	deleteCalls int
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{
		segments:    make(map[string]searchindex.SegmentDocument),
		failSegment: make(map[int]error),
	}
}

func (i *fakeIndex) IndexSegment(_ context.Context, doc searchindex.SegmentDocument) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err, ok := i.failSegment[doc.SegmentNumber]; ok {
		return err
	}
	i.segments[searchindex.SegmentId(doc.DocumentId, doc.SegmentNumber)] = doc
	return nil
}

func (i *fakeIndex) DeleteByDocumentId(_ context.Context, documentId uuid.UUID) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.deleteCalls++
	for id, doc := range i.segments {
		if doc.DocumentId == documentId {
			delete(i.segments, id)
		}
	}
	return nil
}

func (i *fakeIndex) ExistsByDocumentId(ctx context.Context, documentId uuid.UUID) (bool, error) {
	count, _ := i.CountByDocumentId(ctx, documentId)
	return count > 0, nil
}

func (i *fakeIndex) CountByDocumentId(_ context.Context, documentId uuid.UUID) (int64, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	var count int64
	for _, doc := range i.segments {
		if doc.DocumentId == documentId {
			count++
		}
	}
	return count, nil
}

func (i *fakeIndex) Search(context.Context, string, int) ([]searchindex.Hit, error) {
	return nil, nil
}

type fakePublisher struct {
	mu       sync.Mutex
	payloads [][]byte
	err      error
}

func (p *fakePublisher) Publish(_ context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type fakeDelivery struct {
	payload []byte
	acked   bool
	naked   bool
}

func (d *fakeDelivery) Payload() []byte { return d.payload }
func (d *fakeDelivery) Ack() error      { d.acked = true; return nil }
func (d *fakeDelivery) Nak() error      { d.naked = true; return nil }
