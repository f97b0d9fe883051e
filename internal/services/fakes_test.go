package services

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"SP-DOCS/internal/models"
)

// In-memory store fakes shared by the allocator and pipeline tests.

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeCounterStore struct {
	mu       sync.Mutex
	counters map[string]int
	failWith error
}

func newFakeCounterStore() *fakeCounterStore {
	return &fakeCounterStore{counters: make(map[string]int)}
}

func (s *fakeCounterStore) NextSequence(ctx context.Context, orgID string, fiscalYear int, documentType string) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return 0, false, s.failWith
	}
	key := fmt.Sprintf("%s/%d/%s", orgID, fiscalYear, documentType)
	seq := s.counters[key] + 1
	s.counters[key] = seq
	return seq, seq == 1, nil
}

type fakeAuditStore struct {
	mu      sync.Mutex
	entries []*models.AuditLog
}

func (s *fakeAuditStore) Append(ctx context.Context, entry *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *fakeAuditStore) List(ctx context.Context, orgID string, filter AuditFilter) ([]models.AuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.AuditLog
	for _, e := range s.entries {
		if e.OrganizationID != orgID {
			continue
		}
		if filter.EntityType != "" && e.EntityType != filter.EntityType {
			continue
		}
		if filter.EntityID != "" && e.EntityID != filter.EntityID {
			continue
		}
		if filter.CaseID != "" && e.CaseID != filter.CaseID {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (s *fakeAuditStore) byAction(action models.AuditAction) []*models.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.AuditLog
	for _, e := range s.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

type fakeCaseStore struct {
	mu    sync.Mutex
	cases map[string]*models.ProcurementCase
}

func newFakeCaseStore() *fakeCaseStore {
	return &fakeCaseStore{cases: make(map[string]*models.ProcurementCase)}
}

func (s *fakeCaseStore) Create(ctx context.Context, pcase *models.ProcurementCase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cases[pcase.OrganizationID+"/"+pcase.ID] = pcase
	return nil
}

func (s *fakeCaseStore) Get(ctx context.Context, orgID, caseID string) (*models.ProcurementCase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pcase, ok := s.cases[orgID+"/"+caseID]
	if !ok {
		return nil, &NotFoundError{Entity: "case", ID: caseID}
	}
	return pcase, nil
}

func (s *fakeCaseStore) List(ctx context.Context, orgID string) ([]models.ProcurementCase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ProcurementCase
	for _, pcase := range s.cases {
		if pcase.OrganizationID == orgID {
			out = append(out, *pcase)
		}
	}
	return out, nil
}

type fakeDocumentStore struct {
	mu   sync.Mutex
	docs []*models.DocumentRecord
}

func (s *fakeDocumentStore) CreateBatch(ctx context.Context, docs []*models.DocumentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, docs...)
	return nil
}

func (s *fakeDocumentStore) Get(ctx context.Context, orgID, documentID string) (*models.DocumentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.docs {
		if d.OrganizationID == orgID && d.ID == documentID {
			return d, nil
		}
	}
	return nil, &NotFoundError{Entity: "document", ID: documentID}
}

func (s *fakeDocumentStore) ListByCase(ctx context.Context, orgID, caseID string) ([]models.DocumentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.DocumentRecord
	for _, d := range s.docs {
		if d.OrganizationID == orgID && d.CaseID == caseID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (s *fakeDocumentStore) UpdateOverride(ctx context.Context, doc *models.DocumentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.docs {
		if d.ID == doc.ID {
			d.ManualNumber = doc.ManualNumber
			d.DocumentDate = doc.DocumentDate
			return nil
		}
	}
	return &NotFoundError{Entity: "document", ID: doc.ID}
}

func (s *fakeDocumentStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

type fakePackOverrideStore struct {
	mu        sync.Mutex
	overrides map[string]*models.PackOverride
}

func newFakePackOverrideStore() *fakePackOverrideStore {
	return &fakePackOverrideStore{overrides: make(map[string]*models.PackOverride)}
}

func (s *fakePackOverrideStore) Get(ctx context.Context, orgID, packID string) (*models.PackOverride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overrides[orgID+"/"+packID], nil
}

func (s *fakePackOverrideStore) Upsert(ctx context.Context, override *models.PackOverride) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[override.OrganizationID+"/"+override.PackID] = override
	return nil
}
