package importing

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/vfg2006/ad-report-importer/infrastructure/repository"
	"github.com/vfg2006/ad-report-importer/internal/domain"
)

// memState simula as tabelas do banco para os testes de cenário.
// Cada operação segura o mutex inteiro, como uma transação serializável.
type memState struct {
	mu         sync.Mutex
	clients    map[string]*domain.Client
	ads        map[adKey]domain.Ad
	facts      map[domain.MetricKey]domain.Measures
	staged     map[string][]*domain.StagedMetric
	hashes     map[string]string
	batches    []*domain.ImportBatch
	batchFacts map[string][]*domain.BatchFact
}

type adKey struct {
	clientID string
	adID     int64
}

func newMemState() *memState {
	return &memState{
		clients:    make(map[string]*domain.Client),
		ads:        make(map[adKey]domain.Ad),
		facts:      make(map[domain.MetricKey]domain.Measures),
		staged:     make(map[string][]*domain.StagedMetric),
		hashes:     make(map[string]string),
		batchFacts: make(map[string][]*domain.BatchFact),
	}
}

func (s *memState) completedBatches() []*domain.ImportBatch {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.ImportBatch
	for _, b := range s.batches {
		if b.Status == domain.ImportStatusCompleted {
			out = append(out, b)
		}
	}
	return out
}

func (s *memState) fact(clientID string, date time.Time, adID int64) (domain.Measures, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.facts[domain.MetricKey{ClientID: clientID, Date: date, AdID: adID}]
	return m, ok
}

func (s *memState) factCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.facts)
}

func (s *memState) stagedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, rows := range s.staged {
		n += len(rows)
	}
	return n
}

type memClients struct{ s *memState }

func (r *memClients) FindByNormalizedName(_ context.Context, normalizedName string) (*domain.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.clients[normalizedName]
	if !ok {
		return nil, nil
	}
	clone := *c
	return &clone, nil
}

func (r *memClients) Create(_ context.Context, client *domain.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.clients[client.NormalizedName]; ok {
		return repository.ErrDuplicateClient
	}
	clone := *client
	r.s.clients[client.NormalizedName] = &clone
	return nil
}

func (r *memClients) BackfillCurrency(_ context.Context, clientID, currency string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.clients {
		if c.ID == clientID && c.Currency == nil {
			c.Currency = &currency
			return true, nil
		}
	}
	return false, nil
}

func (r *memClients) List(context.Context) ([]*domain.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*domain.Client, 0, len(r.s.clients))
	for _, c := range r.s.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memBatches struct{ s *memState }

func (r *memBatches) HasFileHash(_ context.Context, fileHash string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	_, ok := r.s.hashes[fileHash]
	return ok, nil
}

func (r *memBatches) Save(_ context.Context, batch *domain.ImportBatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	clone := *batch
	r.s.batches = append(r.s.batches, &clone)
	return nil
}

func (r *memBatches) GetByID(_ context.Context, batchID string) (*domain.ImportBatch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, b := range r.s.batches {
		if b.ID == batchID {
			return b, nil
		}
	}
	return nil, nil
}

func (r *memBatches) List(_ context.Context, _ domain.ImportBatchFilters) ([]*domain.ImportBatch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return append([]*domain.ImportBatch(nil), r.s.batches...), nil
}

func (r *memBatches) ListFacts(_ context.Context, batchID string) ([]*domain.BatchFact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.s.batchFacts[batchID], nil
}

type memMetrics struct{ s *memState }

func (r *memMetrics) Stage(_ context.Context, rows []*domain.StagedMetric) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, row := range rows {
		r.s.staged[row.SessionID] = append(r.s.staged[row.SessionID], row)
	}
	return nil
}

func (r *memMetrics) Merge(_ context.Context, sessionID string, batch *domain.ImportBatch) (*domain.MergeResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.hashes[batch.FileHash]; taken {
		return nil, repository.ErrFileHashTaken
	}

	result := &domain.MergeResult{}
	var facts []*domain.BatchFact
	for _, row := range r.s.staged[sessionID] {
		r.s.ads[adKey{row.ClientID, row.AdID}] = domain.Ad{ClientID: row.ClientID, ID: row.AdID, Name: row.AdName}

		key := domain.MetricKey{ClientID: row.ClientID, Date: row.Date, AdID: row.AdID}
		fact := &domain.BatchFact{BatchID: batch.ID, Key: key, Action: domain.BatchFactInserted}
		if previous, ok := r.s.facts[key]; ok {
			fact.Action = domain.BatchFactUpdated
			fact.Previous = &previous
			result.Updated++
		} else {
			result.Inserted++
		}
		r.s.facts[key] = row.Measures
		facts = append(facts, fact)
	}

	r.s.hashes[batch.FileHash] = batch.ID
	r.s.batchFacts[batch.ID] = facts

	batch.Inserted = result.Inserted
	batch.Updated = result.Updated
	clone := *batch
	r.s.batches = append(r.s.batches, &clone)

	delete(r.s.staged, sessionID)
	return result, nil
}

func (r *memMetrics) DiscardStaged(_ context.Context, sessionID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.staged, sessionID)
	return nil
}

func (r *memMetrics) DeleteStaleStaged(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (r *memMetrics) Undo(context.Context, string, *domain.ImportBatch) (*domain.UndoResult, error) {
	return nil, errors.New("undo não simulado")
}
