package importer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kosarica/catalog-import/internal/enrichment"
	"github.com/kosarica/catalog-import/internal/matching"
	"github.com/kosarica/catalog-import/internal/types"
)

// memStore is an in-memory implementation of every importer collaborator
type memStore struct {
	mu          sync.Mutex
	jobs        map[string]types.ImportJob
	rows        map[string][]types.RowResult
	products    []types.Product
	items       map[string]types.SupplierItem // key supplier|product
	upserts     int
	suppliers   map[string]bool
	upsertErr   error
	transitions []string
	touches     int
}

func newMemStore(products ...types.Product) *memStore {
	return &memStore{
		jobs:      map[string]types.ImportJob{},
		rows:      map[string][]types.RowResult{},
		products:  products,
		items:     map[string]types.SupplierItem{},
		suppliers: map[string]bool{"sup-1": true},
	}
}

func (m *memStore) CreateJob(_ context.Context, job types.ImportJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = job
	return nil
}

func (m *memStore) TransitionJob(_ context.Context, jobID string, from, to types.ImportStatus, errorMessage *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return ErrJobNotFound
	}
	if job.Status != from || !types.CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, job.Status, to)
	}
	job.Status = to
	job.ErrorMessage = errorMessage
	m.jobs[jobID] = job
	m.transitions = append(m.transitions, string(from)+"->"+string(to))
	return nil
}

func (m *memStore) TouchJob(_ context.Context, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.jobs[jobID].Status != types.ImportProcessing {
		return ErrInvalidTransition
	}
	m.touches++
	return nil
}

func (m *memStore) CompleteJob(_ context.Context, job types.ImportJob, rows []types.RowResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current := m.jobs[job.ID]
	if current.Status != types.ImportProcessing {
		return ErrInvalidTransition
	}
	m.jobs[job.ID] = job
	m.rows[job.ID] = rows
	m.transitions = append(m.transitions, "PROCESSING->COMPLETED")
	return nil
}

func (m *memStore) FindByGTIN(_ context.Context, gtin14 string) ([]types.Product, error) {
	var out []types.Product
	for _, p := range m.products {
		if p.GTIN != nil && matching.NormalizeGTIN(*p.GTIN) == gtin14 {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) FindCandidatesByName(_ context.Context, _ string, _ string, limit int) ([]types.Product, error) {
	if len(m.products) > limit {
		return m.products[:limit], nil
	}
	return m.products, nil
}

func (m *memStore) UpsertSupplierItem(_ context.Context, item types.SupplierItem) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return false, m.upsertErr
	}
	m.upserts++
	key := item.SupplierID + "|" + item.ProductID
	if existing, ok := m.items[key]; ok {
		existing.SupplierSKU = item.SupplierSKU
		existing.UnitPrice = item.UnitPrice
		existing.Currency = item.Currency
		existing.MinOrderQty = item.MinOrderQty
		existing.Stock = item.Stock
		existing.LeadTimeDays = item.LeadTimeDays
		existing.LastSyncAt = item.LastSyncAt
		m.items[key] = existing
		return false, nil
	}
	item.CreatedAt = item.LastSyncAt
	m.items[key] = item
	return true, nil
}

func (m *memStore) AuthorizeImport(_ context.Context, supplierID string) error {
	if !m.suppliers[supplierID] {
		return fmt.Errorf("%w: supplier %s", ErrUnauthorized, supplierID)
	}
	return nil
}

func (m *memStore) item(supplierID, productID string) (types.SupplierItem, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[supplierID+"|"+productID]
	return item, ok
}

type countingEnricher struct {
	mu    sync.Mutex
	calls []string
	out   enrichment.Outcome
}

func (c *countingEnricher) Enrich(_ context.Context, product types.Product, gtin string) enrichment.Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, product.ID+"@"+gtin)
	return c.out
}

var created = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func widget() types.Product {
	return types.Product{
		ID:          "prod-widget",
		GTIN:        types.StringPtr("06291041500213"),
		Name:        "Widget",
		Brand:       "Acme",
		Description: "A widget",
		NetContent:  "1 pc",
		CreatedAt:   created,
	}
}

func newTestOrchestrator(store *memStore, enricher Enricher) *Orchestrator {
	return New(Dependencies{
		Jobs:       store,
		Products:   store,
		Items:      store,
		Authorizer: store,
		Enricher:   enricher,
	}, Config{Workers: 4})
}
