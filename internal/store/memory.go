package store

import (
	"context"
	"sort"
	"sync"

	"github.com/sentrascan/sentrascan/pkg/models"
)

// MemoryStore implements ScanStore with an in-memory map. It is the
// zero-config default for local dev and the test double for handler and
// controller tests.
type MemoryStore struct {
	mu    sync.RWMutex
	scans map[string]*models.ScanRecord
}

// NewMemoryStore creates a new in-memory scan store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{scans: make(map[string]*models.ScanRecord)}
}

// CreateScan implements ScanStore.
func (m *MemoryStore) CreateScan(ctx context.Context, record *models.ScanRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *record
	m.scans[record.ID] = &cp
	return nil
}

// GetScan implements ScanStore.
func (m *MemoryStore) GetScan(ctx context.Context, id string) (*models.ScanRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.scans[id]
	if !ok {
		return nil, &ErrNotFound{Entity: "scan", Key: id}
	}
	cp := *record
	return &cp, nil
}

// ListScans implements ScanStore. Records come back newest first.
func (m *MemoryStore) ListScans(ctx context.Context) ([]models.ScanRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]models.ScanRecord, 0, len(m.scans))
	for _, r := range m.scans {
		records = append(records, *r)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	return records, nil
}

// Ping implements ScanStore.
func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

// Close implements ScanStore.
func (m *MemoryStore) Close() error { return nil }
