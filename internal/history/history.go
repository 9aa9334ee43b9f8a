// Package history persists the append-only record of pipeline runs and
// their rolling accuracy metrics. Three backends exist: an in-memory store
// for tests, a file store layering JSON lines over the artifact store, and
// a DuckDB store that appends rows to a runs table.
package history

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/energyops/forecast-guard/internal/models"
)

// Store is the metrics-history persistence interface.
type Store interface {
	// Append adds one run record to the history.
	Append(ctx context.Context, record models.RunRecord) error

	// Load returns all records ordered by recording time, oldest first.
	Load(ctx context.Context) ([]models.RunRecord, error)

	// Close releases backend resources.
	Close() error
}

// MemoryStore keeps history in memory. Used in tests and as the "memory"
// storage type.
type MemoryStore struct {
	mu      sync.RWMutex
	records []models.RunRecord
}

// NewMemoryStore creates an empty in-memory history.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(ctx context.Context, record models.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

func (s *MemoryStore) Load(ctx context.Context) ([]models.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.RunRecord, len(s.records))
	copy(out, s.records)
	sortRecords(out)
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

func sortRecords(records []models.RunRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].RecordedAt.Before(records[j].RecordedAt)
	})
}

// clampToUTC normalizes timestamps so backends compare equal regardless of
// the zone they round-tripped through.
func clampToUTC(t time.Time) time.Time { return t.UTC() }
