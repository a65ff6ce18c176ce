//go:build !integration

package optimizer

import (
	"context"
	"sync"
	"testing"
	"time"

	"postPilot/domain"
)

// memStore is an in-memory VariantStore whose increments are atomic under
// one mutex, mirroring the SQL-level column math of the real store.
type memStore struct {
	mu       sync.Mutex
	variants map[string]*domain.Variant
	batches  int
}

func newMemStore(ids ...string) *memStore {
	s := &memStore{variants: make(map[string]*domain.Variant)}
	for _, id := range ids {
		s.variants[id] = &domain.Variant{ID: id}
	}
	return s
}

func (s *memStore) LoadAll(ctx context.Context, personaID string) ([]domain.Variant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Variant, 0, len(s.variants))
	for _, v := range s.variants {
		if personaID == "" || v.PersonaID == personaID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (s *memStore) Get(ctx context.Context, id string) (*domain.Variant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.variants[id]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (s *memStore) Increment(ctx context.Context, id string, impressionsDelta, successesDelta int64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.variants[id]
	if !ok {
		return nil // unknown ID is a no-op, like UPDATE matching zero rows
	}
	v.Impressions += impressionsDelta
	v.Successes += successesDelta
	v.LastUsed = now
	return nil
}

func (s *memStore) IncrementBatch(ctx context.Context, deltas []domain.VariantDelta, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches++
	for _, d := range deltas {
		v, ok := s.variants[d.VariantID]
		if !ok {
			continue
		}
		v.Impressions += d.ImpressionsDelta
		v.Successes += d.SuccessesDelta
		v.LastUsed = now
	}
	return nil
}

func (s *memStore) Insert(ctx context.Context, variant domain.Variant) (domain.Variant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.variants[variant.ID] = &variant
	return variant, nil
}

func (s *memStore) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.variants)), nil
}

func (s *memStore) counters(id string) (int64, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.variants[id]
	if !ok {
		return 0, 0
	}
	return v.Impressions, v.Successes
}

func TestUpdaterSuccessImpliesImpression(t *testing.T) {
	store := newMemStore("v1")
	u := NewPerformanceUpdater(store)

	if err := u.Update(context.Background(), PerformanceUpdate{VariantID: "v1", Success: true}); err != nil {
		t.Fatal(err)
	}

	imp, succ := store.counters("v1")
	if imp != 1 || succ != 1 {
		t.Errorf("got impressions=%d successes=%d, want 1, 1", imp, succ)
	}
}

func TestUpdaterNoopUpdate(t *testing.T) {
	store := newMemStore("v1")
	u := NewPerformanceUpdater(store)

	if err := u.Update(context.Background(), PerformanceUpdate{VariantID: "v1"}); err != nil {
		t.Fatal(err)
	}

	imp, succ := store.counters("v1")
	if imp != 0 || succ != 0 {
		t.Errorf("got impressions=%d successes=%d, want untouched 0, 0", imp, succ)
	}
}

func TestUpdaterUnknownVariantNoop(t *testing.T) {
	store := newMemStore("v1")
	u := NewPerformanceUpdater(store)

	err := u.Update(context.Background(), PerformanceUpdate{VariantID: "ghost", Impression: true})
	if err != nil {
		t.Fatalf("unknown variant must be a no-op, got %v", err)
	}
}

func TestUpdaterConcurrentUpdates(t *testing.T) {
	store := newMemStore("v1")
	u := NewPerformanceUpdater(store)

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			up := PerformanceUpdate{VariantID: "v1", Impression: true, Success: i%2 == 0}
			if err := u.Update(context.Background(), up); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	imp, succ := store.counters("v1")
	if imp != n || succ != n/2 {
		t.Errorf("got impressions=%d successes=%d, want %d, %d", imp, succ, n, n/2)
	}
}

func TestUpdaterBatchGroupsPerVariant(t *testing.T) {
	store := newMemStore("v1", "v2")
	u := NewPerformanceUpdater(store)

	updates := []PerformanceUpdate{
		{VariantID: "v1", Impression: true},
		{VariantID: "v2", Impression: true, Success: true},
		{VariantID: "v1", Success: true},
		{VariantID: "v1", Impression: true},
	}
	if err := u.UpdateBatch(context.Background(), updates); err != nil {
		t.Fatal(err)
	}

	if imp, succ := store.counters("v1"); imp != 3 || succ != 1 {
		t.Errorf("v1: got impressions=%d successes=%d, want 3, 1", imp, succ)
	}
	if imp, succ := store.counters("v2"); imp != 1 || succ != 1 {
		t.Errorf("v2: got impressions=%d successes=%d, want 1, 1", imp, succ)
	}
	if store.batches != 1 {
		t.Errorf("batch applied in %d store calls, want 1", store.batches)
	}
}

func TestApplyAggregatesThreshold(t *testing.T) {
	store := newMemStore("hot", "cold")
	u := NewPerformanceUpdater(store)
	cfg := DefaultConfig()

	aggs := []domain.BatchAggregate{
		// 4.5 weighted score at threshold 2.0 -> floor(2.25) = 2 successes
		{VariantID: "hot", ImpressionsDelta: 3, WeightedScore: 4.5, EventCount: 3},
		// below threshold -> no success
		{VariantID: "cold", ImpressionsDelta: 2, WeightedScore: 0.2, EventCount: 2},
	}
	if err := u.ApplyAggregates(context.Background(), aggs, cfg); err != nil {
		t.Fatal(err)
	}

	if imp, succ := store.counters("hot"); imp != 3 || succ != 2 {
		t.Errorf("hot: got impressions=%d successes=%d, want 3, 2", imp, succ)
	}
	if imp, succ := store.counters("cold"); imp != 2 || succ != 0 {
		t.Errorf("cold: got impressions=%d successes=%d, want 2, 0", imp, succ)
	}
}
