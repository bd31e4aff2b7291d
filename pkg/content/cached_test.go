package content

import (
	"context"
	"testing"
)

// countingStore records how many times LoadByUUID reaches the backend.
type countingStore struct {
	loads    int
	entities map[string]*Entity
}

func (s *countingStore) GetDefinition(ctx context.Context, entityTypeID string) (*Definition, error) {
	return &Definition{ID: entityTypeID, ContentBearing: true}, nil
}

func (s *countingStore) LoadByUUID(ctx context.Context, entityTypeID, id string) (*Entity, error) {
	s.loads++
	return s.entities[entityTypeID+"/"+id], nil
}

func (s *countingStore) Access(ctx context.Context, e *Entity, op string) bool {
	return e != nil && op == "view" && e.Published
}

func TestCachedStoreHitsBackendOnce(t *testing.T) {
	backend := &countingStore{
		entities: map[string]*Entity{
			"node/u1": {UUID: "u1", EntityType: "node", Published: true},
		},
	}
	store, err := NewCachedStore(backend, 8)
	if err != nil {
		t.Fatalf("NewCachedStore() error: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		e, err := store.LoadByUUID(ctx, "node", "u1")
		if err != nil {
			t.Fatalf("LoadByUUID() error: %v", err)
		}
		if e == nil {
			t.Fatal("LoadByUUID() = nil, want entity")
		}
	}

	if backend.loads != 1 {
		t.Errorf("backend loads = %d, want 1", backend.loads)
	}
}

func TestCachedStoreCachesMisses(t *testing.T) {
	backend := &countingStore{entities: map[string]*Entity{}}
	store, err := NewCachedStore(backend, 8)
	if err != nil {
		t.Fatalf("NewCachedStore() error: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if e, _ := store.LoadByUUID(ctx, "node", "ghost"); e != nil {
			t.Fatalf("LoadByUUID() = %+v, want nil", e)
		}
	}

	if backend.loads != 1 {
		t.Errorf("backend loads = %d, want 1", backend.loads)
	}
}

func TestCachedStoreInvalidate(t *testing.T) {
	backend := &countingStore{
		entities: map[string]*Entity{
			"node/u1": {UUID: "u1", EntityType: "node", Published: true},
		},
	}
	store, err := NewCachedStore(backend, 8)
	if err != nil {
		t.Fatalf("NewCachedStore() error: %v", err)
	}

	ctx := context.Background()
	if _, err := store.LoadByUUID(ctx, "node", "u1"); err != nil {
		t.Fatal(err)
	}
	store.Invalidate("node", "u1")
	if _, err := store.LoadByUUID(ctx, "node", "u1"); err != nil {
		t.Fatal(err)
	}

	if backend.loads != 2 {
		t.Errorf("backend loads = %d, want 2", backend.loads)
	}
}
