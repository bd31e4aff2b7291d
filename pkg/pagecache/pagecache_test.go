package pagecache

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	entry := &Entry{Body: []byte(`{"resolved":true}`), Tags: []string{"node:1"}}
	if err := store.Set(ctx, "k1", entry, time.Minute); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	got, ok, err := store.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if !ok {
		t.Fatal("Get() miss, want hit")
	}
	if !bytes.Equal(got.Body, entry.Body) {
		t.Errorf("Body = %s, want %s", got.Body, entry.Body)
	}
}

func TestMemoryStoreMiss(t *testing.T) {
	store := NewMemoryStore()

	_, ok, err := store.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if ok {
		t.Error("Get() hit, want miss")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Set(ctx, "k1", &Entry{Body: []byte("x")}, time.Nanosecond); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	_, ok, err := store.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if ok {
		t.Error("Get() hit after expiry, want miss")
	}
}

func TestMemoryStoreZeroTTLStoresNothing(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Set(ctx, "k1", &Entry{Body: []byte("x")}, 0); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "k1"); ok {
		t.Error("Get() hit, want miss for non-positive TTL")
	}
}

func TestMemoryStoreInvalidateTags(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.Set(ctx, "k1", &Entry{Body: []byte("a"), Tags: []string{"node:1", "node:2"}}, time.Minute)
	store.Set(ctx, "k2", &Entry{Body: []byte("b"), Tags: []string{"node:2"}}, time.Minute)
	store.Set(ctx, "k3", &Entry{Body: []byte("c"), Tags: []string{"node:3"}}, time.Minute)

	if err := store.InvalidateTags(ctx, "node:2"); err != nil {
		t.Fatalf("InvalidateTags() error: %v", err)
	}

	for _, key := range []string{"k1", "k2"} {
		if _, ok, _ := store.Get(ctx, key); ok {
			t.Errorf("Get(%s) hit after invalidation, want miss", key)
		}
	}
	if _, ok, _ := store.Get(ctx, "k3"); !ok {
		t.Error("Get(k3) miss, want untouched entry to survive")
	}
}

func TestNullStoreNeverHits(t *testing.T) {
	store := NewNullStore()
	ctx := context.Background()

	if err := store.Set(ctx, "k1", &Entry{Body: []byte("x")}, time.Minute); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "k1"); ok {
		t.Error("null store should never hit")
	}
}

func TestKeyIsStableAndDistinct(t *testing.T) {
	a := Key("/about-us", "en")
	b := Key("/about-us", "en")
	c := Key("/about-us", "de")
	d := Key("/contact", "en")

	if a != b {
		t.Error("Key() should be deterministic")
	}
	if a == c || a == d {
		t.Error("Key() should vary by path and langcode")
	}
}
