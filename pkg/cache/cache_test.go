package cache

import (
	"context"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	c := NewNullCache()
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}

	data, ok, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("null cache reported a hit")
	}
	if data != nil {
		t.Errorf("null cache returned data: %q", data)
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestFileCacheRoundTrip(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "result:abc", []byte("payload"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}

	data, ok, err := c.Get(ctx, "result:abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if string(data) != "payload" {
		t.Errorf("got %q, want %q", data, "payload")
	}

	// Missing key is a miss, not an error.
	_, ok, err = c.Get(ctx, "result:missing")
	if err != nil {
		t.Fatalf("Get missing: %v", err)
	}
	if ok {
		t.Error("expected miss for unknown key")
	}
}

func TestFileCacheExpiration(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("stale"), -time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}

	_, ok, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("expired entry should be a miss")
	}
}

func TestFileCacheDelete(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "key"); ok {
		t.Error("expected miss after Delete")
	}

	// Deleting a missing key is not an error.
	if err := c.Delete(ctx, "never-set"); err != nil {
		t.Errorf("Delete missing: %v", err)
	}
}

func TestHashDeterminism(t *testing.T) {
	a := Hash([]byte("hello"))
	b := Hash([]byte("hello"))
	if a != b {
		t.Errorf("Hash not deterministic: %s != %s", a, b)
	}
	if a == Hash([]byte("world")) {
		t.Error("distinct inputs produced the same hash")
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
}

func TestHashJSON(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	a, err := HashJSON(payload{Name: "x", Count: 1})
	if err != nil {
		t.Fatalf("HashJSON: %v", err)
	}
	b, err := HashJSON(payload{Name: "x", Count: 1})
	if err != nil {
		t.Fatalf("HashJSON: %v", err)
	}
	if a != b {
		t.Error("equal values hashed differently")
	}

	c, err := HashJSON(payload{Name: "x", Count: 2})
	if err != nil {
		t.Fatalf("HashJSON: %v", err)
	}
	if a == c {
		t.Error("distinct values hashed identically")
	}
}

func TestKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if got := k.ResultKey("abc123"); got != "result:abc123" {
		t.Errorf("ResultKey = %q", got)
	}
	if got := k.CatalogKey("pedal", "ts808"); got != "catalog:pedal:ts808" {
		t.Errorf("CatalogKey = %q", got)
	}

	scoped := NewScopedKeyer(nil, "v2:")
	if got := scoped.ResultKey("abc123"); got != "v2:result:abc123" {
		t.Errorf("scoped ResultKey = %q", got)
	}
}
