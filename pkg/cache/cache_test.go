package cache

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || !hit || string(data) != "value" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "short", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry returned")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	_ = c.Set(ctx, "key", []byte("value"), 0)

	if err := os.WriteFile(c.path("key"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "key"); hit || err != nil {
		t.Errorf("corrupt entry: hit %v, err %v", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for _, k := range []string{"a", "b", "c"} {
		_ = c.Set(ctx, k, []byte(k), 0)
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry survived Clear")
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	type preview struct {
		URL string `json:"url"`
	}
	if err := SetJSON(ctx, c, KeyTypeAsset, "k", preview{URL: "https://x"}, time.Hour); err != nil {
		t.Fatal(err)
	}
	var got preview
	hit, err := GetJSON(ctx, c, KeyTypeAsset, "k", &got)
	if err != nil || !hit || got.URL != "https://x" {
		t.Errorf("GetJSON = %+v, %v, %v", got, hit, err)
	}

	_ = c.Set(ctx, "bad", []byte("nope"), 0)
	if hit, _ := GetJSON(ctx, c, KeyTypeAsset, "bad", &got); hit {
		t.Error("undecodable entry reported as hit")
	}
	if _, hit, _ := c.Get(ctx, "bad"); hit {
		t.Error("undecodable entry not deleted")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	a1 := k.AssetKey("https://assets.example", "img-1")
	a2 := k.AssetKey("https://assets.example", "img-2")
	a3 := k.AssetKey("https://other.example", "img-1")
	if a1 == a2 || a1 == a3 {
		t.Error("asset keys should differ by base URL and ref id")
	}
	if !strings.HasPrefix(a1, KeyTypeAsset+":") {
		t.Errorf("AssetKey prefix: %s", a1)
	}
	if a1 != k.AssetKey("https://assets.example", "img-1") {
		t.Error("AssetKey should be deterministic")
	}

	r1 := k.RenderKey("hash123", RenderKeyOpts{Format: "svg", Breakpoint: "desktop"})
	r2 := k.RenderKey("hash123", RenderKeyOpts{Format: "svg", Breakpoint: "mobile"})
	r3 := k.RenderKey("hash123", RenderKeyOpts{Format: "svg", Breakpoint: "desktop", GridLines: true})
	if r1 == r2 || r1 == r3 {
		t.Error("Different RenderKeyOpts should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "team:123:")

	key := scoped.AssetKey("https://assets.example", "img-1")
	if key != "team:123:"+inner.AssetKey("https://assets.example", "img-1") {
		t.Errorf("ScopedKeyer AssetKey unexpected: %s", key)
	}

	renderKey := scoped.RenderKey("abc", RenderKeyOpts{})
	if !strings.HasPrefix(renderKey, "team:123:render:") {
		t.Errorf("ScopedKeyer RenderKey should be prefixed: %s", renderKey)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.AssetKey("u", "id")
	if key != "prefix:"+NewDefaultKeyer().AssetKey("u", "id") {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}
