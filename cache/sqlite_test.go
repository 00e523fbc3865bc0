package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestSQLite(t *testing.T, cfg SQLiteConfig) *SQLiteCache {
	t.Helper()
	if cfg.Path == "" {
		cfg.Path = filepath.Join(t.TempDir(), "cache.db")
	}
	c, err := OpenSQLite(context.Background(), cfg)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSQLiteCache_RoundTrip(t *testing.T) {
	c := openTestSQLite(t, SQLiteConfig{})
	ctx := context.Background()

	if _, ok := c.Get(ctx, "absent"); ok {
		t.Error("Get on empty database should miss")
	}

	payload := []byte(`{"results":[{"title":"Go","description":"The Go language"}]}`)
	if err := c.Set(ctx, "k1", payload); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, ok := c.Get(ctx, "k1")
	if !ok {
		t.Fatal("Get after Set should hit")
	}
	if string(got) != string(payload) {
		t.Errorf("Get() = %s, want %s", got, payload)
	}
}

func TestSQLiteCache_Upsert(t *testing.T) {
	now := int64(1_700_000_000)
	c := openTestSQLite(t, SQLiteConfig{Now: func() time.Time { return time.Unix(now, 0) }})
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte(`"first"`))
	now += 60
	_ = c.Set(ctx, "k", []byte(`"second"`))

	entries, err := c.Entries(ctx)
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(Entries()) = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.Key != "k" || e.Data != `"second"` || e.CreatedAt != now {
		t.Errorf("entry = %+v, want key=k data=\"second\" created_at=%d", e, now)
	}
}

func TestSQLiteCache_Expiry(t *testing.T) {
	now := int64(1_700_000_000)
	c := openTestSQLite(t, SQLiteConfig{Now: func() time.Time { return time.Unix(now, 0) }})
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte(`{}`))

	now += 7200
	if _, ok := c.Get(ctx, "k"); !ok {
		t.Error("entry at exactly max age should still be readable")
	}

	now++
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("entry past max age should miss")
	}
	n, err := c.Len(ctx)
	if err != nil {
		t.Fatalf("Len() error = %v", err)
	}
	if n != 0 {
		t.Errorf("expired row should be swept on Get, Len() = %d", n)
	}
}

func TestSQLiteCache_Sweep(t *testing.T) {
	now := int64(100_000)
	c := openTestSQLite(t, SQLiteConfig{Now: func() time.Time { return time.Unix(now, 0) }})
	ctx := context.Background()

	_ = c.Set(ctx, "old1", []byte("1"))
	_ = c.Set(ctx, "old2", []byte("2"))
	now += 5000
	_ = c.Set(ctx, "fresh", []byte("3"))
	now += 3000

	removed, err := c.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("Sweep() = %d, want 2", removed)
	}
	if _, ok := c.Get(ctx, "fresh"); !ok {
		t.Error("fresh entry should survive the sweep")
	}
}

func TestSQLiteCache_Delete(t *testing.T) {
	c := openTestSQLite(t, SQLiteConfig{})
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v"))
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("second Delete() error = %v", err)
	}
}

func TestSQLiteCache_EphemeralWipesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	first, err := OpenSQLite(ctx, SQLiteConfig{Path: path})
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	_ = first.Set(ctx, "k", []byte("v"))
	_ = first.Close()

	persistent := openTestSQLite(t, SQLiteConfig{Path: path})
	if _, ok := persistent.Get(ctx, "k"); !ok {
		t.Fatal("non-ephemeral reopen should keep existing rows")
	}
	_ = persistent.Close()

	fresh := openTestSQLite(t, SQLiteConfig{Path: path, Ephemeral: true})
	if _, ok := fresh.Get(ctx, "k"); ok {
		t.Error("ephemeral open should start empty")
	}
}

func TestSQLiteCache_EphemeralMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "cache.db")
	c := openTestSQLite(t, SQLiteConfig{Path: path, Ephemeral: true})

	if _, err := os.Stat(path); err != nil {
		t.Errorf("database file should be created: %v", err)
	}
	if c.Path() != path {
		t.Errorf("Path() = %q, want %q", c.Path(), path)
	}
}

func TestSQLiteCache_InMemory(t *testing.T) {
	c := openTestSQLite(t, SQLiteConfig{Path: ":memory:"})
	ctx := context.Background()

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	_ = c.Set(ctx, "k", []byte("v"))
	if got, ok := c.Get(ctx, "k"); !ok || string(got) != "v" {
		t.Errorf("Get() = (%q, %v), want (v, true)", got, ok)
	}
}

func TestSQLiteCache_CorruptPayloadIsStoreMiss(t *testing.T) {
	c := openTestSQLite(t, SQLiteConfig{})
	ctx := context.Background()
	store := NewStore(c)

	params := map[string]any{"q": "x"}
	key, err := store.Key("ns", params)
	if err != nil {
		t.Fatalf("Key() error = %v", err)
	}
	if _, err := c.db.ExecContext(ctx,
		"INSERT INTO cache (key, created_at, data) VALUES (?, ?, ?)",
		key, time.Now().Unix(), "{not json",
	); err != nil {
		t.Fatalf("insert corrupt row: %v", err)
	}

	var dst map[string]any
	if store.Get(ctx, "ns", params, &dst) {
		t.Error("corrupt payload should be reported as a miss")
	}
}
