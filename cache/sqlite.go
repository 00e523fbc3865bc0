package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/jonwraymond/websearch/observe"
)

// DefaultSQLitePath is the database file used when SQLiteConfig.Path is empty.
const DefaultSQLitePath = "cache.db"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cache (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	key        TEXT NOT NULL UNIQUE,
	created_at INTEGER NOT NULL,
	data       TEXT NOT NULL
)`

// SQLiteConfig configures a SQLiteCache.
type SQLiteConfig struct {
	// Path is the database file. ":memory:" keeps the database in process memory.
	// Default: cache.db
	Path string

	// Ephemeral removes any existing database file before opening, so every
	// process starts with an empty cache.
	Ephemeral bool

	// Policy controls entry lifetime. Zero value: DefaultPolicy().
	Policy Policy

	// Logger receives debug-level cache events. Nil disables logging.
	Logger observe.Logger

	// Now overrides the clock. Nil uses time.Now.
	Now func() time.Time
}

// SQLiteCache stores entries in a single SQLite table.
//
// Every statement touches at most one row or performs one bulk delete, so no
// explicit transactions are used; the connection pool is capped at one
// connection and statements run in order.
type SQLiteCache struct {
	db     *sqlx.DB
	path   string
	policy Policy
	logger observe.Logger
	now    func() time.Time
}

// Entry is a raw row of the cache table.
type Entry struct {
	ID        int64  `db:"id"`
	Key       string `db:"key"`
	CreatedAt int64  `db:"created_at"`
	Data      string `db:"data"`
}

// OpenSQLite opens (or creates) the cache database and ensures the schema exists.
func OpenSQLite(ctx context.Context, cfg SQLiteConfig) (*SQLiteCache, error) {
	if cfg.Path == "" {
		cfg.Path = DefaultSQLitePath
	}
	if cfg.Policy == (Policy{}) {
		cfg.Policy = DefaultPolicy()
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	inMemory := cfg.Path == ":memory:"
	if !inMemory {
		if cfg.Ephemeral {
			if err := removeDatabase(cfg.Path); err != nil {
				return nil, err
			}
		}
		if dir := filepath.Dir(cfg.Path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("cache: create database dir: %w", err)
			}
		}
	}

	db, err := sqlx.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("cache: open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if !inMemory {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("cache: set WAL mode: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: create schema: %w", err)
	}

	return &SQLiteCache{
		db:     db,
		path:   cfg.Path,
		policy: cfg.Policy,
		logger: cfg.Logger,
		now:    cfg.Now,
	}, nil
}

// removeDatabase deletes the database file and its WAL side files.
func removeDatabase(path string) error {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("cache: remove stale database: %w", err)
		}
	}
	return nil
}

// Get sweeps expired rows, then looks the key up.
func (c *SQLiteCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if _, err := c.Sweep(ctx); err != nil {
		c.logger.Warn(ctx, "cache sweep failed", observe.Field{Key: "error", Value: err.Error()})
	}

	var data string
	err := c.db.GetContext(ctx, &data,
		"SELECT data FROM cache WHERE key = ? AND created_at >= ?",
		key, c.policy.Cutoff(c.now()),
	)
	if errors.Is(err, sql.ErrNoRows) {
		c.logger.Debug(ctx, "cache miss", observe.Field{Key: "cache_key", Value: key})
		return nil, false
	}
	if err != nil {
		c.logger.Warn(ctx, "cache lookup failed",
			observe.Field{Key: "cache_key", Value: key},
			observe.Field{Key: "error", Value: err.Error()},
		)
		return nil, false
	}

	c.logger.Debug(ctx, "cache hit", observe.Field{Key: "cache_key", Value: key})
	return []byte(data), true
}

// Set upserts the value with a fresh created_at.
func (c *SQLiteCache) Set(ctx context.Context, key string, value []byte) error {
	if !c.policy.ShouldCache() {
		return nil
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO cache (key, created_at, data)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			created_at = excluded.created_at,
			data = excluded.data`,
		key, c.now().Unix(), string(value),
	)
	if err != nil {
		return fmt.Errorf("cache: upsert: %w", err)
	}
	return nil
}

// Delete removes the row for key. Idempotent - no error on miss.
func (c *SQLiteCache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, "DELETE FROM cache WHERE key = ?", key); err != nil {
		return fmt.Errorf("cache: delete: %w", err)
	}
	return nil
}

// Sweep deletes every row older than the policy's max age.
func (c *SQLiteCache) Sweep(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx, "DELETE FROM cache WHERE created_at < ?", c.policy.Cutoff(c.now()))
	if err != nil {
		return 0, fmt.Errorf("cache: sweep: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	if n > 0 {
		c.logger.Debug(ctx, "cache sweep removed expired entries", observe.Field{Key: "deleted", Value: n})
	}
	return n, nil
}

// Len returns the number of rows currently stored, expired or not.
func (c *SQLiteCache) Len(ctx context.Context) (int, error) {
	var n int
	if err := c.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM cache"); err != nil {
		return 0, fmt.Errorf("cache: count: %w", err)
	}
	return n, nil
}

// Entries returns every stored row ordered by insertion.
func (c *SQLiteCache) Entries(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	if err := c.db.SelectContext(ctx, &entries, "SELECT id, key, created_at, data FROM cache ORDER BY id"); err != nil {
		return nil, fmt.Errorf("cache: list entries: %w", err)
	}
	return entries, nil
}

// Ping verifies the database is reachable.
func (c *SQLiteCache) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Path returns the database location.
func (c *SQLiteCache) Path() string {
	return c.path
}

// Close closes the underlying database.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

var (
	_ Cache   = (*SQLiteCache)(nil)
	_ Sweeper = (*SQLiteCache)(nil)
)
