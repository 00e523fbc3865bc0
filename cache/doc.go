// Package cache provides the result cache behind the web search tool.
//
// Payloads are keyed by a deterministic SHA-256 fingerprint of a logical
// request (a namespace plus a canonicalized parameter map) and expire a fixed
// max age after they were written. Expired entries are swept lazily before
// every lookup.
//
// Backends implement the byte-level Cache interface:
//
//   - SQLiteCache: a single-table SQLite database (the default). With
//     Ephemeral set, the database file is recreated on open.
//   - MemoryCache: a map guarded by a mutex, for tests and single-shot runs.
//   - RedisCache: a Redis server, where key expiry replaces the sweep.
//
// Store layers JSON encoding and key derivation on top of a backend, and
// CacheMiddleware implements cache-aside around a loader function: loader
// errors are returned to the caller and never cached.
package cache
