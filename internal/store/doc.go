// Package store provides the shared key-value and list substrate beneath
// the cache layers and the slug queue.
//
// Three backends implement the same Store interface: Redis for production,
// an embedded SQLite database for single-binary deployments, and an
// in-memory store for tests. Cache semantics (namespacing, decode-or-miss)
// live above this package; the store only moves strings.
package store
