// Package cache layers the namespaced, TTL-bounded caches and the derived
// home aggregate over the shared key-value substrate.
package cache
