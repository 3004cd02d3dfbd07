// Package server exposes the HTTP read surface: the home aggregate with its
// layered fallback, worker status, and sync/cache control endpoints.
package server
