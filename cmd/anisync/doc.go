// Command anisync talks to a running anisyncd over its HTTP API: inspect the
// aggregate view and queue, trigger syncs, and manage configuration.
package main
