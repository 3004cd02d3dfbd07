// Package daemon assembles the store, worker, scheduler, and API server
// into a single lifecycle with flock-based locking to prevent multiple
// instances from sharing one substrate.
package daemon
