// Package queue provides the durable FIFO of listing identifiers that feeds
// the enrichment worker.
package queue
