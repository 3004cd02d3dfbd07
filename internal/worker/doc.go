// Package worker drives the enrichment pipeline: it drains the slug queue,
// matches each listing identifier against the catalog, and maintains the
// integration cache and home aggregate. A scheduler keeps the queue seeded
// from the listing site. All sync passes share a single-flight gate.
package worker
