// Package jikan wraps the Jikan catalog API used to enrich scraped listing
// entries with canonical metadata.
//
// The Client exposes title search, slug-derived search, and ID lookup, maps
// the API's status strings onto the pipeline's status enum, and rate-limits
// itself. The Searcher interface is what the worker consumes, so tests can
// substitute a stub catalog.
package jikan
