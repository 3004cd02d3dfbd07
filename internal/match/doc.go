// Package match reconciles scraped listing identifiers with catalog
// metadata records.
//
// It owns slug normalization, season/part/cour hint extraction, and the two
// matching entry points: slug-based matching (permissive, hint-driven) and
// title-based matching (conservative, threshold-gated). The hint extraction
// is deliberately kept as a small pure function outside the matcher's
// control flow.
package match
