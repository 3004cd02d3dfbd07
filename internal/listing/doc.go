// Package listing scrapes the external listing site's latest-episodes pages
// into structured entries.
//
// The Source interface is the contract the rest of the pipeline depends on;
// Scraper is its goquery-backed implementation, tied to one site's markup.
// CollectPages drives a multi-page scrape and tolerates individual page
// failures so one bad page never aborts a reseed.
package listing
