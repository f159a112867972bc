// Package scraper orchestrates the lead acquisition pipeline: for each
// target company it runs the locator, search and social strategies in
// sequence, deduplicates their findings by email, and merges the
// per-strategy outcomes into one result. Individual strategy failures are
// recorded and do not abort the run; the run succeeds if any strategy does.
package scraper
