// Package ratelimit provides two request throttles used across the toolkit:
//
// The keyed limiter (Check) is an in-process fixed-window counter bucketed
// by client identifier, used to protect sensitive endpoints from abuse.
// Windows are anchored to the first request of each identifier and reset
// only at window boundaries. Counters live for the lifetime of the process;
// a restart clears them. A background sweep bounds memory growth by
// deleting expired entries.
//
// The politeness limiter (Politeness) throttles outbound scraping traffic
// against a single target site: a sliding one-minute window plus a minimum
// inter-request delay that smooths bursts.
//
// Concurrency policy for the keyed limiter: the read-modify-write in Check
// is serialized under a mutex, so the count for an identifier can never
// exceed MaxRequests regardless of how many handlers call in concurrently.
package ratelimit
