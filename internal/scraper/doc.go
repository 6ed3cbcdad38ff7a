// Package scraper fetches the campus parking status page and turns it into lots.
//
// A Scraper issues one GET per Fetch with browser-like headers, decodes the body
// according to its declared or sniffed charset, and hands the text to a
// parse.Parser. Failures are reported as typed errors (NetworkError,
// HTTPStatusError, DecodeError, EmptyResultError) so callers can tell a dead
// upstream from a page whose layout changed. A missing section is not an error;
// it is reported as a SectionNotFoundError warning on the Result.
//
// An optional circuit breaker stops hammering the upstream after repeated
// failures. Fetch never retries on its own.
package scraper
