// Package cli implements the command-line interface for parkspace.
//
// The cli package provides the Cobra-based CLI with one-shot lookups (lots),
// change tracking (watch), the HTTP server (serve), availability
// notifications (notify) and single-lot commute tracking (commute). Output is
// text or JSON. It wires the config, scraper, storage, worker and api
// packages together.
package cli
