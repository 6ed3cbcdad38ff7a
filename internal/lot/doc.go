// Package lot provides the parking lot record produced by each availability fetch.
//
// A Lot is one observation of one parking facility: it carries a fresh UUID per
// observation, so the same physical lot fetched twice yields two distinct records.
// The package also provides collection helpers (filtering by type, ordering for
// display) and snapshot diffing keyed by lot type and name.
package lot
