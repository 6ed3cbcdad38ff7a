// Package parse turns the campus parking status page into typed lot records.
//
// The page is not an API: it is a styled HTML table whose class names, cell tags
// and section layout have drifted over time. Parsing therefore runs as a chain of
// small, independently testable steps:
//
//	raw text -> Normalize -> LocateSection (per type) -> ExtractCells -> Assemble
//
// Markup matching (locating a section and pulling cells out of it) sits behind the
// Markup interface. RegexMarkup is the default; DOMMarkup does the same job with
// goquery. Assemble only sees the flat cell stream, so a markup change never
// touches the grouping rules.
//
// Nothing in this package fails hard. Unrecognised cells are skipped, a missing
// section yields zero lots of that type, and rows without a number are dropped.
package parse
