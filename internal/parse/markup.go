package parse

import (
	"fmt"
	"strings"
)

// Markup finds sections and table cells in a normalized document.
// Implementations only decide where things are; grouping cells into lots is
// always done by Assemble.
type Markup interface {
	// Locate returns the section belonging to keyword and the offset of keyword
	// in the document, or ok=false when the section is absent.
	Locate(document, keyword string) (section string, offset int, ok bool)

	// Cells returns the classified cells of a section in document order.
	Cells(section string) []Cell

	// Name identifies the implementation in logs and configuration.
	Name() string
}

// RegexMarkup matches sections and cells with regular expressions
type RegexMarkup struct{}

func (RegexMarkup) Locate(document, keyword string) (string, int, bool) {
	return LocateSection(document, keyword)
}

func (RegexMarkup) Cells(section string) []Cell {
	return ExtractCells(section)
}

func (RegexMarkup) Name() string { return "regex" }

// MarkupByName returns the Markup registered under name ("regex" or "dom").
// An empty name selects the regex markup.
func MarkupByName(name string) (Markup, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "regex":
		return RegexMarkup{}, nil
	case "dom", "goquery":
		return DOMMarkup{}, nil
	}
	return nil, fmt.Errorf("unknown markup: %q (must be 'regex' or 'dom')", name)
}
