// Package filter narrows a lot list down to what a user asked for.
//
// Criteria combine with AND; values within one criterion combine with OR:
//   - Types (motorcycle, car)
//   - Names (substring matching, case-insensitive)
//   - MinAvailable (at least this many free spaces)
//   - KnownCapacity (only lots whose total capacity is reported)
//
// Example usage:
//
//	f := filter.NewFilter()
//	f.Types = []lot.Type{lot.Motorcycle}
//	f.MinAvailable = 1
//
//	filtered := f.Apply(lots)
package filter

import (
	"fmt"
	"strings"

	"github.com/nutcparking/parkspace/internal/lot"
)

// Filter represents lot filtering criteria
type Filter struct {
	// Type filtering
	Types []lot.Type `json:"types,omitempty"`

	// Name filtering (case-insensitive substring match)
	Names []string `json:"names,omitempty"`

	// Minimum available spaces; 0 disables the check
	MinAvailable int `json:"min_available,omitempty"`

	// Drop lots whose capacity is unknown
	KnownCapacity bool `json:"known_capacity,omitempty"`
}

// NewFilter creates a new empty filter with no active criteria.
// The filter will match all lots until criteria are added.
func NewFilter() *Filter {
	return &Filter{
		Types: []lot.Type{},
		Names: []string{},
	}
}

// IsEmpty checks if the filter has any active criteria.
func (f *Filter) IsEmpty() bool {
	return len(f.Types) == 0 &&
		len(f.Names) == 0 &&
		f.MinAvailable <= 0 &&
		!f.KnownCapacity
}

// Matches checks if a lot passes all active criteria.
// An empty filter matches all lots.
func (f *Filter) Matches(l lot.Lot) bool {
	if f.IsEmpty() {
		return true
	}

	if len(f.Types) > 0 {
		matched := false
		for _, typ := range f.Types {
			if l.Type == typ {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if len(f.Names) > 0 {
		matched := false
		nameLower := strings.ToLower(l.Name)
		for _, name := range f.Names {
			if strings.Contains(nameLower, strings.ToLower(name)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if f.MinAvailable > 0 && l.AvailableCount < f.MinAvailable {
		return false
	}

	if f.KnownCapacity && !l.Known() {
		return false
	}

	return true
}

// Apply returns the matching lots in their original order.
// The result is never nil, so an empty match encodes as [] in JSON.
func (f *Filter) Apply(lots []lot.Lot) []lot.Lot {
	filtered := make([]lot.Lot, 0, len(lots))
	for _, l := range lots {
		if f.Matches(l) {
			filtered = append(filtered, l)
		}
	}
	return filtered
}

// String returns a human-readable description of the active filter criteria.
// Format: "Types: motorcycle | Names: 中技 | At least 5 available"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string

	if len(f.Types) > 0 {
		types := make([]string, len(f.Types))
		for i, t := range f.Types {
			types[i] = string(t)
		}
		parts = append(parts, fmt.Sprintf("Types: %s", strings.Join(types, ", ")))
	}

	if len(f.Names) > 0 {
		parts = append(parts, fmt.Sprintf("Names: %s", strings.Join(f.Names, ", ")))
	}

	if f.MinAvailable > 0 {
		parts = append(parts, fmt.Sprintf("At least %d available", f.MinAvailable))
	}

	if f.KnownCapacity {
		parts = append(parts, "Known capacity only")
	}

	return strings.Join(parts, " | ")
}

// Clone creates a deep copy of the filter.
func (f *Filter) Clone() *Filter {
	clone := &Filter{
		MinAvailable:  f.MinAvailable,
		KnownCapacity: f.KnownCapacity,
		Types:         make([]lot.Type, len(f.Types)),
		Names:         make([]string, len(f.Names)),
	}
	copy(clone.Types, f.Types)
	copy(clone.Names, f.Names)
	return clone
}
