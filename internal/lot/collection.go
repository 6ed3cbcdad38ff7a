package lot

import (
	"sort"
	"strings"
)

// SortOrder represents the available ordering options for a lot list
type SortOrder string

const (
	SortByDocument  SortOrder = "document"
	SortByAvailable SortOrder = "available"
	SortByName      SortOrder = "name"
	SortByType      SortOrder = "type"
)

// ParseSortOrder validates a sort order name. An empty string means document order.
func ParseSortOrder(s string) (SortOrder, bool) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortByDocument:
		return SortByDocument, true
	case SortByAvailable:
		return SortByAvailable, true
	case SortByName:
		return SortByName, true
	case SortByType:
		return SortByType, true
	}
	return "", false
}

// Sorted returns a copy of lots in the requested order. Sorting is stable, so
// lots that compare equal keep their document order.
func Sorted(lots []Lot, order SortOrder) []Lot {
	out := make([]Lot, len(lots))
	copy(out, lots)

	switch order {
	case SortByAvailable:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].AvailableCount > out[j].AvailableCount
		})
	case SortByName:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Name < out[j].Name
		})
	case SortByType:
		sort.SliceStable(out, func(i, j int) bool {
			return typeRank(out[i].Type) < typeRank(out[j].Type)
		})
	}

	return out
}

func typeRank(t Type) int {
	for i, known := range Types() {
		if t == known {
			return i
		}
	}
	return len(Types())
}

// OfType returns the lots of the given type, in their original order
func OfType(lots []Lot, typ Type) []Lot {
	out := make([]Lot, 0, len(lots))
	for _, l := range lots {
		if l.Type == typ {
			out = append(out, l)
		}
	}
	return out
}

// Find returns the first lot with exactly the given name
func Find(lots []Lot, name string) (Lot, bool) {
	for _, l := range lots {
		if l.Name == name {
			return l, true
		}
	}
	return Lot{}, false
}

// Top returns at most n lots
func Top(lots []Lot, n int) []Lot {
	if n < 0 || n >= len(lots) {
		return lots
	}
	return lots[:n]
}

// CountByType counts lots per type
func CountByType(lots []Lot) map[Type]int {
	counts := make(map[Type]int)
	for _, l := range lots {
		counts[l.Type]++
	}
	return counts
}

// AvailableByType sums the available spaces per type
func AvailableByType(lots []Lot) map[Type]int {
	sums := make(map[Type]int)
	for _, l := range lots {
		sums[l.Type] += l.AvailableCount
	}
	return sums
}
