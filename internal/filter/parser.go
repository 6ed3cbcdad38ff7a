package filter

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/nutcparking/parkspace/internal/lot"
)

// FromQuery builds a filter from URL query parameters.
//
// Supported parameters:
//   - type: "motorcycle", "car" or their Chinese labels; repeatable or comma separated
//   - name: name substring; repeatable
//   - min_available: non-negative integer
//   - known_capacity: boolean
//
// Unknown parameters are ignored.
func FromQuery(values url.Values) (*Filter, error) {
	f := NewFilter()

	for _, raw := range values["type"] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			typ, err := lot.ParseType(part)
			if err != nil {
				return nil, err
			}
			f.Types = appendType(f.Types, typ)
		}
	}

	for _, name := range values["name"] {
		if name = strings.TrimSpace(name); name != "" {
			f.Names = append(f.Names, name)
		}
	}

	if raw := strings.TrimSpace(values.Get("min_available")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid min_available: %q (must be a non-negative integer)", raw)
		}
		f.MinAvailable = n
	}

	if raw := strings.TrimSpace(values.Get("known_capacity")); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid known_capacity: %q", raw)
		}
		f.KnownCapacity = b
	}

	return f, nil
}

// ParseTypes parses a list of type names, dropping duplicates
func ParseTypes(names []string) ([]lot.Type, error) {
	types := make([]lot.Type, 0, len(names))
	for _, name := range names {
		typ, err := lot.ParseType(name)
		if err != nil {
			return nil, err
		}
		types = appendType(types, typ)
	}
	return types, nil
}

func appendType(types []lot.Type, typ lot.Type) []lot.Type {
	for _, t := range types {
		if t == typ {
			return types
		}
	}
	return append(types, typ)
}
