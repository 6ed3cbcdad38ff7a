package lot

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Type is the kind of vehicle a parking lot serves
type Type string

const (
	Motorcycle Type = "motorcycle"
	Car        Type = "car"
)

// HeaderWord is the column header label used by the upstream table.
// A row whose name is exactly this word is a header row, not a lot.
const HeaderWord = "停車場"

var keywords = map[Type]string{
	Motorcycle: "機車停車場",
	Car:        "汽車停車場",
}

// Types returns every known parking type
func Types() []Type {
	return []Type{Motorcycle, Car}
}

// Keyword returns the section title used for this type on the status page
func (t Type) Keyword() string {
	return keywords[t]
}

// Label returns a short human-readable label
func (t Type) Label() string {
	switch t {
	case Motorcycle:
		return "機車"
	case Car:
		return "汽車"
	default:
		return string(t)
	}
}

// ParseType parses a type name as given on the command line or in a query string.
// Both the English name and the Chinese section keyword are accepted.
func ParseType(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "motorcycle", "moto", "scooter", "機車", "機車停車場":
		return Motorcycle, nil
	case "car", "汽車", "汽車停車場":
		return Car, nil
	}
	return "", fmt.Errorf("unknown parking type: %q (must be 'motorcycle' or 'car')", s)
}

// Coordinate is a WGS84 location
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CampusCenter is used as the location of every lot; the status page has no per-lot positions.
var CampusCenter = Coordinate{Latitude: 24.149691, Longitude: 120.683974}

// Lot represents one observed parking facility
type Lot struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Type           Type       `json:"type"`
	TotalCapacity  int        `json:"total_capacity"` // 0 means unknown
	AvailableCount int        `json:"available_count"`
	LastUpdated    time.Time  `json:"last_updated"`
	Coordinate     Coordinate `json:"coordinate"`
}

// New creates a Lot with a fresh ID, located at the campus center
func New(name string, typ Type, totalCapacity, availableCount int, lastUpdated time.Time) Lot {
	return Lot{
		ID:             uuid.New(),
		Name:           name,
		Type:           typ,
		TotalCapacity:  totalCapacity,
		AvailableCount: availableCount,
		LastUpdated:    lastUpdated,
		Coordinate:     CampusCenter,
	}
}

// Known reports whether the total capacity was present in the source
func (l Lot) Known() bool {
	return l.TotalCapacity > 0
}

// Consistent reports whether the available count fits within a known capacity.
// Lots with unknown capacity are always consistent.
func (l Lot) Consistent() bool {
	if l.AvailableCount < 0 {
		return false
	}
	return !l.Known() || l.AvailableCount <= l.TotalCapacity
}

// Full reports whether no spaces are available
func (l Lot) Full() bool {
	return l.AvailableCount <= 0
}

// Key identifies the physical lot across observations (type + name).
// Use ID to identify a single observation.
func (l Lot) Key() string {
	return string(l.Type) + "|" + l.Name
}

// String returns "name: available/total", or "name: available" when capacity is unknown
func (l Lot) String() string {
	if !l.Known() {
		return fmt.Sprintf("%s: %d", l.Name, l.AvailableCount)
	}
	return fmt.Sprintf("%s: %d/%d", l.Name, l.AvailableCount, l.TotalCapacity)
}
