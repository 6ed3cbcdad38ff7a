package lot

import (
	"sort"
	"strconv"
	"time"
)

// ChangeType describes what changed between two observations of a lot
type ChangeType string

const (
	ChangeNew       ChangeType = "new"
	ChangeRemoved   ChangeType = "removed"
	ChangeAvailable ChangeType = "available"
	ChangeCapacity  ChangeType = "capacity"
)

// Change represents a difference detected between two snapshots
type Change struct {
	Key        string     `json:"key"`
	Name       string     `json:"name"`
	Type       Type       `json:"type"`
	ChangeType ChangeType `json:"change_type"`
	OldValue   string     `json:"old_value"`
	NewValue   string     `json:"new_value"`
	DetectedAt time.Time  `json:"detected_at"`
}

// Diff compares two snapshots and returns the detected changes.
// Lots are matched by Key; when a key repeats within a snapshot the first
// occurrence is used. Changes are sorted by type, then name, then change type.
func Diff(previous, current []Lot) []Change {
	now := time.Now().UTC()
	prevByKey := index(previous)
	currByKey := index(current)

	var changes []Change

	for key, curr := range currByKey {
		prev, exists := prevByKey[key]
		if !exists {
			changes = append(changes, newChange(curr, ChangeNew, "", strconv.Itoa(curr.AvailableCount), now))
			continue
		}

		if prev.AvailableCount != curr.AvailableCount {
			changes = append(changes, newChange(curr, ChangeAvailable,
				strconv.Itoa(prev.AvailableCount), strconv.Itoa(curr.AvailableCount), now))
		}

		if prev.TotalCapacity != curr.TotalCapacity {
			changes = append(changes, newChange(curr, ChangeCapacity,
				strconv.Itoa(prev.TotalCapacity), strconv.Itoa(curr.TotalCapacity), now))
		}
	}

	for key, prev := range prevByKey {
		if _, exists := currByKey[key]; !exists {
			changes = append(changes, newChange(prev, ChangeRemoved, strconv.Itoa(prev.AvailableCount), "", now))
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		if changes[i].Type != changes[j].Type {
			return typeRank(changes[i].Type) < typeRank(changes[j].Type)
		}
		if changes[i].Name != changes[j].Name {
			return changes[i].Name < changes[j].Name
		}
		return changes[i].ChangeType < changes[j].ChangeType
	})

	return changes
}

func index(lots []Lot) map[string]Lot {
	byKey := make(map[string]Lot, len(lots))
	for _, l := range lots {
		if _, seen := byKey[l.Key()]; !seen {
			byKey[l.Key()] = l
		}
	}
	return byKey
}

func newChange(l Lot, ct ChangeType, oldValue, newValue string, at time.Time) Change {
	return Change{
		Key:        l.Key(),
		Name:       l.Name,
		Type:       l.Type,
		ChangeType: ct,
		OldValue:   oldValue,
		NewValue:   newValue,
		DetectedAt: at,
	}
}
