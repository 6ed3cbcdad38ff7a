package parse

import (
	"time"

	"github.com/nutcparking/parkspace/internal/lot"
)

// Assemble groups a flat cell stream into lots of the given type.
//
// A name cell starts a new lot and value cells attach numbers to it. When a lot
// is closed, the last number is the available count. The first number is the
// total capacity only if at least two numbers were seen; otherwise capacity is
// reported as 0 (unknown). Lots with an empty name, the bare header word, or no
// numbers at all are dropped.
func Assemble(cells []Cell, typ lot.Type, capturedAt time.Time) []lot.Lot {
	lots := make([]lot.Lot, 0)

	var (
		name    string
		pending bool
		values  []int
	)

	flush := func() {
		if !pending {
			return
		}
		pending = false

		if name == "" || name == lot.HeaderWord || len(values) == 0 {
			return
		}

		available := values[len(values)-1]
		total := 0
		if len(values) >= 2 {
			total = values[0]
		}

		lots = append(lots, lot.New(name, typ, total, available, capturedAt))
	}

	for _, c := range cells {
		switch c.Role {
		case RoleName:
			flush()
			name = Clean(c.Content)
			values = values[:0]
			pending = true
		case RoleValue:
			if n, ok := CleanInt(c.Content); ok {
				values = append(values, n)
			}
		}
	}

	// the last lot has no following name cell to close it
	flush()

	return lots
}
