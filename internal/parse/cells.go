package parse

import (
	"regexp"
	"strings"
)

// Role tells the assembler what a table cell holds
type Role int

const (
	RoleName Role = iota + 1
	RoleValue
)

func (r Role) String() string {
	switch r {
	case RoleName:
		return "name"
	case RoleValue:
		return "value"
	default:
		return "unknown"
	}
}

// Cell is one classified table cell with its raw inner content
type Cell struct {
	Role    Role
	Content string
}

var (
	cellPattern  = regexp.MustCompile(`(?is)<t[dh]\b([^>]*)>(.*?)</t[dh]\s*>`)
	classPattern = regexp.MustCompile(`(?i)\bclass\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s"'>]+))`)
)

// ExtractCells scans a section for td/th elements carrying a class attribute and
// returns the recognised ones in document order. The section must already be
// normalized; cells whose class is not a lot name or value class are skipped.
func ExtractCells(section string) []Cell {
	cells := make([]Cell, 0)

	for _, m := range cellPattern.FindAllStringSubmatch(section, -1) {
		class, ok := classAttribute(m[1])
		if !ok {
			continue
		}

		role, ok := classify(class)
		if !ok {
			continue
		}

		cells = append(cells, Cell{Role: role, Content: m[2]})
	}

	return cells
}

// classAttribute extracts the class value from a tag's attribute text
func classAttribute(attrs string) (string, bool) {
	m := classPattern.FindStringSubmatch(attrs)
	if m == nil {
		return "", false
	}
	for _, v := range m[1:] {
		if v != "" {
			return v, true
		}
	}
	return "", true
}

// classify maps the upstream class names to cell roles.
// partHead marks a lot name; partAll (cars) and partMotoAll (motorcycles) mark counts.
func classify(class string) (Role, bool) {
	switch {
	case strings.Contains(class, "partHead"):
		return RoleName, true
	case strings.Contains(class, "partAll"), strings.Contains(class, "partMotoAll"):
		return RoleValue, true
	}
	return 0, false
}
