package parse

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DOMMarkup extracts cells by parsing the section with an HTML5 parser instead
// of matching tags textually. It tolerates unclosed cells and attribute orders
// the regular expressions do not expect. Section boundaries are the same as
// RegexMarkup's.
type DOMMarkup struct{}

func (DOMMarkup) Locate(document, keyword string) (string, int, bool) {
	return LocateSection(document, keyword)
}

// Cells parses the section as the content of a table, so cells keep their
// meaning even when the section starts in the middle of one.
func (DOMMarkup) Cells(section string) []Cell {
	cells := make([]Cell, 0)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<table>" + section + "</table>"))
	if err != nil {
		return cells
	}

	doc.Find("[class]").Each(func(_ int, sel *goquery.Selection) {
		switch goquery.NodeName(sel) {
		case "td", "th":
		default:
			return
		}

		class, _ := sel.Attr("class")
		role, ok := classify(class)
		if !ok {
			return
		}

		cells = append(cells, Cell{Role: role, Content: sel.Text()})
	})

	return cells
}

func (DOMMarkup) Name() string { return "dom" }
