package parse

import (
	"fmt"
	"sort"
	"time"

	"github.com/nutcparking/parkspace/internal/lot"
)

// Outcome is the result of parsing one status page
type Outcome struct {
	Lots    []lot.Lot  // all lots, sections in document order
	Found   []lot.Type // types whose section was located
	Missing []lot.Type // types whose section keyword did not occur
	Errors  []error    // sections abandoned after an unexpected failure
}

// Parser runs the parse pipeline for every known parking type
type Parser struct {
	markup Markup
}

// New creates a Parser. A nil markup selects RegexMarkup.
func New(markup Markup) *Parser {
	if markup == nil {
		markup = RegexMarkup{}
	}
	return &Parser{markup: markup}
}

// Markup returns the markup implementation in use
func (p *Parser) Markup() Markup {
	return p.markup
}

type parsedSection struct {
	offset int
	lots   []lot.Lot
}

// Parse extracts every lot from a raw status page. Each type's section is
// located independently, so the page may list them in any order; the returned
// lots follow the order of the sections in the document.
func (p *Parser) Parse(raw string, capturedAt time.Time) Outcome {
	document := Normalize(raw)

	var (
		out      Outcome
		sections []parsedSection
	)

	for _, typ := range lot.Types() {
		lots, offset, ok, err := p.parseSection(document, typ, capturedAt)
		switch {
		case err != nil:
			out.Errors = append(out.Errors, err)
		case !ok:
			out.Missing = append(out.Missing, typ)
		default:
			out.Found = append(out.Found, typ)
			sections = append(sections, parsedSection{offset: offset, lots: lots})
		}
	}

	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].offset < sections[j].offset
	})

	out.Lots = make([]lot.Lot, 0)
	for _, s := range sections {
		out.Lots = append(out.Lots, s.lots...)
	}

	return out
}

// parseSection handles one type. A panic while matching is turned into an error
// so that the other section can still be parsed.
func (p *Parser) parseSection(document string, typ lot.Type, capturedAt time.Time) (lots []lot.Lot, offset int, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			lots, offset, ok = nil, -1, false
			err = fmt.Errorf("parsing %s section: %v", typ, r)
		}
	}()

	var section string
	section, offset, ok = p.markup.Locate(document, typ.Keyword())
	if !ok {
		return nil, -1, false, nil
	}

	return Assemble(p.markup.Cells(section), typ, capturedAt), offset, true, nil
}
