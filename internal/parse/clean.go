package parse

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	asidePattern = regexp.MustCompile(`[(（][^)）]*[)）]`)

	layoutWhitespace = strings.NewReplacer("\r", "", "\n", "", "\t", "")
	tagWhitespace    = regexp.MustCompile(`[\r\n\t]+`)
)

// Clean strips markup noise from a cell fragment: HTML tags, parenthetical
// asides in ASCII or full-width brackets, literal &nbsp; entities and
// surrounding whitespace. Clean is idempotent.
func Clean(raw string) string {
	s := tagPattern.ReplaceAllString(raw, "")
	s = asidePattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	return strings.TrimSpace(s)
}

// CleanInt cleans the fragment and parses it as a non-negative base-10 integer.
// Full-width digits are accepted. The second result is false when the fragment
// holds no number, which is different from holding the number zero.
func CleanInt(raw string) (int, bool) {
	s := width.Narrow.String(Clean(raw))
	if s == "" {
		return 0, false
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Normalize removes raw line breaks and tabs from a document so that elements
// with wrapped attributes can be matched on a single line. Inside a tag a line
// break separates attributes, so there it becomes a single space.
func Normalize(document string) string {
	document = tagPattern.ReplaceAllStringFunc(document, func(tag string) string {
		return tagWhitespace.ReplaceAllString(tag, " ")
	})
	return layoutWhitespace.Replace(document)
}
