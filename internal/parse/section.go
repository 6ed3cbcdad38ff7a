package parse

import (
	"regexp"
	"strings"
)

// sectionMarker matches the start of the next section: an element whose class
// names a section title, or a top-level heading.
var sectionMarker = regexp.MustCompile(`(?i)<[a-z][a-z0-9]*\s[^>]*\bclass\s*=\s*["']?[^"'>]*section[_-]?title|<h[1-3][\s/>]`)

// LocateSection returns the part of document that belongs to keyword: the text
// after the first occurrence of keyword up to the next section marker, or to the
// end of the document. offset is the position of keyword in document. ok is
// false when keyword does not occur.
func LocateSection(document, keyword string) (section string, offset int, ok bool) {
	if keyword == "" {
		return "", -1, false
	}

	offset = strings.Index(document, keyword)
	if offset < 0 {
		return "", -1, false
	}

	section = document[offset+len(keyword):]
	if loc := sectionMarker.FindStringIndex(section); loc != nil {
		section = section[:loc[0]]
	}

	return section, offset, true
}
