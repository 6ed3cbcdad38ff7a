package scraper

import (
	"errors"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
)

var errInvalidUTF8 = errors.New("body is not valid UTF-8")

// decode turns a response body into text. The charset comes from a BOM, the
// Content-Type header or a meta tag; a page that declares nothing must already
// be UTF-8.
func decode(body []byte, contentType string) (string, error) {
	enc, name, certain := charset.DetermineEncoding(body, contentType)

	switch {
	case name == "utf-8":
		if !utf8.Valid(body) {
			return "", &DecodeError{Charset: name, Err: errInvalidUTF8}
		}
		return string(body), nil
	case name == "windows-1252" && !certain:
		// nothing was declared; windows-1252 is only the HTML fallback guess
		if !utf8.Valid(body) {
			return "", &DecodeError{Err: errInvalidUTF8}
		}
		return string(body), nil
	}

	text, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", &DecodeError{Charset: name, Err: err}
	}
	if !utf8.Valid(text) {
		return "", &DecodeError{Charset: name, Err: errInvalidUTF8}
	}
	return string(text), nil
}
