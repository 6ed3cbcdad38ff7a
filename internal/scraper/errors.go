package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/nutcparking/parkspace/internal/lot"
)

// ErrCircuitOpen is wrapped in a NetworkError when the circuit breaker rejects a fetch
var ErrCircuitOpen = errors.New("upstream circuit breaker is open")

// NetworkError is returned when the upstream could not be reached
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPStatusError is returned when the upstream answers with anything but 200
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected status code from %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// DecodeError is returned when the body cannot be turned into UTF-8 text
type DecodeError struct {
	Charset string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Charset == "" {
		return fmt.Sprintf("decoding body: %v", e.Err)
	}
	return fmt.Sprintf("decoding %s body: %v", e.Charset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// SectionNotFoundError is a warning: the page has no section for Type
type SectionNotFoundError struct {
	Type lot.Type
}

func (e *SectionNotFoundError) Error() string {
	return fmt.Sprintf("section %q not found", e.Type.Keyword())
}

// EmptyResultError is returned when the page was fetched and parsed but yielded
// no lots. BothSectionsMissing means no section keyword occurred at all, which
// usually means the upstream layout changed or the site is in maintenance.
type EmptyResultError struct {
	BothSectionsMissing bool
	Missing             []lot.Type
}

func (e *EmptyResultError) Error() string {
	if e.BothSectionsMissing {
		return "no parking sections found in page"
	}
	if len(e.Missing) > 0 {
		names := make([]string, len(e.Missing))
		for i, t := range e.Missing {
			names[i] = string(t)
		}
		return fmt.Sprintf("no parking lots parsed (missing sections: %s)", strings.Join(names, ", "))
	}
	return "no parking lots parsed"
}

// Error kinds, used as metric labels and in API responses
const (
	KindNone        = ""
	KindNetwork     = "network"
	KindTimeout     = "timeout"
	KindCanceled    = "canceled"
	KindCircuitOpen = "circuit_open"
	KindHTTPStatus  = "http_status"
	KindDecode      = "decode"
	KindEmpty       = "empty"
	KindUnknown     = "unknown"
)

// Kind classifies an error returned by Fetch
func Kind(err error) string {
	var (
		statusErr *HTTPStatusError
		decodeErr *DecodeError
		emptyErr  *EmptyResultError
		netErr    *NetworkError
	)

	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrCircuitOpen):
		return KindCircuitOpen
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.As(err, &statusErr):
		return KindHTTPStatus
	case errors.As(err, &decodeErr):
		return KindDecode
	case errors.As(err, &emptyErr):
		return KindEmpty
	case errors.As(err, &netErr):
		return KindNetwork
	}
	return KindUnknown
}

// UserMessage returns the text shown to a person when a refresh fails
func UserMessage(err error) string {
	switch Kind(err) {
	case KindNone:
		return ""
	case KindCircuitOpen:
		return "暫時無法取得最新車位資訊，請稍後再試"
	case KindCanceled:
		return "已取消"
	case KindTimeout:
		return "連線逾時"
	case KindHTTPStatus:
		var statusErr *HTTPStatusError
		errors.As(err, &statusErr)
		return fmt.Sprintf("連線失敗 (%d)", statusErr.StatusCode)
	case KindNetwork:
		return "連線失敗"
	case KindDecode:
		return "無法讀取資料"
	case KindEmpty:
		var emptyErr *EmptyResultError
		errors.As(err, &emptyErr)
		if emptyErr.BothSectionsMissing {
			return "找不到停車場資料，網站格式可能已變更"
		}
		return "目前沒有停車場資料"
	}
	return "暫時無法取得最新車位資訊"
}
