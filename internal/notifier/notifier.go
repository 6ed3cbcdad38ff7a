package notifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/nutcparking/parkspace/internal/lot"
)

const (
	// Title heads every availability message
	Title = "附近機車停車位資訊"

	// AllFullMessage is the body when no motorcycle lot has a free space
	AllFullMessage = "目前所有機車停車場皆已滿位。"

	// DefaultLimit is the number of lots named in one message
	DefaultLimit = 4
)

// Message is one availability notification
type Message struct {
	Title string    `json:"title"`
	Body  string    `json:"body"`
	Lots  []lot.Lot `json:"lots"`
}

// Notifier defines the interface for delivering availability messages
type Notifier interface {
	// Notify delivers one message
	Notify(ctx context.Context, msg Message) error
}

// Summarize lists the motorcycle lots that have free spaces, in document
// order, naming at most limit of them as "name: count" joined by ", ".
// A limit of 0 or less uses DefaultLimit.
func Summarize(lots []lot.Lot, limit int) Message {
	if limit <= 0 {
		limit = DefaultLimit
	}

	open := make([]lot.Lot, 0, limit)
	for _, l := range lot.OfType(lots, lot.Motorcycle) {
		if l.AvailableCount > 0 {
			open = append(open, l)
		}
	}
	open = lot.Top(open, limit)

	msg := Message{Title: Title, Lots: open}
	if len(open) == 0 {
		msg.Body = AllFullMessage
		return msg
	}

	parts := make([]string, len(open))
	for i, l := range open {
		parts[i] = fmt.Sprintf("%s: %d", l.Name, l.AvailableCount)
	}
	msg.Body = strings.Join(parts, ", ")
	return msg
}
