package notifier

import (
	"context"
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

// DryRunNotifier prints what would be posted without actually posting
type DryRunNotifier struct {
	out io.Writer
}

// NewDryRunNotifier creates a dry-run notifier writing to out (stdout when nil)
func NewDryRunNotifier(out io.Writer) *DryRunNotifier {
	if out == nil {
		out = os.Stdout
	}
	return &DryRunNotifier{out: out}
}

// Notify prints the message
func (n *DryRunNotifier) Notify(_ context.Context, msg Message) error {
	text := formatStatus(msg)
	_, err := fmt.Fprintf(n.out, "--- %s ---\n%s\n\n(Length: %d characters)\n\n", msg.Title, text, utf8.RuneCountInString(text))
	return err
}
