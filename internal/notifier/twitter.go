package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"
)

const maxStatusLength = 280

// Credentials are the OAuth1 keys of the posting account
type Credentials struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
}

// TwitterNotifier posts availability messages to Twitter
type TwitterNotifier struct {
	client *twitter.Client
}

// NewTwitterNotifier creates a notifier signing requests with creds
func NewTwitterNotifier(creds Credentials) (*TwitterNotifier, error) {
	if creds.APIKey == "" || creds.APISecret == "" || creds.AccessToken == "" || creds.AccessSecret == "" {
		return nil, errors.New("missing required Twitter credentials")
	}

	config := oauth1.NewConfig(creds.APIKey, creds.APISecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)
	return NewTwitterNotifierWithClient(config.Client(oauth1.NoContext, token)), nil
}

// NewTwitterNotifierWithClient uses an already authenticated HTTP client
func NewTwitterNotifierWithClient(httpClient *http.Client) *TwitterNotifier {
	return &TwitterNotifier{client: twitter.NewClient(httpClient)}
}

// Notify posts the message as one status update
func (n *TwitterNotifier) Notify(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, _, err := n.client.Statuses.Update(formatStatus(msg), nil)
	if err != nil {
		return fmt.Errorf("failed to post status: %w", err)
	}
	return nil
}

// formatStatus formats a message as a status update of at most 280 characters
func formatStatus(msg Message) string {
	status := "🅿️ " + msg.Title + "\n\n" + msg.Body + "\n\n#NUTC #停車位"

	runes := []rune(status)
	if len(runes) > maxStatusLength {
		status = string(runes[:maxStatusLength-3]) + "..."
	}
	return status
}
