package notifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutcparking/parkspace/internal/lot"
)

func TestFormatStatus(t *testing.T) {
	tests := []struct {
		name     string
		msg      Message
		contains []string
	}{
		{
			name:     "spaces available",
			msg:      Message{Title: Title, Body: "中技 B3: 120, 民生校區: 7"},
			contains: []string{Title, "中技 B3: 120", "#NUTC"},
		},
		{
			name:     "all full",
			msg:      Message{Title: Title, Body: AllFullMessage},
			contains: []string{AllFullMessage, "#停車位"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := formatStatus(tt.msg)
			for _, s := range tt.contains {
				assert.Contains(t, status, s)
			}
			assert.LessOrEqual(t, utf8.RuneCountInString(status), maxStatusLength)
		})
	}
}

func TestFormatStatus_Truncates(t *testing.T) {
	status := formatStatus(Message{Title: Title, Body: strings.Repeat("停", 400)})

	assert.Equal(t, maxStatusLength, utf8.RuneCountInString(status))
	assert.True(t, strings.HasSuffix(status, "..."))
	assert.True(t, utf8.ValidString(status))
}

func TestNewTwitterNotifier_MissingCredentials(t *testing.T) {
	_, err := NewTwitterNotifier(Credentials{APIKey: "k", APISecret: "s"})
	assert.Error(t, err)

	n, err := NewTwitterNotifier(Credentials{APIKey: "k", APISecret: "s", AccessToken: "t", AccessSecret: "a"})
	require.NoError(t, err)
	assert.NotNil(t, n)
}

// rewriteTransport sends every request to a test server
type rewriteTransport struct {
	target *url.URL
}

func (rt rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = rt.target.Scheme
	req.URL.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func testTwitterNotifier(t *testing.T, handler http.HandlerFunc) *TwitterNotifier {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	target, err := url.Parse(server.URL)
	require.NoError(t, err)
	return NewTwitterNotifierWithClient(&http.Client{Transport: rewriteTransport{target: target}})
}

func TestTwitterNotifier_Notify(t *testing.T) {
	statuses := make(chan string, 1)
	n := testTwitterNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/1.1/statuses/update.json" {
			http.NotFound(w, r)
			return
		}
		_ = r.ParseForm()
		statuses <- r.PostForm.Get("status")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 1, "text": "ok"}`))
	})

	msg := Summarize([]lot.Lot{lot.New("中技 B3", lot.Motorcycle, 0, 120, at)}, 0)
	require.NoError(t, n.Notify(context.Background(), msg))

	status := <-statuses
	assert.Contains(t, status, "中技 B3: 120")
	assert.Contains(t, status, Title)
}

func TestTwitterNotifier_APIError(t *testing.T) {
	n := testTwitterNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"errors": [{"code": 187, "message": "Status is a duplicate."}]}`))
	})

	err := n.Notify(context.Background(), Message{Title: Title, Body: AllFullMessage})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to post status")
}

func TestTwitterNotifier_CanceledContext(t *testing.T) {
	n := testTwitterNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent")
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, n.Notify(ctx, Message{}), context.Canceled)
}
