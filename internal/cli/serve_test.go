package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutcparking/parkspace/internal/api"
	"github.com/nutcparking/parkspace/internal/metrics"
	"github.com/nutcparking/parkspace/internal/notifier"
	"github.com/nutcparking/parkspace/internal/scraper"
	"github.com/nutcparking/parkspace/internal/storage"
	"github.com/nutcparking/parkspace/internal/worker"
)

// syncBuffer is a bytes.Buffer safe for one writer goroutine and one reader
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestServer_Run(t *testing.T) {
	upstream := newUpstream(t, fixture(t, "parking_status.html"))

	sc := scraper.New(scraper.WithURL(upstream.URL), scraper.WithBreaker(scraper.DefaultBreakerConfig()))
	m := metrics.New()
	store := storage.New(scraper.UserMessage)
	refresher := worker.New(sc, store, worker.WithInterval(time.Minute), worker.WithMetrics(m))
	notes := &syncBuffer{}

	s := &server{
		handler: api.NewRouter(api.RouterConfig{
			Logger:       zerolog.New(io.Discard),
			Store:        store,
			Refresher:    refresher,
			Metrics:      m,
			BreakerState: sc.BreakerState,
		}),
		store:     store,
		refresher: refresher,
		notifier:  notifier.NewDryRunNotifier(notes),
		limit:     notifier.DefaultLimit,
		cooldown:  notifier.DefaultCooldown,
		metrics:   m,
		log:       zerolog.Nop(),
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	base := "http://" + ln.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.run(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	resp, err := http.Get(base + "/v1/lots?type=motorcycle")
	require.NoError(t, err)
	var body api.LotsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, 3, body.Count)

	resp, err = http.Get(base + "/healthz")
	require.NoError(t, err)
	var health api.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, "closed", health.Breaker)

	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(notes.String()), []byte("中技 B3: 120, 中商 B2: 45"))
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
