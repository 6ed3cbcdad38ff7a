package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/nutcparking/parkspace/internal/lot"
	"github.com/nutcparking/parkspace/internal/parse"
)

const (
	StatusURL      = "https://apps.nutc.edu.tw/getParking/showParkingData.php"
	UserAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	Accept         = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	AcceptLanguage = "zh-TW,zh;q=0.9,en;q=0.8"
	Timeout        = 30 * time.Second

	maxBodySize = 4 << 20
)

// Scraper fetches and parses the parking status page
type Scraper struct {
	client  *http.Client
	url     string
	timeout time.Duration
	headers http.Header
	parser  *parse.Parser
	breaker *gobreaker.CircuitBreaker[page]
	logger  zerolog.Logger
	now     func() time.Time
}

// Option configures a Scraper
type Option func(*Scraper)

// WithURL overrides the status page URL
func WithURL(url string) Option {
	return func(s *Scraper) { s.url = url }
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(s *Scraper) { s.client = client }
}

// WithTimeout bounds each Fetch, including reading the body
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) { s.timeout = d }
}

// WithUserAgent overrides the browser User-Agent
func WithUserAgent(ua string) Option {
	return func(s *Scraper) { s.headers.Set("User-Agent", ua) }
}

// WithMarkup selects how sections and cells are located
func WithMarkup(m parse.Markup) Option {
	return func(s *Scraper) { s.parser = parse.New(m) }
}

// WithBreaker puts a circuit breaker in front of the upstream
func WithBreaker(cfg BreakerConfig) Option {
	return func(s *Scraper) { s.breaker = s.newBreaker(cfg) }
}

// WithLogger sets the logger
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scraper) { s.logger = l }
}

// WithClock replaces time.Now for capture timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Scraper) { s.now = now }
}

// New creates a new Scraper instance
func New(opts ...Option) *Scraper {
	s := &Scraper{
		client: &http.Client{
			Timeout: Timeout,
		},
		url:     StatusURL,
		timeout: Timeout,
		headers: http.Header{},
		parser:  parse.New(nil),
		logger:  zerolog.Nop(),
		now:     time.Now,
	}
	s.headers.Set("User-Agent", UserAgent)
	s.headers.Set("Accept", Accept)
	s.headers.Set("Accept-Language", AcceptLanguage)

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// URL returns the status page URL
func (s *Scraper) URL() string {
	return s.url
}

// Result is one successful fetch
type Result struct {
	Lots      []lot.Lot
	FetchedAt time.Time
	Missing   []lot.Type
	Warnings  []error
	Markup    string
}

type page struct {
	body        []byte
	contentType string
}

// Fetch downloads and parses the status page. On error nothing is returned, so
// a caller's previous lots stay valid.
func (s *Scraper) Fetch(ctx context.Context) (*Result, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	pg, err := s.download(ctx)
	if err != nil {
		return nil, err
	}

	text, err := decode(pg.body, pg.contentType)
	if err != nil {
		return nil, err
	}

	fetchedAt := s.now()
	out := s.parser.Parse(text, fetchedAt)

	result := &Result{
		Lots:      out.Lots,
		FetchedAt: fetchedAt,
		Missing:   out.Missing,
		Markup:    s.parser.Markup().Name(),
	}
	for _, typ := range out.Missing {
		result.Warnings = append(result.Warnings, &SectionNotFoundError{Type: typ})
	}
	result.Warnings = append(result.Warnings, out.Errors...)

	for _, w := range result.Warnings {
		s.logger.Warn().Err(w).Str("url", s.url).Msg("parse warning")
	}

	if len(result.Lots) == 0 {
		return nil, &EmptyResultError{
			BothSectionsMissing: len(out.Missing) == len(lot.Types()),
			Missing:             out.Missing,
		}
	}

	s.logger.Debug().
		Int("lots", len(result.Lots)).
		Int("bytes", len(pg.body)).
		Str("markup", result.Markup).
		Msg("fetched parking status")

	return result, nil
}

func (s *Scraper) download(ctx context.Context) (page, error) {
	if s.breaker == nil {
		return s.get(ctx)
	}

	pg, err := s.breaker.Execute(func() (page, error) {
		return s.get(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return page{}, &NetworkError{URL: s.url, Err: ErrCircuitOpen}
	}
	return pg, err
}

func (s *Scraper) get(ctx context.Context) (page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return page{}, &NetworkError{URL: s.url, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header = s.headers.Clone()

	resp, err := s.client.Do(req)
	if err != nil {
		return page{}, &NetworkError{URL: s.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return page{}, &HTTPStatusError{URL: s.url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return page{}, &NetworkError{URL: s.url, Err: fmt.Errorf("reading body: %w", err)}
	}

	return page{body: body, contentType: resp.Header.Get("Content-Type")}, nil
}
