package blob

import (
	"context"
	"math"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HTTPOptions configures the HTTP source.
type HTTPOptions struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	RetryBase  time.Duration
	RatePerSec float64
	Burst      int
	// MaxBytes caps a response body; zero means maxDocumentBytes.
	MaxBytes int64
}

// HTTPSource fetches documents from a static file host, e.g.
// https://postcodes.energy/data/chunks/N15.json.
type HTTPSource struct {
	baseURL string
	client  *http.Client
	opts    HTTPOptions
	limiter *rate.Limiter
}

// NewHTTPSource creates an HTTPSource rooted at baseURL.
func NewHTTPSource(baseURL string, opts HTTPOptions) *HTTPSource {
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.RetryBase == 0 {
		opts.RetryBase = 500 * time.Millisecond
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "postcode-lookup/1.0"
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = 50
	}
	if opts.Burst <= 0 {
		opts.Burst = 100
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = maxDocumentBytes
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost: 20,
		MaxConnsPerHost:     50,
		IdleConnTimeout:     90 * time.Second,
	}
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSec), opts.Burst),
	}
}

// Fetch downloads the named document. 404 and 410 map to ErrNotFound and are
// not retried.
func (s *HTTPSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	p, err := objectPath(name)
	if err != nil {
		return nil, err
	}
	rawURL := s.baseURL + "/" + p

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "blob: create request")
	}
	req.Header.Set("User-Agent", s.opts.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.doWithRetry(ctx, req)
	if err != nil {
		return nil, eris.Wrapf(err, "blob: fetch %s", name)
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, eris.Wrapf(ErrNotFound, "blob: %s (http %d)", name, resp.StatusCode)
	default:
		return nil, eris.Errorf("blob: unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	return readDocument(resp.Body, name, s.opts.MaxBytes)
}

func (s *HTTPSource) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error
	for attempt := range s.opts.MaxRetries {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "rate limiter wait")
		}

		resp, err := s.client.Do(req.Clone(ctx))
		if err != nil {
			if ctx.Err() != nil {
				return nil, eris.Wrap(ctx.Err(), "request cancelled")
			}
			lastErr = err
			zap.L().Warn("blob request failed, retrying",
				zap.String("url", req.URL.String()),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			s.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			_ = resp.Body.Close()
			lastErr = eris.Errorf("http %d from %s", resp.StatusCode, req.URL.String())
			zap.L().Warn("blob server error, retrying",
				zap.String("url", req.URL.String()),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
			s.backoff(ctx, attempt)
			continue
		}

		return resp, nil
	}

	return nil, eris.Wrap(lastErr, "all retries exhausted")
}

func (s *HTTPSource) backoff(ctx context.Context, attempt int) {
	maxBackoff := 10 * time.Second
	d := time.Duration(float64(s.opts.RetryBase) * math.Pow(2, float64(attempt)))
	if d > maxBackoff {
		d = maxBackoff
	}
	if half := int64(d) / 2; half > 0 {
		d += time.Duration(rand.Int64N(half))
	}

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
