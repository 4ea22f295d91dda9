package httputil

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fetchtree/pkg/buildinfo"
	"github.com/matzehuels/fetchtree/pkg/cache"
	"github.com/matzehuels/fetchtree/pkg/errors"
	"github.com/matzehuels/fetchtree/pkg/observability"
)

// Defaults used by [NewFetcher].
const (
	DefaultTTL      = 24 * time.Hour
	DefaultTimeout  = 30 * time.Second
	DefaultAttempts = 3
	DefaultDelay    = time.Second
	MaxBodySize     = 64 << 20
)

// Fetcher downloads documents over HTTP.
type Fetcher struct {
	Client   *http.Client
	Cache    cache.Cache
	Keyer    cache.Keyer
	TTL      time.Duration
	Logger   *log.Logger
	Headers  http.Header // sent with every request, e.g. Authorization
	Attempts int
	Delay    time.Duration
}

// NewFetcher creates a fetcher with default client, keyer and retry
// settings. A nil cache disables caching.
func NewFetcher(c cache.Cache, ttl time.Duration, logger *log.Logger) *Fetcher {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Fetcher{
		Client:   &http.Client{Timeout: DefaultTimeout},
		Cache:    c,
		Keyer:    cache.NewDefaultKeyer(),
		TTL:      ttl,
		Logger:   logger,
		Headers:  http.Header{},
		Attempts: DefaultAttempts,
		Delay:    DefaultDelay,
	}
}

// Fetch returns the body at rawURL and whether it came from the cache.
// Only 2xx bodies are cached.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, bool, error) {
	u, err := parseURL(rawURL)
	if err != nil {
		return nil, false, err
	}
	key := f.key(u)

	if data, ok, err := f.Cache.Get(ctx, key); err != nil {
		f.Logger.Warn("cache read failed", "url", rawURL, "err", err)
	} else if ok {
		f.Logger.Debug("cache hit", "url", rawURL, "bytes", len(data))
		return data, true, nil
	}

	var body []byte
	b := Backoff{Attempts: f.Attempts, Delay: f.Delay, MaxDelay: DefaultBackoff.MaxDelay}
	err = b.Do(ctx, func() error {
		var err error
		body, err = f.do(ctx, u)
		if err != nil && IsRetryable(err) {
			f.Logger.Debug("retrying fetch", "url", rawURL, "err", err)
		}
		return err
	})
	if err != nil {
		err = unmark(err)
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeNetwork, err, "GET %s", rawURL)
		}
		return nil, false, err
	}

	if err := f.Cache.Set(ctx, key, body, f.TTL); err != nil {
		f.Logger.Warn("cache write failed", "url", rawURL, "err", err)
	}
	return body, false, nil
}

// Invalidate removes the cached response for rawURL.
func (f *Fetcher) Invalidate(ctx context.Context, rawURL string) error {
	u, err := parseURL(rawURL)
	if err != nil {
		return err
	}
	return f.Cache.Delete(ctx, f.key(u))
}

// key identifies a response by URL and by the headers sent with it, so
// callers with different credentials never share a cached body.
func (f *Fetcher) key(u *url.URL) string {
	path := u.RequestURI()
	if d := headerDigest(f.Headers); d != "" {
		path += "#h=" + d
	}
	return f.Keyer.HTTPKey(u.Host, path)
}

// headerDigest hashes the canonical, sorted header lines. Empty headers
// give "".
func headerDigest(h http.Header) string {
	if len(h) == 0 {
		return ""
	}
	lines := make([]string, 0, len(h))
	for k, vs := range h {
		k = http.CanonicalHeaderKey(k)
		for _, v := range vs {
			lines = append(lines, k+": "+v)
		}
	}
	if len(lines) == 0 {
		return ""
	}
	sort.Strings(lines)
	return cache.Hash([]byte(strings.Join(lines, "\n")))[:16]
}

func (f *Fetcher) do(ctx context.Context, u *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	for k, vs := range f.Headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", buildinfo.UserAgent())
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json, application/yaml, application/toml;q=0.9, */*;q=0.5")
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, u.Host, u.Path)
	start := time.Now()

	resp, err := f.Client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, u.Host, u.Path, err)
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "GET %s", u)
		}
		return nil, Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "GET %s", u))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, u.Host, u.Path, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.New(errors.ErrCodeNotFound, "GET %s: 404 not found", u)
	case resp.StatusCode == http.StatusTooManyRequests:
		secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		rl := &errors.RateLimitedError{RetryAfter: time.Duration(secs) * time.Second}
		return nil, Retryable(errors.Wrap(errors.ErrCodeRateLimited, rl, "GET %s", u))
	case resp.StatusCode >= 500:
		return nil, Retryable(errors.New(errors.ErrCodeNetwork, "GET %s: %s", u, resp.Status))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, errors.New(errors.ErrCodeNetwork, "GET %s: %s", u, resp.Status)
	}

	var buf bytes.Buffer
	n, err := buf.ReadFrom(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "read body of %s", u))
	}
	if n > MaxBodySize {
		return nil, errors.New(errors.ErrCodeInvalidInput, "GET %s: body larger than %d bytes", u, MaxBodySize)
	}
	return buf.Bytes(), nil
}

func parseURL(rawURL string) (*url.URL, error) {
	if err := errors.ValidateURL(rawURL); err != nil {
		return nil, err
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse URL")
	}
	if u.Host == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "URL %q has no host", rawURL)
	}
	return u, nil
}
