package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/fetchtree/pkg/cache"
	"github.com/matzehuels/fetchtree/pkg/errors"
)

func newTestFetcher(t *testing.T) *Fetcher {
	t.Helper()
	c, err := cache.NewMemoryCache(16)
	if err != nil {
		t.Fatal(err)
	}
	f := NewFetcher(c, time.Hour, nil)
	f.Delay = time.Millisecond
	return f
}

func TestFetchCachesResponses(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"users": [1, 2]}`))
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	ctx := context.Background()

	body, cached, err := f.Fetch(ctx, srv.URL+"/users?page=1")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if cached || string(body) != `{"users": [1, 2]}` {
		t.Errorf("first fetch = %q, cached=%v", body, cached)
	}

	body, cached, err = f.Fetch(ctx, srv.URL+"/users?page=1")
	if err != nil || !cached || string(body) != `{"users": [1, 2]}` {
		t.Errorf("second fetch = %q, cached=%v, err=%v", body, cached, err)
	}
	if calls.Load() != 1 {
		t.Errorf("server called %d times, want 1", calls.Load())
	}

	// A different query string is a different resource.
	if _, cached, _ := f.Fetch(ctx, srv.URL+"/users?page=2"); cached {
		t.Error("page=2 served from cache")
	}

	if err := f.Invalidate(ctx, srv.URL+"/users?page=1"); err != nil {
		t.Fatal(err)
	}
	if _, cached, _ := f.Fetch(ctx, srv.URL+"/users?page=1"); cached {
		t.Error("fetch after Invalidate served from cache")
	}
	if calls.Load() != 3 {
		t.Errorf("server called %d times, want 3", calls.Load())
	}
}

func TestFetchCacheKeyIncludesHeaders(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"token": "` + r.Header.Get("Authorization") + `"}`))
	}))
	defer srv.Close()

	c, err := cache.NewMemoryCache(16)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	alice := NewFetcher(c, time.Hour, nil)
	alice.Headers.Set("Authorization", "Bearer alice")
	bob := NewFetcher(c, time.Hour, nil)
	bob.Headers.Set("Authorization", "Bearer bob")

	if body, _, err := alice.Fetch(ctx, srv.URL+"/me"); err != nil || string(body) != `{"token": "Bearer alice"}` {
		t.Fatalf("alice = %q, %v", body, err)
	}
	body, cached, err := bob.Fetch(ctx, srv.URL+"/me")
	if err != nil {
		t.Fatalf("bob: %v", err)
	}
	if cached || string(body) != `{"token": "Bearer bob"}` {
		t.Errorf("bob got %q (cached=%v), want his own response", body, cached)
	}
	if _, cached, _ := alice.Fetch(ctx, srv.URL+"/me"); !cached {
		t.Error("alice's second fetch missed the cache")
	}
	if calls.Load() != 2 {
		t.Errorf("server called %d times, want 2", calls.Load())
	}

	// Header order and key case do not change the key.
	a := http.Header{"x-team": {"core"}, "Authorization": {"Bearer alice"}}
	b := http.Header{"Authorization": {"Bearer alice"}, "X-Team": {"core"}}
	if headerDigest(a) != headerDigest(b) {
		t.Error("equivalent headers hash differently")
	}
	if headerDigest(nil) != "" || headerDigest(http.Header{}) != "" {
		t.Error("empty headers should not change the key")
	}

	if err := bob.Invalidate(ctx, srv.URL+"/me"); err != nil {
		t.Fatal(err)
	}
	if _, cached, _ := bob.Fetch(ctx, srv.URL+"/me"); cached {
		t.Error("bob's fetch after Invalidate served from cache")
	}
	if _, cached, _ := alice.Fetch(ctx, srv.URL+"/me"); !cached {
		t.Error("bob's Invalidate dropped alice's entry")
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`ok: true`))
	}))
	defer srv.Close()

	body, _, err := newTestFetcher(t).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(body) != "ok: true" || calls.Load() != 3 {
		t.Errorf("body = %q after %d calls", body, calls.Load())
	}
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		want      errors.Code
		wantCalls int32
	}{
		{"not found", http.StatusNotFound, errors.ErrCodeNotFound, 1},
		{"forbidden", http.StatusForbidden, errors.ErrCodeNetwork, 1},
		{"always failing", http.StatusInternalServerError, errors.ErrCodeNetwork, 3},
		{"rate limited", http.StatusTooManyRequests, errors.ErrCodeRateLimited, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.Header().Set("Retry-After", "0")
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			f := newTestFetcher(t)
			_, _, err := f.Fetch(context.Background(), srv.URL+"/x")
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %s", err, tt.want)
			}
			if IsRetryable(err) {
				t.Error("returned error still marked retryable")
			}
			if calls.Load() != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls.Load(), tt.wantCalls)
			}
			if _, ok, _ := f.Cache.Get(context.Background(), f.Keyer.HTTPKey(srv.Listener.Addr().String(), "/x")); ok {
				t.Error("error response was cached")
			}
		})
	}
}

func TestFetchSendsHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	f.Headers.Set("Authorization", "Bearer token")
	if _, _, err := f.Fetch(context.Background(), srv.URL); err != nil {
		t.Fatal(err)
	}
	if got.Get("Authorization") != "Bearer token" {
		t.Errorf("Authorization = %q", got.Get("Authorization"))
	}
	if got.Get("User-Agent") == "" || got.Get("Accept") == "" {
		t.Errorf("default headers missing: %v", got)
	}
}

func TestFetchInvalidURL(t *testing.T) {
	f := newTestFetcher(t)
	for _, u := range []string{"", "ftp://example.com/x", "http://"} {
		if _, _, err := f.Fetch(context.Background(), u); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Fetch(%q) err = %v", u, err)
		}
	}
}

func TestFetchCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := newTestFetcher(t).Fetch(ctx, srv.URL)
	if !errors.Is(err, errors.ErrCodeTimeout) {
		t.Errorf("err = %v, want TIMEOUT", err)
	}
}

func TestNewFetcherNilCache(t *testing.T) {
	f := NewFetcher(nil, 0, nil)
	if f.Cache == nil || f.Logger == nil || f.Keyer == nil {
		t.Errorf("defaults not set: %+v", f)
	}
}
