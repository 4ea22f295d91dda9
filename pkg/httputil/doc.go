// Package httputil fetches remote documents for import.
//
// # Overview
//
//   - [Fetcher]: GET a URL, with response caching and retries
//   - [Retry]: exponential backoff for transient failures
//
// # Caching
//
// Successful response bodies are stored in a [cache.Cache] under an
// "http:" key built from the host and request URI. A repeated fetch within
// the TTL is served from the cache and reported as cached:
//
//	f := httputil.NewFetcher(c, 24*time.Hour, logger)
//	body, cached, err := f.Fetch(ctx, "https://api.example.com/users")
//
// [Fetcher.Invalidate] drops the entry so the next fetch goes to the
// network (the CLI's --refresh).
//
// # Retry
//
// Network errors, 5xx responses and 429 rate limiting are retried up to
// three times with a doubling delay starting at one second. 404 responses
// map to NOT_FOUND and are not retried.
package httputil
