package checker

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/domainsweep/domainsweep/internal/core"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "dial tcp: i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

// scriptedTransport replays a fixed sequence of responses or errors and
// records every request it saw.
type scriptedTransport struct {
	mu       sync.Mutex
	steps    []func(*http.Request) (*http.Response, error)
	requests []*http.Request
}

func (s *scriptedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, req)
	if len(s.steps) == 0 {
		return nil, errors.New("no scripted response left")
	}
	step := s.steps[0]
	s.steps = s.steps[1:]
	return step(req)
}

func (s *scriptedTransport) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func respond(code int, body string) func(*http.Request) (*http.Response, error) {
	return respondWithHeader(code, body, nil)
}

func respondWithHeader(code int, body string, header http.Header) func(*http.Request) (*http.Response, error) {
	return func(req *http.Request) (*http.Response, error) {
		h := http.Header{}
		for key, values := range header {
			h[key] = values
		}
		return &http.Response{
			StatusCode: code,
			Header:     h,
			Body:       io.NopCloser(strings.NewReader(body)),
			Request:    req,
		}, nil
	}
}

func fail(err error) func(*http.Request) (*http.Response, error) {
	return func(*http.Request) (*http.Response, error) {
		return nil, err
	}
}

type countingLimiter struct {
	acquired int
	err      error
}

func (c *countingLimiter) Acquire(ctx context.Context) error {
	c.acquired++
	if c.err != nil {
		return c.err
	}
	return ctx.Err()
}

type stubCacheStore struct {
	results map[string]*core.CheckResult
	setTTLs map[string]time.Duration
}

func newStubCacheStore() *stubCacheStore {
	return &stubCacheStore{
		results: make(map[string]*core.CheckResult),
		setTTLs: make(map[string]time.Duration),
	}
}

func (s *stubCacheStore) GetCachedResult(ctx context.Context, domain string) (*core.CheckResult, error) {
	return s.results[domain], nil
}

func (s *stubCacheStore) SetCachedResult(ctx context.Context, domain string, result *core.CheckResult, ttl time.Duration) error {
	s.results[domain] = result
	s.setTTLs[domain] = ttl
	return nil
}

func newTestChecker(transport http.RoundTripper) (*DomainChecker, *[]time.Duration) {
	sleeps := &[]time.Duration{}
	return &DomainChecker{
		Client:        &http.Client{Transport: transport},
		APIKey:        "test-key",
		APIHost:       "domainr.example.rapidapi.com",
		BaseURL:       "https://domainr.example.rapidapi.com",
		EndpointPath:  "/api/v1",
		MaxRetries:    5,
		BackoffFactor: 2.0,
		Clock:         func() time.Time { return time.Unix(1_700_000_000, 0).UTC() },
		Sleep: func(ctx context.Context, d time.Duration) error {
			*sleeps = append(*sleeps, d)
			return ctx.Err()
		},
	}, sleeps
}

func TestCheckSendsCredentialsAndQuery(t *testing.T) {
	transport := &scriptedTransport{steps: []func(*http.Request) (*http.Response, error){
		respond(http.StatusOK, `{"DomainInfo":{"domainAvailability":"AVAILABLE"}}`),
	}}
	checker, _ := newTestChecker(transport)

	result, err := checker.Check(context.Background(), "  Example.COM ")
	require.NoError(t, err)

	require.Len(t, transport.requests, 1)
	req := transport.requests[0]
	require.Equal(t, "test-key", req.Header.Get("x-rapidapi-key"))
	require.Equal(t, "domainr.example.rapidapi.com", req.Header.Get("x-rapidapi-host"))
	require.Equal(t, "application/json", req.Header.Get("Accept"))
	require.Equal(t, "/api/v1", req.URL.Path)
	require.Equal(t, "example.com", req.URL.Query().Get("domain"))

	require.Equal(t, "example.com", result.Domain)
	require.Equal(t, core.AvailabilityAvailable, result.Available)
	require.Equal(t, "AVAILABLE", result.Status)
	require.Equal(t, http.StatusOK, result.StatusCode)
	require.NotEmpty(t, result.Provenance.CheckID)
	require.False(t, result.Provenance.FromCache)
}

func TestCheckRetriesRateLimitThenSucceeds(t *testing.T) {
	transport := &scriptedTransport{steps: []func(*http.Request) (*http.Response, error){
		respond(http.StatusTooManyRequests, ""),
		respond(http.StatusTooManyRequests, ""),
		respond(http.StatusOK, `{"available":false}`),
	}}
	checker, sleeps := newTestChecker(transport)

	result, err := checker.Check(context.Background(), "example.com")
	require.NoError(t, err)
	require.Equal(t, 3, transport.callCount())
	require.Equal(t, core.AvailabilityTaken, result.Available)
	require.Equal(t, "UNAVAILABLE", result.Status)
	require.Equal(t, http.StatusOK, result.StatusCode)

	// Exponential backoff without a Retry-After hint: 1s then 2s.
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *sleeps)
}

func TestCheckHonorsRetryAfterHint(t *testing.T) {
	transport := &scriptedTransport{steps: []func(*http.Request) (*http.Response, error){
		respondWithHeader(http.StatusTooManyRequests, "", http.Header{"Retry-After": []string{"7"}}),
		respond(http.StatusOK, `{"available":true}`),
	}}
	checker, sleeps := newTestChecker(transport)

	result, err := checker.Check(context.Background(), "example.com")
	require.NoError(t, err)
	require.Equal(t, core.AvailabilityAvailable, result.Available)
	require.Equal(t, []time.Duration{7 * time.Second}, *sleeps)
}

func TestCheckRetriesServerErrors(t *testing.T) {
	transport := &scriptedTransport{steps: []func(*http.Request) (*http.Response, error){
		respond(http.StatusBadGateway, "upstream sad"),
		respond(http.StatusOK, `{"available":true}`),
	}}
	checker, sleeps := newTestChecker(transport)

	result, err := checker.Check(context.Background(), "example.com")
	require.NoError(t, err)
	require.Equal(t, 2, transport.callCount())
	require.Equal(t, core.AvailabilityAvailable, result.Available)
	require.Equal(t, []time.Duration{time.Second}, *sleeps)
}

func TestCheckExhaustsRetriesOnConnectionErrors(t *testing.T) {
	connErr := errors.New("connection refused")
	transport := &scriptedTransport{steps: []func(*http.Request) (*http.Response, error){
		fail(connErr), fail(connErr), fail(connErr),
	}}
	checker, sleeps := newTestChecker(transport)
	checker.MaxRetries = 3

	result, err := checker.Check(context.Background(), "example.com")
	require.NoError(t, err)
	require.Equal(t, 3, transport.callCount())
	require.Equal(t, core.AvailabilityUnknown, result.Available)
	require.Equal(t, "error: connection", result.Status)
	require.Zero(t, result.StatusCode)
	require.Nil(t, result.Raw)
	require.Len(t, *sleeps, 3)
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, *sleeps)
}

func TestCheckReportsTimeoutKind(t *testing.T) {
	transport := &scriptedTransport{steps: []func(*http.Request) (*http.Response, error){
		fail(timeoutError{}), fail(timeoutError{}),
	}}
	checker, _ := newTestChecker(transport)
	checker.MaxRetries = 2

	result, err := checker.Check(context.Background(), "example.com")
	require.NoError(t, err)
	require.Equal(t, "error: timeout", result.Status)
}

func TestCheckTreatsClientErrorsAsTerminal(t *testing.T) {
	transport := &scriptedTransport{steps: []func(*http.Request) (*http.Response, error){
		respond(http.StatusNotFound, `{"message":"no such endpoint"}`),
	}}
	checker, sleeps := newTestChecker(transport)

	result, err := checker.Check(context.Background(), "example.com")
	require.NoError(t, err)
	require.Equal(t, 1, transport.callCount())
	require.Empty(t, *sleeps)
	require.Equal(t, core.AvailabilityUnknown, result.Available)
	require.Equal(t, "unknown", result.Status)
	require.Equal(t, http.StatusNotFound, result.StatusCode)
	require.Equal(t, map[string]any{"message": "no such endpoint"}, result.Raw)
}

func TestCheckReportsInvalidJSON(t *testing.T) {
	transport := &scriptedTransport{steps: []func(*http.Request) (*http.Response, error){
		respond(http.StatusOK, "<html>not json</html>"),
	}}
	checker, _ := newTestChecker(transport)

	result, err := checker.Check(context.Background(), "example.com")
	require.NoError(t, err)
	require.Equal(t, 1, transport.callCount())
	require.Equal(t, core.AvailabilityUnknown, result.Available)
	require.Equal(t, "invalid-json", result.Status)
	require.Equal(t, http.StatusOK, result.StatusCode)
	require.Nil(t, result.Raw)
}

func TestCheckAcquiresLimiterOncePerCall(t *testing.T) {
	transport := &scriptedTransport{steps: []func(*http.Request) (*http.Response, error){
		respond(http.StatusTooManyRequests, ""),
		respond(http.StatusInternalServerError, ""),
		respond(http.StatusOK, `{"available":true}`),
	}}
	checker, _ := newTestChecker(transport)
	limiter := &countingLimiter{}
	checker.Limiter = limiter

	_, err := checker.Check(context.Background(), "example.com")
	require.NoError(t, err)
	require.Equal(t, 3, transport.callCount())
	require.Equal(t, 1, limiter.acquired)
}

func TestCheckReturnsCanceledWhenAcquireFails(t *testing.T) {
	transport := &scriptedTransport{}
	checker, _ := newTestChecker(transport)
	checker.Limiter = &countingLimiter{err: context.Canceled}

	result, err := checker.Check(context.Background(), "example.com")
	require.NoError(t, err)
	require.Equal(t, 0, transport.callCount())
	require.Equal(t, core.AvailabilityCanceled, result.Available)
	require.Equal(t, "canceled", result.Status)
	require.Zero(t, result.StatusCode)
}

func TestCheckReturnsCanceledMidBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	transport := &scriptedTransport{steps: []func(*http.Request) (*http.Response, error){
		respond(http.StatusTooManyRequests, ""),
	}}
	checker, _ := newTestChecker(transport)
	checker.Sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	result, err := checker.Check(ctx, "example.com")
	require.NoError(t, err)
	require.Equal(t, core.AvailabilityCanceled, result.Available)
	require.Equal(t, "canceled", result.Status)
}

func TestCheckServesFromCache(t *testing.T) {
	transport := &scriptedTransport{}
	checker, _ := newTestChecker(transport)

	cache := newStubCacheStore()
	cache.results["example.com"] = &core.CheckResult{
		Domain:    "example.com",
		Available: core.AvailabilityTaken,
		Status:    "UNAVAILABLE",
	}
	checker.Store = cache
	checker.UseCache = true

	result, err := checker.Check(context.Background(), "Example.com")
	require.NoError(t, err)
	require.Equal(t, 0, transport.callCount())
	require.Equal(t, core.AvailabilityTaken, result.Available)
	require.True(t, result.Provenance.FromCache)
}

func TestCheckCachesVerdictsPerPolicy(t *testing.T) {
	transport := &scriptedTransport{steps: []func(*http.Request) (*http.Response, error){
		respond(http.StatusOK, `{"available":true}`),
	}}
	checker, _ := newTestChecker(transport)

	cache := newStubCacheStore()
	checker.Store = cache
	checker.UseCache = true
	checker.CachePolicy = CachePolicy{
		AvailableTTL: 5 * time.Minute,
		TakenTTL:     time.Hour,
		ErrorTTL:     30 * time.Second,
	}

	_, err := checker.Check(context.Background(), "example.com")
	require.NoError(t, err)
	require.Equal(t, 5*time.Minute, cache.setTTLs["example.com"])
}

func TestCheckRejectsEmptyDomain(t *testing.T) {
	checker, _ := newTestChecker(&scriptedTransport{})
	_, err := checker.Check(context.Background(), "   ")
	require.Error(t, err)
}

func TestCheckAgainstLiveServer(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"DomainInfo":{"domainAvailability":"UNAVAILABLE"}}`))
	}))
	defer server.Close()

	checker := &DomainChecker{
		Client:       server.Client(),
		APIKey:       "test-key",
		APIHost:      "domainr.example.rapidapi.com",
		BaseURL:      server.URL,
		EndpointPath: "/api/v1",
	}

	result, err := checker.Check(context.Background(), "taken.com")
	require.NoError(t, err)
	require.Equal(t, "/api/v1", gotPath)
	require.Equal(t, core.AvailabilityTaken, result.Available)
	require.Equal(t, "UNAVAILABLE", result.Status)
	require.Equal(t, http.StatusOK, result.StatusCode)
}
