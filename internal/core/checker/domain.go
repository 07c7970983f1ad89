package checker

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/domainsweep/domainsweep/internal/core"
)

const (
	apiKeyHeader  = "x-rapidapi-key"
	apiHostHeader = "x-rapidapi-host"

	statusInvalidJSON = "invalid-json"
	statusError       = "error"
	statusCanceled    = "canceled"
)

const (
	defaultMaxRetries     = 5
	defaultBackoffFactor  = 2.0
	defaultRequestTimeout = 10 * time.Second
	initialBackoff        = time.Second
)

// Limiter grants permission to issue one upstream request.
type Limiter interface {
	Acquire(ctx context.Context) error
}

// CacheStore persists check results with a TTL.
type CacheStore interface {
	GetCachedResult(ctx context.Context, domain string) (*core.CheckResult, error)
	SetCachedResult(ctx context.Context, domain string, result *core.CheckResult, ttl time.Duration) error
}

// CachePolicy maps verdicts to cache TTLs. A zero TTL disables caching for
// that verdict.
type CachePolicy struct {
	AvailableTTL time.Duration
	TakenTTL     time.Duration
	ErrorTTL     time.Duration
}

// DomainChecker checks a single domain against the upstream availability
// API, retrying transient failures (network errors, 429, 5xx) with
// exponential backoff. A limiter slot is consumed once per Check; retries
// within the same call reuse it, so the steady-state request rate stays
// bounded while failure bursts drain promptly.
type DomainChecker struct {
	Client  *http.Client
	Limiter Limiter

	Store       CacheStore
	UseCache    bool
	CachePolicy CachePolicy

	APIKey       string
	APIHost      string
	BaseURL      string
	EndpointPath string

	MaxRetries     int
	BackoffFactor  float64
	RequestTimeout time.Duration

	ToolVersion string
	Logger      *zap.Logger
	Clock       func() time.Time
	Sleep       func(ctx context.Context, d time.Duration) error
}

// Check resolves one domain. Every per-domain outcome, including exhausted
// retries and cancellation, is encoded in the returned result; the error is
// non-nil only when the checker itself is unusable.
func (d *DomainChecker) Check(ctx context.Context, domain string) (*core.CheckResult, error) {
	if d == nil {
		return nil, errors.New("domain checker is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	value := strings.ToLower(strings.TrimSpace(domain))
	if value == "" {
		return nil, errors.New("domain is required")
	}

	requestedAt := d.now()

	if d.UseCache && d.Store != nil {
		if cached, err := d.Store.GetCachedResult(ctx, value); err == nil && cached != nil {
			cached.Domain = value
			cached.Provenance.FromCache = true
			if cached.Provenance.CheckID == "" {
				cached.Provenance.CheckID = uuid.New().String()
			}
			if cached.Provenance.RequestedAt.IsZero() {
				cached.Provenance.RequestedAt = requestedAt
			}
			return cached, nil
		}
	}

	requestURL := d.requestURL(value)

	if d.Limiter != nil {
		if err := d.Limiter.Acquire(ctx); err != nil {
			return d.canceledResult(value, requestedAt, requestURL), nil
		}
	}

	backoff := initialBackoff
	factor := d.backoffFactor()
	maxRetries := d.maxRetries()
	client := d.client()

	lastErrKind := ""

	for attempt := 1; attempt <= maxRetries; attempt++ {
		resp, err := d.do(ctx, client, requestURL)
		if err != nil {
			if ctx.Err() != nil {
				return d.canceledResult(value, requestedAt, requestURL), nil
			}

			lastErrKind = errorKind(err)
			d.warn("Network error",
				zap.String("domain", value),
				zap.Int("attempt", attempt),
				zap.String("kind", lastErrKind),
				zap.Error(err),
			)

			if err := d.sleep(ctx, backoff); err != nil {
				return d.canceledResult(value, requestedAt, requestURL), nil
			}
			backoff = scaleBackoff(backoff, factor)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			wait := retryAfterSeconds(resp)
			closeBody(resp)
			if wait <= 0 {
				wait = backoff
			}
			d.warn("Rate limited by remote",
				zap.String("domain", value),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
			)

			if err := d.sleep(ctx, wait); err != nil {
				return d.canceledResult(value, requestedAt, requestURL), nil
			}
			backoff = scaleBackoff(backoff, factor)
			continue

		case resp.StatusCode >= 500 && resp.StatusCode <= 599:
			closeBody(resp)
			d.warn("Server error",
				zap.String("domain", value),
				zap.Int("attempt", attempt),
				zap.Int("http_status", resp.StatusCode),
			)

			if err := d.sleep(ctx, backoff); err != nil {
				return d.canceledResult(value, requestedAt, requestURL), nil
			}
			backoff = scaleBackoff(backoff, factor)
			continue
		}

		// Any other status, 2xx and 4xx alike, is terminal: parse once
		// and return.
		var payload map[string]any
		decodeErr := json.NewDecoder(resp.Body).Decode(&payload)
		closeBody(resp)

		if decodeErr != nil {
			d.warn("Non-JSON response",
				zap.String("domain", value),
				zap.Int("http_status", resp.StatusCode),
			)
			return &core.CheckResult{
				Domain:     value,
				Available:  core.AvailabilityUnknown,
				Status:     statusInvalidJSON,
				StatusCode: resp.StatusCode,
				Provenance: d.provenance(requestedAt, requestURL),
			}, nil
		}

		result := classifyPayload(value, payload)
		result.StatusCode = resp.StatusCode
		result.Provenance = d.provenance(requestedAt, requestURL)
		d.cacheResult(ctx, value, result)
		return result, nil
	}

	status := statusError
	if lastErrKind != "" {
		status = statusError + ": " + lastErrKind
	}

	return &core.CheckResult{
		Domain:     value,
		Available:  core.AvailabilityUnknown,
		Status:     status,
		Provenance: d.provenance(requestedAt, requestURL),
	}, nil
}

func (d *DomainChecker) do(ctx context.Context, client *http.Client, requestURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set(apiKeyHeader, d.APIKey)
	req.Header.Set(apiHostHeader, d.APIHost)
	req.Header.Set("Accept", "application/json")

	return client.Do(req)
}

func (d *DomainChecker) requestURL(domain string) string {
	base := strings.TrimRight(strings.TrimSpace(d.BaseURL), "/")
	if base == "" && strings.TrimSpace(d.APIHost) != "" {
		base = "https://" + strings.TrimSpace(d.APIHost)
	}

	query := url.Values{"domain": []string{domain}}
	return base + d.EndpointPath + "?" + query.Encode()
}

func (d *DomainChecker) client() *http.Client {
	if d.Client != nil {
		return d.Client
	}

	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &http.Client{Timeout: timeout}
}

func (d *DomainChecker) maxRetries() int {
	if d.MaxRetries > 0 {
		return d.MaxRetries
	}
	return defaultMaxRetries
}

func (d *DomainChecker) backoffFactor() float64 {
	if d.BackoffFactor > 0 {
		return d.BackoffFactor
	}
	return defaultBackoffFactor
}

func (d *DomainChecker) canceledResult(domain string, requestedAt time.Time, server string) *core.CheckResult {
	return &core.CheckResult{
		Domain:     domain,
		Available:  core.AvailabilityCanceled,
		Status:     statusCanceled,
		Provenance: d.provenance(requestedAt, server),
	}
}

func (d *DomainChecker) provenance(requestedAt time.Time, server string) core.Provenance {
	return core.Provenance{
		CheckID:     uuid.New().String(),
		RequestedAt: requestedAt,
		ResolvedAt:  d.now(),
		Server:      server,
		ToolVersion: d.ToolVersion,
	}
}

func (d *DomainChecker) cacheResult(ctx context.Context, domain string, result *core.CheckResult) {
	if d.Store == nil || !d.UseCache || result == nil {
		return
	}

	ttl := cacheTTL(d.CachePolicy, result.Available)
	if ttl <= 0 {
		return
	}

	_ = d.Store.SetCachedResult(ctx, domain, result, ttl)
}

func cacheTTL(policy CachePolicy, availability core.Availability) time.Duration {
	switch availability {
	case core.AvailabilityAvailable:
		return policy.AvailableTTL
	case core.AvailabilityTaken:
		return policy.TakenTTL
	case core.AvailabilityCanceled:
		return 0
	default:
		return policy.ErrorTTL
	}
}

func (d *DomainChecker) now() time.Time {
	if d.Clock != nil {
		return d.Clock()
	}
	return time.Now().UTC()
}

func (d *DomainChecker) sleep(ctx context.Context, delay time.Duration) error {
	if d.Sleep != nil {
		return d.Sleep(ctx, delay)
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (d *DomainChecker) warn(msg string, fields ...zap.Field) {
	if d.Logger == nil {
		return
	}
	d.Logger.Warn(msg, fields...)
}

// scaleBackoff grows the delay multiplicatively. Growth is deliberately
// uncapped; callers bound total wait through MaxRetries.
func scaleBackoff(backoff time.Duration, factor float64) time.Duration {
	return time.Duration(float64(backoff) * factor)
}

// errorKind buckets a transport failure for the final status label.
func errorKind(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}

	return "connection"
}

func closeBody(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_ = resp.Body.Close()
}
