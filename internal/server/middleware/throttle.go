package middleware

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// Throttle limits requests per client IP using a token bucket. Clients over
// the limit receive 429 with a Retry-After hint.
type Throttle struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

// NewThrottle builds a per-client throttle. Non-positive parameters disable
// it; Handler then passes requests through unchanged.
func NewThrottle(requestsPerSecond float64, burst int) *Throttle {
	if requestsPerSecond <= 0 || burst <= 0 {
		return &Throttle{}
	}
	return &Throttle{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

// Handler wraps next with the throttle.
func (t *Throttle) Handler(next http.Handler) http.Handler {
	if t == nil || t.limiters == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter := t.limiterFor(clientIP(r))
		if !limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (t *Throttle) limiterFor(ip string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	limiter, ok := t.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(t.rps, t.burst)
		t.limiters[ip] = limiter
	}
	return limiter
}

// clientIP relies on chi's RealIP middleware having normalized RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
