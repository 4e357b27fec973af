package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/AnshRaj112/nutrameter-backend/pkg/clientip"
)

const (
	headerXContentTypeOptions     = "X-Content-Type-Options"
	headerXFrameOptions           = "X-Frame-Options"
	headerXXSSProtection          = "X-XSS-Protection"
	headerContentSecurityPolicy   = "Content-Security-Policy"
	headerStrictTransportSecurity = "Strict-Transport-Security"
)

// SecurityHeaders sets security-related response headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(headerXContentTypeOptions, "nosniff")
		w.Header().Set(headerXFrameOptions, "DENY")
		w.Header().Set(headerXXSSProtection, "1; mode=block")
		w.Header().Set(headerContentSecurityPolicy, "default-src 'self'")
		w.Header().Set(headerStrictTransportSecurity, "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

const (
	limiterCleanupInterval = 5 * time.Minute
	limiterTTL             = 30 * time.Minute
)

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

// IPRateLimiter keeps one token bucket per client IP in process memory.
type IPRateLimiter struct {
	// TrustProxy keys buckets by X-Forwarded-For instead of RemoteAddr.
	TrustProxy bool

	limit   rate.Limit
	burst   int
	message string

	mu      sync.Mutex
	entries map[string]*limiterEntry
}

func NewIPRateLimiter(limit rate.Limit, burst int, message string) *IPRateLimiter {
	return &IPRateLimiter{
		limit:   limit,
		burst:   burst,
		message: message,
		entries: make(map[string]*limiterEntry),
	}
}

// Global is 1 req/s with a burst of 10 per IP.
func NewGlobalRateLimiter() *IPRateLimiter {
	return NewIPRateLimiter(rate.Limit(1), 10, "Too many requests. Please slow down.")
}

// Auth is 1 req/5s with a burst of 2 per IP, for login and register.
func NewAuthRateLimiter() *IPRateLimiter {
	return NewIPRateLimiter(rate.Every(5*time.Second), 2, "Too many login attempts. Please try again later.")
}

func (l *IPRateLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[ip]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[ip] = e
	}
	e.lastUse = time.Now()
	return e.limiter
}

func (l *IPRateLimiter) Allow(ip string) bool {
	return l.get(ip).Allow()
}

// Prune drops buckets idle for longer than ttl.
func (l *IPRateLimiter) Prune(now time.Time, ttl time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, e := range l.entries {
		if now.Sub(e.lastUse) > ttl {
			delete(l.entries, ip)
		}
	}
}

// Run prunes idle buckets until ctx is done.
func (l *IPRateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.Prune(now, limiterTTL)
		}
	}
}

// Middleware returns 429 once the client's bucket is empty.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientip.FromRequest(r, l.TrustProxy)) {
			writeError(w, http.StatusTooManyRequests, l.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}
