package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/AgentChief/accredis/utils"
)

const bucketTTL = 5 * time.Minute

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimiter is a token bucket per client IP.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	proxies TrustedProxies
	now     func() time.Time
}

func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(perSecond),
		burst:   burst,
		now:     time.Now,
	}
}

// WithTrustedProxies keys buckets by the forwarded client address when the
// request arrives through one of proxies.
func (l *RateLimiter) WithTrustedProxies(proxies TrustedProxies) *RateLimiter {
	l.proxies = proxies
	return l
}

// Allow takes one token from key's bucket.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}

// Sweep drops buckets idle for longer than the TTL.
func (l *RateLimiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for k, b := range l.buckets {
		if now.Sub(b.seen) > bucketTTL {
			delete(l.buckets, k)
		}
	}
}

// Run sweeps idle buckets every minute until ctx is done.
func (l *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := l.proxies.ClientIP(r)
		if ip == "" {
			ip = "unknown"
		}
		if !l.Allow(ip) {
			w.Header().Set("Retry-After", "1")
			utils.RespondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
