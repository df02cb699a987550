package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/unkani/unkani/pkg/audit"
	"github.com/unkani/unkani/pkg/identity"
	"github.com/unkani/unkani/pkg/ratelimit"
)

// RateLimiter limits requests per authenticated user, or per client IP
// for anonymous requests, within a named scope
type RateLimiter struct {
	Limiter ratelimit.Limiter
	Scope   string
	Limit   int
	Period  time.Duration
	Trusted TrustFunc
}

// NewRateLimiter creates a limiter allowing limit requests per period in scope
func NewRateLimiter(limiter ratelimit.Limiter, scope string, limit int, period time.Duration, trusted TrustFunc) *RateLimiter {
	return &RateLimiter{Limiter: limiter, Scope: scope, Limit: limit, Period: period, Trusted: trusted}
}

func (l *RateLimiter) key(r *http.Request) string {
	if id, ok := identity.Get(r.Context()); ok {
		return l.Scope + ":" + id.Key()
	}
	return l.Scope + ":ip:" + ClientIP(r, l.Trusted).String()
}

// Middleware returns an HTTP middleware enforcing the limit.
// Requests pass when the limiter backend is unavailable.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := l.key(r)

		res, err := l.Limiter.Allow(r.Context(), key, l.Limit, l.Period)
		if err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Str("key", key).Msg("Rate limiter unavailable")
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(res.Reset.Unix(), 10))

		if !res.Allowed {
			audit.Log(audit.RateLimitEvent{
				Key:      key,
				ClientIP: ClientIP(r, l.Trusted).String(),
				Route:    l.Scope,
				Limit:    l.Limit,
			})
			retry := time.Until(res.Reset)
			if retry < time.Second {
				retry = time.Second
			}
			h.Set("Retry-After", strconv.Itoa(int(retry.Round(time.Second)/time.Second)))
			respondWithError(w, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}
