package middleware

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/pocketledger/Pocket-Ledger-Backend/internal/api/response"
)

// RateLimiter throttles an endpoint to a low invocation frequency. The due
// processing trigger is meant to fire hourly from an external scheduler; the
// limiter is an injected dependency rather than package-level state so each
// router (and each test) gets its own window.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter allows perMinute invocations per minute with the given burst.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst),
	}
}

// Handler rejects requests over the limit with 429 Too Many Requests.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.limiter.Allow() {
			response.RespondError(w, http.StatusTooManyRequests, "rate limit exceeded", "Try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}
