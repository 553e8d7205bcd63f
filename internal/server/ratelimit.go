package server

import (
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// userLimiters hands out one token bucket per user ID.
type userLimiters struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
}

func newUserLimiters(limit rate.Limit, burst int) *userLimiters {
	if limit <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &userLimiters{limit: limit, burst: burst, limiters: make(map[string]*rate.Limiter)}
}

func (u *userLimiters) get(userID string) *rate.Limiter {
	u.mu.Lock()
	defer u.mu.Unlock()

	l, ok := u.limiters[userID]
	if !ok {
		l = rate.NewLimiter(u.limit, u.burst)
		u.limiters[userID] = l
	}
	return l
}

// rateLimit caps how often each user may call next.
func rateLimit(limiters *userLimiters, next func(http.ResponseWriter, *http.Request, string)) func(http.ResponseWriter, *http.Request, string) {
	return func(w http.ResponseWriter, r *http.Request, userID string) {
		if !limiters.get(userID).Allow() {
			w.Header().Set("Retry-After", "1")
			WriteErrorWithCode(w, http.StatusTooManyRequests, "Too many imports, try again shortly", "rate_limited")
			return
		}
		next(w, r, userID)
	}
}
