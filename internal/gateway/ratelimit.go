package gateway

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// rateLimiter is a sliding window limiter over one event kind. It keeps
// the timestamps of the events accepted within the window.
type rateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	limit  int
	events []time.Time
	now    func() time.Time
}

// newRateLimiter returns nil when limit is not positive, which disables
// limiting.
func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	if limit <= 0 {
		return nil
	}
	return &rateLimiter{window: window, limit: limit, now: time.Now}
}

// allow records an event if the window has room. Otherwise it returns
// how long until the oldest event leaves the window.
func (rl *rateLimiter) allow() (time.Duration, bool) {
	if rl == nil {
		return 0, true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.evict(now)

	if len(rl.events) >= rl.limit {
		return rl.events[0].Add(rl.window).Sub(now), false
	}
	rl.events = append(rl.events, now)
	return 0, true
}

// evict removes events outside the sliding window. Events are in
// chronological order.
func (rl *rateLimiter) evict(now time.Time) {
	cutoff := now.Add(-rl.window)
	i := 0
	for i < len(rl.events) && !rl.events[i].After(cutoff) {
		i++
	}
	if i > 0 {
		rl.events = rl.events[i:]
	}
}

// limitSyncs rejects sync-triggering requests beyond the configured rate
// with 429 and a Retry-After header in seconds.
func (g *Gateway) limitSyncs(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wait, ok := g.syncLimit.allow()
		if !ok {
			secs := int(math.Ceil(wait.Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
			g.logger.Warn("sync rate limit exceeded", "path", r.URL.Path, "remote", r.RemoteAddr)
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "sync rate limit exceeded"})
			return
		}
		next(w, r)
	}
}
