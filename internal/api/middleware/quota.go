package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/lazobello/cvagent/internal/api"
)

// DailyQuota enforces a fixed number of requests per API key per UTC day.
// Counters live in memory; they reset when the day rolls over and on
// process restart, which is acceptable for an abuse brake, not billing.
type DailyQuota struct {
	limit int

	mu     sync.Mutex
	day    string
	counts map[string]int
	now    func() time.Time
}

// NewDailyQuota creates a quota allowing limit requests per key per day.
// A non-positive limit disables enforcement.
func NewDailyQuota(limit int) *DailyQuota {
	return &DailyQuota{
		limit:  limit,
		counts: make(map[string]int),
		now:    time.Now,
	}
}

// Allow records one request for the key and reports whether it fits
// within today's quota.
func (q *DailyQuota) Allow(keyID string) bool {
	if q.limit <= 0 {
		return true
	}

	today := q.now().UTC().Format("2006-01-02")

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.day != today {
		q.day = today
		q.counts = make(map[string]int)
	}

	if q.counts[keyID] >= q.limit {
		return false
	}

	q.counts[keyID]++
	return true
}

// Middleware rejects requests over quota with 429. Must run after
// APIKeyAuth so the key ID is on the context.
func (q *DailyQuota) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keyID := GetAPIKeyID(r.Context())
		if keyID == "" {
			api.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		if !q.Allow(keyID) {
			w.Header().Set("Retry-After", "86400")
			api.Error(w, http.StatusTooManyRequests, "daily request limit reached")
			return
		}

		next.ServeHTTP(w, r)
	})
}
