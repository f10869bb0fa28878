package market

import (
	"math"
	"sync"
	"time"
)

// defaultTrackerWindow is the trailing interval retained for usage stats.
const defaultTrackerWindow = time.Hour

// usageRecord is a single outbound call outcome. Immutable once appended.
type usageRecord struct {
	at       time.Time
	endpoint string
	status   int
}

// UsageStats is a point-in-time snapshot of outbound call activity within
// the tracker window.
type UsageStats struct {
	TotalRequests     int     `json:"total_requests"`
	SuccessCount      int     `json:"success_count"`
	ErrorCount        int     `json:"error_count"`
	RequestsPerMinute float64 `json:"requests_per_minute"`
	WindowSeconds     int     `json:"window_size"`
}

// UsageTracker keeps a bounded, self-pruning log of outbound marketplace
// calls over a sliding time window. Records arrive in non-decreasing
// timestamp order, so eviction always happens from the head of the slice.
type UsageTracker struct {
	mu      sync.Mutex
	window  time.Duration
	records []usageRecord
	clock   func() time.Time
}

// NewUsageTracker returns a tracker retaining window of history. A
// non-positive window falls back to one hour.
func NewUsageTracker(window time.Duration) *UsageTracker {
	if window <= 0 {
		window = defaultTrackerWindow
	}
	return &UsageTracker{
		window: window,
		clock:  time.Now,
	}
}

// Record appends a call outcome, evicting anything older than the window
// first.
func (t *UsageTracker) Record(endpoint string, status int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.evict(now)
	t.records = append(t.records, usageRecord{at: now, endpoint: endpoint, status: status})
}

// Stats evicts stale records and returns aggregate statistics.
// Requests-per-minute is total divided by the span between the oldest
// retained record and now; an empty tracker reports zero.
func (t *UsageTracker) Stats() UsageStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.evict(now)

	stats := UsageStats{
		TotalRequests: len(t.records),
		WindowSeconds: int(t.window.Seconds()),
	}

	for _, r := range t.records {
		if r.status >= 200 && r.status < 300 {
			stats.SuccessCount++
		}
	}
	stats.ErrorCount = stats.TotalRequests - stats.SuccessCount

	if len(t.records) > 0 {
		span := now.Sub(t.records[0].at).Seconds()
		if span > 0 {
			stats.RequestsPerMinute = math.Round(float64(stats.TotalRequests)/span*60*100) / 100
		}
	}

	return stats
}

func (t *UsageTracker) now() time.Time {
	if t.clock != nil {
		return t.clock()
	}
	return time.Now()
}

// evict drops records older than the window relative to now.
// Caller must hold t.mu.
func (t *UsageTracker) evict(now time.Time) {
	cutoff := now.Add(-t.window)
	i := 0
	for i < len(t.records) && t.records[i].at.Before(cutoff) {
		i++
	}
	if i > 0 {
		t.records = append(t.records[:0], t.records[i:]...)
	}
}
