package github

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Unknown marks a rate limit value that was absent or unparseable.
const Unknown = -1

// DefaultThrottleDelay is the pause taken when the remaining quota is exhausted
// or unknown.
const DefaultThrottleDelay = 3 * time.Second

// RateStatus is the request quota reported with a listing response.
type RateStatus struct {
	// Remaining is the number of requests left in the current window.
	Remaining int

	// Limit is the window's total quota.
	Limit int
}

// ParseRateStatus reads the X-RateLimit-Limit and X-RateLimit-Remaining
// headers. Header names are case-insensitive.
func ParseRateStatus(h http.Header) RateStatus {
	return RateStatus{
		Remaining: headerInt(h, "X-RateLimit-Remaining"),
		Limit:     headerInt(h, "X-RateLimit-Limit"),
	}
}

func headerInt(h http.Header, key string) int {
	v := strings.TrimSpace(h.Get(key))
	if v == "" {
		return Unknown
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return Unknown
	}
	return n
}

// ShouldPause reports whether the next listing request must wait.
// An unknown remaining count is treated as exhausted.
func ShouldPause(s RateStatus) bool {
	return s.Remaining == Unknown || s.Remaining <= 0
}

// HasNextPage reports whether a Link header announces a rel="next" page.
func HasNextPage(h http.Header) bool {
	for _, link := range h.Values("Link") {
		for _, part := range strings.Split(link, ",") {
			for _, param := range strings.Split(part, ";")[1:] {
				param = strings.ReplaceAll(strings.TrimSpace(param), " ", "")
				if strings.EqualFold(param, `rel="next"`) || strings.EqualFold(param, "rel=next") {
					return true
				}
			}
		}
	}
	return false
}

// Throttle pauses between listing requests when the quota calls for it.
type Throttle struct {
	delay time.Duration
	sleep func(ctx context.Context, d time.Duration) error
}

// NewThrottle creates a Throttle with the given pause. A non-positive delay
// falls back to DefaultThrottleDelay.
func NewThrottle(delay time.Duration) *Throttle {
	if delay <= 0 {
		delay = DefaultThrottleDelay
	}
	return &Throttle{delay: delay, sleep: sleepContext}
}

// Delay returns the configured pause.
func (t *Throttle) Delay() time.Duration {
	return t.delay
}

// Wait pauses for the configured delay if ShouldPause(s) holds.
// It reports whether a pause was taken and returns ctx.Err() if the
// context is cancelled while waiting.
func (t *Throttle) Wait(ctx context.Context, s RateStatus) (bool, error) {
	if !ShouldPause(s) {
		return false, nil
	}
	return true, t.sleep(ctx, t.delay)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
