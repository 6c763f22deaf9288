package middleware

import (
	"bytes"
	"encoding/json"
	apperrors "gatepass/pkg/errors"
	httputil "gatepass/pkg/http"
	"gatepass/pkg/logger"
	"io"
	"net/http"
	"sync"
	"time"
)

type PhoneExtractor func(r *http.Request) string

// PhoneRateLimiter is a sliding-window limiter keyed by phone number. It guards
// the endpoints that trigger an SMS.
type PhoneRateLimiter struct {
	mu             sync.Mutex
	requests       map[string][]time.Time
	limit          int
	window         time.Duration
	phoneExtractor PhoneExtractor
	log            *logger.Logger
	stopCh         chan struct{}
	once           sync.Once
	now            func() time.Time
}

func NewPhoneRateLimiter(limit int, window time.Duration, extractor PhoneExtractor, log *logger.Logger) *PhoneRateLimiter {
	if extractor == nil {
		extractor = DefaultPhoneExtractor
	}
	limiter := &PhoneRateLimiter{
		requests:       make(map[string][]time.Time),
		limit:          limit,
		window:         window,
		phoneExtractor: extractor,
		log:            log,
		stopCh:         make(chan struct{}),
		now:            time.Now,
	}

	go limiter.cleanup()

	return limiter
}

func (rl *PhoneRateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			now := rl.now()
			for phone, timestamps := range rl.requests {
				if len(timestamps) == 0 || now.Sub(timestamps[len(timestamps)-1]) > rl.window {
					delete(rl.requests, phone)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *PhoneRateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stopCh) })
}

func (rl *PhoneRateLimiter) Allow(phone string) bool {
	if phone == "" {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	valid := make([]time.Time, 0, len(rl.requests[phone]))
	for _, ts := range rl.requests[phone] {
		if now.Sub(ts) < rl.window {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[phone] = valid
		return false
	}

	rl.requests[phone] = append(valid, now)
	return true
}

func PhoneRateLimit(limiter *PhoneRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			phone := limiter.phoneExtractor(r)

			if phone != "" && !limiter.Allow(phone) {
				limiter.log.Warn("Rate limit exceeded",
					"request_id", logger.RequestIDFromContext(r.Context()),
					"phone", phone,
					"path", r.URL.Path,
				)
				httputil.WriteError(w, apperrors.TooManyRequests("Too many code requests for this phone number, try again later"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func DefaultPhoneExtractor(r *http.Request) string {
	return r.Header.Get("X-Phone-Number")
}

// BodyPhoneExtractor reads "phoneNumber" from a JSON body, restores the body
// for the next handler and normalizes the value with normalize.
func BodyPhoneExtractor(normalize func(string) string) PhoneExtractor {
	return func(r *http.Request) string {
		if r.Body == nil {
			return ""
		}
		raw, err := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(raw))
		if err != nil {
			return ""
		}

		var body struct {
			PhoneNumber string `json:"phoneNumber"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return ""
		}
		if normalize == nil {
			return body.PhoneNumber
		}
		return normalize(body.PhoneNumber)
	}
}

// ForPaths applies mw only to requests whose path is listed.
func ForPaths(paths []string, mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		guarded := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := set[r.URL.Path]; ok {
				guarded.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
