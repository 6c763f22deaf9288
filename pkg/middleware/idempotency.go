package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	apperrors "gatepass/pkg/errors"
	httputil "gatepass/pkg/http"
	"gatepass/pkg/logger"
	"io"
	"net/http"
	"slices"
	"sync"
	"time"
)

const DefaultIdempotencyHeader = "Idempotency-Key"

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*CachedResponse, bool)
	Set(ctx context.Context, key string, response *CachedResponse)
	Stop() // Stop cleanup goroutines and release resources
}

type CachedResponse struct {
	StatusCode  int         `json:"status_code"`
	Headers     http.Header `json:"headers"`
	Body        []byte      `json:"body"`
	CreatedAt   time.Time   `json:"created_at"`
	Fingerprint string      `json:"fingerprint"` // hash of the body and Authorization header
}

type InMemoryIdempotencyStore struct {
	mu     sync.RWMutex
	store  map[string]*CachedResponse
	ttl    time.Duration
	stopCh chan struct{}
	once   sync.Once
}

func NewInMemoryIdempotencyStore(ttl time.Duration) *InMemoryIdempotencyStore {
	store := &InMemoryIdempotencyStore{
		store:  make(map[string]*CachedResponse),
		ttl:    ttl,
		stopCh: make(chan struct{}),
	}

	go store.cleanup()

	return store
}

func (s *InMemoryIdempotencyStore) Get(_ context.Context, key string) (*CachedResponse, bool) {
	s.mu.RLock()
	response, exists := s.store[key]
	s.mu.RUnlock()

	if !exists {
		return nil, false
	}

	if time.Since(response.CreatedAt) > s.ttl {
		s.mu.Lock()
		delete(s.store, key)
		s.mu.Unlock()
		return nil, false
	}

	return response, true
}

func (s *InMemoryIdempotencyStore) Set(_ context.Context, key string, response *CachedResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	response.CreatedAt = time.Now()
	s.store[key] = response
}

func (s *InMemoryIdempotencyStore) cleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			for key, response := range s.store {
				if time.Since(response.CreatedAt) > s.ttl {
					delete(s.store, key)
				}
			}
			s.mu.Unlock()
		case <-s.stopCh:
			return
		}
	}
}

func (s *InMemoryIdempotencyStore) Stop() {
	s.once.Do(func() { close(s.stopCh) })
}

type responseCapture struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (rc *responseCapture) WriteHeader(statusCode int) {
	rc.statusCode = statusCode
	rc.ResponseWriter.WriteHeader(statusCode)
}

func (rc *responseCapture) Write(b []byte) (int, error) {
	rc.body.Write(b)
	return rc.ResponseWriter.Write(b)
}

// Idempotency replays the first successful response for a repeated
// Idempotency-Key on POST requests. Keys are scoped by path, so the same key
// sent to register and exit does not collide. A reused key whose body or
// Authorization header differs from the cached request is rejected with 422.
// Requests to skipPaths are never cached.
func Idempotency(store IdempotencyStore, headerName string, log *logger.Logger, skipPaths ...string) func(http.Handler) http.Handler {
	if headerName == "" {
		headerName = DefaultIdempotencyHeader
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(headerName)

			if key == "" || r.Method != http.MethodPost || slices.Contains(skipPaths, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			key = r.URL.Path + ":" + key

			fingerprint, err := requestFingerprint(r)
			if err != nil {
				httputil.WriteError(w, err)
				return
			}

			if cached, found := store.Get(r.Context(), key); found {
				if cached.Fingerprint != fingerprint {
					log.Warn("Idempotency key reused with a different request",
						"request_id", logger.RequestIDFromContext(r.Context()),
						"path", r.URL.Path,
					)
					httputil.WriteError(w, apperrors.New(apperrors.CodeConflict,
						fmt.Sprintf("%s was already used for a different request", headerName),
						http.StatusUnprocessableEntity))
					return
				}
				log.Debug("Replaying idempotent response",
					"request_id", logger.RequestIDFromContext(r.Context()),
					"path", r.URL.Path,
				)
				replayCachedResponse(w, cached)
				return
			}

			capture := &responseCapture{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
				body:           &bytes.Buffer{},
			}
			next.ServeHTTP(capture, r)

			if !shouldCacheResponse(capture.statusCode) {
				return
			}
			headers := w.Header().Clone()
			headers.Del(RequestIDHeader)
			store.Set(r.Context(), key, &CachedResponse{
				StatusCode:  capture.statusCode,
				Headers:     headers,
				Body:        capture.body.Bytes(),
				Fingerprint: fingerprint,
			})
		})
	}
}

// requestFingerprint hashes the body and Authorization header, then restores
// the body for the next handler.
func requestFingerprint(r *http.Request) (string, error) {
	h := sha256.New()
	if r.Body != nil {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return "", apperrors.New(apperrors.CodeInvalidInput,
					fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit), http.StatusRequestEntityTooLarge)
			}
			return "", apperrors.InvalidInput("unable to read request body")
		}
		r.Body = io.NopCloser(bytes.NewReader(raw))
		h.Write(raw)
	}
	h.Write([]byte{0})
	h.Write([]byte(r.Header.Get("Authorization")))
	return hex.EncodeToString(h.Sum(nil)), nil
}

func replayCachedResponse(w http.ResponseWriter, cached *CachedResponse) {
	for key, values := range cached.Headers {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(cached.StatusCode)
	_, _ = w.Write(cached.Body)
}

func shouldCacheResponse(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
