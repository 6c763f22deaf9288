package app

import (
	"gatepass/pkg/config"
	"gatepass/pkg/contracts"
	"gatepass/pkg/logger"
	"gatepass/pkg/metrics"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
)

type routes func(*httprouter.Router)

func (f routes) RegisterRoutes(r *httprouter.Router) { f(r) }

func newTestApp(t *testing.T, sends *int32) *Application {
	t.Helper()
	cfg := &config.Config{
		Log:                  logger.Discard(),
		Port:                 "0",
		RequestTimeout:       time.Second,
		IdempotencyTTL:       time.Minute,
		MaxRequestSize:       1024,
		PhoneRegions:         []string{"IN", "US"},
		OTPRateLimitRequests: 2,
		OTPRateLimitWindow:   time.Minute,
	}

	ops := routes(func(r *httprouter.Router) {
		r.GET("/health", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
			w.WriteHeader(http.StatusOK)
		})
	})
	api := routes(func(r *httprouter.Router) {
		contracts.Mount(r, http.MethodPost, "/otp/send", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
			atomic.AddInt32(sends, 1)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"message":"sent"}`))
		})
		contracts.Mount(r, http.MethodPost, "/auth/login", func(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
			b, _ := io.ReadAll(req.Body)
			if !strings.Contains(string(b), `"password":"right"`) {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"token":"admin-token"}`))
		})
	})

	a := NewApplication(cfg, metrics.New(prometheus.NewRegistry()))
	a.LimitPhonePaths(contracts.Paths("/otp/send")...)
	a.SkipIdempotency(contracts.Paths("/auth/login")...)
	a.SetApp(ops, api)
	t.Cleanup(func() {
		a.idempotencyStore.Stop()
		a.rateLimiter.Stop()
	})
	return a
}

func send(h http.Handler, path, phone, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"phoneNumber":"`+phone+`"}`))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestApplication_Health(t *testing.T) {
	var sends int32
	h := newTestApp(t, &sends).Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}

func TestApplication_PhoneRateLimitSharedAcrossPrefixes(t *testing.T) {
	var sends int32
	h := newTestApp(t, &sends).Handler()

	if w := send(h, "/otp/send", "+919812345678", ""); w.Code != http.StatusOK {
		t.Fatalf("first send: status = %d", w.Code)
	}
	// Same number in national format under the /api prefix.
	if w := send(h, "/api/otp/send", "9812345678", ""); w.Code != http.StatusOK {
		t.Fatalf("second send: status = %d", w.Code)
	}
	if w := send(h, "/otp/send", "+919812345678", ""); w.Code != http.StatusTooManyRequests {
		t.Fatalf("third send: status = %d, want 429", w.Code)
	}
	if w := send(h, "/otp/send", "+14155550123", ""); w.Code != http.StatusOK {
		t.Fatalf("other phone: status = %d", w.Code)
	}
	if sends != 3 {
		t.Errorf("handler reached %d times, want 3", sends)
	}
}

func TestApplication_IdempotentReplay(t *testing.T) {
	var sends int32
	h := newTestApp(t, &sends).Handler()

	first := send(h, "/otp/send", "+14155550123", "key-1")
	second := send(h, "/otp/send", "+14155550123", "key-1")

	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("statuses = %d, %d", first.Code, second.Code)
	}
	if second.Header().Get("Idempotent-Replayed") != "true" {
		t.Errorf("second response should be a replay")
	}
	if sends != 1 {
		t.Errorf("handler reached %d times, want 1", sends)
	}
}

func TestApplication_LoginIsNeverReplayed(t *testing.T) {
	var sends int32
	h := newTestApp(t, &sends).Handler()

	login := func(password string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"email":"admin@example.com","password":"`+password+`"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", "K1")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	if w := login("right"); w.Code != http.StatusOK {
		t.Fatalf("first login: status = %d", w.Code)
	}
	w := login("wrong")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: status = %d, want 401", w.Code)
	}
	if strings.Contains(w.Body.String(), "admin-token") {
		t.Errorf("token leaked to second caller: %s", w.Body.String())
	}
}

func TestApplication_RejectsNonJSON(t *testing.T) {
	var sends int32
	h := newTestApp(t, &sends).Handler()

	req := httptest.NewRequest(http.MethodPost, "/otp/send", strings.NewReader("phoneNumber=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", w.Code)
	}
}

func TestApplication_CORSPreflight(t *testing.T) {
	var sends int32
	h := newTestApp(t, &sends).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/otp/send", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("status = %d, headers = %v", w.Code, w.Header())
	}
}
