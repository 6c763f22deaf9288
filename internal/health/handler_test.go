package health

import (
	"context"
	"encoding/json"
	"errors"
	"gatepass/pkg/logger"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
)

func TestHealth(t *testing.T) {
	router := httprouter.New()
	NewHandler(logger.Discard()).RegisterRoutes(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestReady(t *testing.T) {
	tests := []struct {
		name       string
		mongoErr   error
		wantStatus int
		wantMongo  string
	}{
		{name: "all reachable", wantStatus: http.StatusOK, wantMongo: "ok"},
		{name: "mongo down", mongoErr: errors.New("no reachable servers"), wantStatus: http.StatusServiceUnavailable, wantMongo: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(logger.Discard()).
				WithCheck("mongodb", func(ctx context.Context) error { return tt.mongoErr }).
				WithCheck("redis", func(ctx context.Context) error { return nil })
			router := httprouter.New()
			h.RegisterRoutes(router)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}

			var resp Response
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Dependencies["mongodb"] != tt.wantMongo || resp.Dependencies["redis"] != "ok" {
				t.Errorf("dependencies = %v", resp.Dependencies)
			}
		})
	}
}
