package http

import (
	"errors"
	"fmt"
	apperrors "gatepass/pkg/errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   []string
	}{
		{
			name:       "app error",
			err:        apperrors.New(apperrors.CodeNotFound, "Group not found or already exited", http.StatusNotFound),
			wantStatus: http.StatusNotFound,
			wantBody:   []string{`"code":"NOT_FOUND"`, `"message":"Group not found or already exited"`},
		},
		{
			name:       "wrapped app error",
			err:        fmt.Errorf("checkout: %w", apperrors.Validation("groupId is required", nil)),
			wantStatus: http.StatusBadRequest,
			wantBody:   []string{`"code":"VALIDATION_ERROR"`},
		},
		{
			name:       "plain error is hidden",
			err:        errors.New("connection reset by peer"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   []string{`"code":"INTERNAL_ERROR"`, `"message":"An unexpected error occurred"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			body := rec.Body.String()
			for _, want := range tt.wantBody {
				if !strings.Contains(body, want) {
					t.Errorf("body %s missing %s", body, want)
				}
			}
			if strings.Contains(body, "connection reset") {
				t.Errorf("internal error text leaked: %s", body)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		GroupID string `json:"groupId"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
		want    string
	}{
		{name: "valid", body: `{"groupId":"AB12"}`, want: "AB12"},
		{name: "empty body", body: ``, wantErr: true},
		{name: "malformed", body: `{"groupId":`, wantErr: true},
		{name: "two objects", body: `{"groupId":"A"}{"groupId":"B"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/visitors/exit", strings.NewReader(tt.body))
			var p payload
			err := DecodeJSON(req, &p)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				if apperrors.AsAppError(err).StatusCode() != http.StatusBadRequest {
					t.Errorf("status = %d, want 400", apperrors.AsAppError(err).StatusCode())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.GroupID != tt.want {
				t.Errorf("GroupID = %q, want %q", p.GroupID, tt.want)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer   tok ", "tok", true},
		{"Basic dXNlcjpwYXNz", "", false},
		{"Bearer", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/visitors", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		got, ok := BearerToken(req)
		if got != tt.want || ok != tt.ok {
			t.Errorf("BearerToken(%q) = (%q, %v), want (%q, %v)", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}
