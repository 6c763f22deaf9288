package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestWrap(t *testing.T) {
	originalErr := errors.New("mongo: server selection timeout")
	wrapped := Wrap(originalErr, CodeInternal, "internal error", http.StatusInternalServerError)

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if errors.Unwrap(wrapped) != originalErr {
		t.Errorf("Unwrap() should return original error")
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			appErr:   &AppError{Code: CodeNotFound, Message: "visitor group not found"},
			expected: "NOT_FOUND: visitor group not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("connection refused"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: connection refused)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"not found", NotFound("Visitor group"), CodeNotFound, http.StatusNotFound},
		{"validation is a bad request", Validation("invalid", nil), CodeValidation, http.StatusBadRequest},
		{"invalid input", InvalidInput("bad json"), CodeInvalidInput, http.StatusBadRequest},
		{"unauthorized", Unauthorized("login required"), CodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden("denied"), CodeForbidden, http.StatusForbidden},
		{"conflict", Conflict("email taken"), CodeConflict, http.StatusConflict},
		{"too many requests", TooManyRequests("slow down"), CodeTooManyRequests, http.StatusTooManyRequests},
		{"internal", Internal("boom", nil), CodeInternal, http.StatusInternalServerError},
		{"timeout", Timeout("slow store"), CodeTimeout, http.StatusGatewayTimeout},
		{"unavailable", Unavailable("SMS gateway"), CodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if tt.err.StatusCode() != tt.wantStatus {
				t.Errorf("status = %d, want %d", tt.err.StatusCode(), tt.wantStatus)
			}
		})
	}
}

func TestNotFoundWithID(t *testing.T) {
	err := NotFoundWithID("Visitor group", "AB12")

	if err.Details["id"] != "AB12" {
		t.Errorf("expected id 'AB12', got %v", err.Details["id"])
	}
	if err.Message != "Visitor group not found" {
		t.Errorf("unexpected message %q", err.Message)
	}
}

func TestStatusCodeDefaultsToInternal(t *testing.T) {
	err := &AppError{Code: "CUSTOM", Message: "no status"}
	if err.StatusCode() != http.StatusInternalServerError {
		t.Errorf("StatusCode() = %d, want 500", err.StatusCode())
	}
}

func TestIsAppError(t *testing.T) {
	appErr := NotFound("Visitor group")

	if !IsAppError(appErr) {
		t.Errorf("IsAppError() should return true for AppError")
	}
	if !IsAppError(fmt.Errorf("checkout: %w", appErr)) {
		t.Errorf("IsAppError() should see through wrapping")
	}
	if IsAppError(errors.New("regular error")) {
		t.Errorf("IsAppError() should return false for regular error")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := NotFound("Visitor group")
	if AsAppError(appErr) != appErr {
		t.Errorf("AsAppError() should return same AppError")
	}

	regularErr := errors.New("duplicate key")
	result := AsAppError(regularErr)
	if result.Code != CodeInternal {
		t.Errorf("AsAppError() should wrap regular error as internal error")
	}
	if result.Err != regularErr {
		t.Errorf("AsAppError() should wrap the original error")
	}
	if strings.Contains(result.Message, "duplicate") {
		t.Errorf("internal message leaked cause: %q", result.Message)
	}
}

func TestAppError_ToJSON(t *testing.T) {
	body := string(NotFoundWithID("Visitor group", "AB12").ToJSON())

	for _, want := range []string{`"code":"NOT_FOUND"`, `"message":"Visitor group not found"`, `"id":"AB12"`} {
		if !strings.Contains(body, want) {
			t.Errorf("ToJSON() = %s, missing %s", body, want)
		}
	}
}
