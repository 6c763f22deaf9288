package handler

import (
	"context"
	"encoding/json"
	apperrors "gatepass/pkg/errors"
	"gatepass/pkg/logger"
	"gatepass/pkg/model"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
)

type mockAuthService struct {
	registerFunc func(ctx context.Context, reg *model.UserRegistration) (*model.AuthResponse, error)
	loginFunc    func(ctx context.Context, creds *model.Credentials) (*model.AuthResponse, error)
}

func (m *mockAuthService) Register(ctx context.Context, reg *model.UserRegistration) (*model.AuthResponse, error) {
	return m.registerFunc(ctx, reg)
}

func (m *mockAuthService) Login(ctx context.Context, creds *model.Credentials) (*model.AuthResponse, error) {
	return m.loginFunc(ctx, creds)
}

func serve(svc *mockAuthService, path, body string) *httptest.ResponseRecorder {
	router := httprouter.New()
	NewAuthHandler(svc, logger.Discard()).RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegister(t *testing.T) {
	svc := &mockAuthService{
		registerFunc: func(ctx context.Context, reg *model.UserRegistration) (*model.AuthResponse, error) {
			if reg.ConfirmPassword != reg.Password {
				t.Errorf("confirmPassword not decoded: %+v", reg)
			}
			return &model.AuthResponse{Token: "jwt", Name: reg.Name, Email: reg.Email}, nil
		},
	}

	w := serve(svc, "/api/auth/register", `{"name":"Desk","email":"d@x.io","password":"longenough","confirmPassword":"longenough"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp model.AuthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Token != "jwt" || resp.Email != "d@x.io" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestLogin(t *testing.T) {
	svc := &mockAuthService{
		loginFunc: func(ctx context.Context, creds *model.Credentials) (*model.AuthResponse, error) {
			if creds.Password != "right" {
				return nil, apperrors.Unauthorized("Invalid email or password")
			}
			return &model.AuthResponse{Token: "jwt"}, nil
		},
	}

	if w := serve(svc, "/auth/login", `{"email":"d@x.io","password":"right"}`); w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}

	w := serve(svc, "/auth/login", `{"email":"d@x.io","password":"wrong"}`)
	if w.Code != http.StatusUnauthorized || !strings.Contains(w.Body.String(), "Invalid email or password") {
		t.Errorf("status = %d, body = %s", w.Code, w.Body.String())
	}
}
