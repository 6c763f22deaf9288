package handler

import (
	"context"
	"encoding/json"
	apperrors "gatepass/pkg/errors"
	"gatepass/pkg/logger"
	"gatepass/pkg/model"
	"gatepass/pkg/viewmodel"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
)

type mockVisitorService struct {
	registerFunc  func(ctx context.Context, reg *model.VisitorRegistration) (*model.VisitorGroup, error)
	checkoutFunc  func(ctx context.Context, groupID string) (*model.VisitorGroup, error)
	listFunc      func(ctx context.Context) ([]model.VisitorGroup, error)
	getFunc       func(ctx context.Context, groupID string) (*model.VisitorGroup, error)
	dashboardFunc func(ctx context.Context, search string, status viewmodel.StatusFilter) (*viewmodel.Dashboard, error)
}

func (m *mockVisitorService) Register(ctx context.Context, reg *model.VisitorRegistration) (*model.VisitorGroup, error) {
	return m.registerFunc(ctx, reg)
}

func (m *mockVisitorService) Checkout(ctx context.Context, groupID string) (*model.VisitorGroup, error) {
	return m.checkoutFunc(ctx, groupID)
}

func (m *mockVisitorService) List(ctx context.Context) ([]model.VisitorGroup, error) {
	return m.listFunc(ctx)
}

func (m *mockVisitorService) GetByGroupID(ctx context.Context, groupID string) (*model.VisitorGroup, error) {
	return m.getFunc(ctx, groupID)
}

func (m *mockVisitorService) Dashboard(ctx context.Context, search string, status viewmodel.StatusFilter) (*viewmodel.Dashboard, error) {
	return m.dashboardFunc(ctx, search, status)
}

func newRouter(svc *mockVisitorService, admin func(http.Handler) http.Handler) *httprouter.Router {
	router := httprouter.New()
	NewVisitorHandler(svc, logger.Discard(), admin).RegisterRoutes(router)
	return router
}

func serve(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body %q: %v", w.Body.String(), err)
	}
	return body
}

func TestRegister(t *testing.T) {
	svc := &mockVisitorService{
		registerFunc: func(ctx context.Context, reg *model.VisitorRegistration) (*model.VisitorGroup, error) {
			if reg.VisitorName != "Asha" || len(reg.Companions) != 1 {
				t.Errorf("unexpected registration %+v", reg)
			}
			return &model.VisitorGroup{
				GroupID:        "AB12",
				PrimaryVisitor: reg.PrimaryVisitor,
				Companions:     reg.Companions,
				InTime:         time.Now(),
			}, nil
		},
	}

	for _, path := range []string{"/visitors/register", "/api/visitors/register"} {
		w := serve(newRouter(svc, nil), http.MethodPost, path,
			`{"visitorName":"Asha","phoneNumber":"+919812345678","address":"x","reason":"y","photoUrl":"z","companions":[{"name":"Ravi"}]}`)

		if w.Code != http.StatusCreated {
			t.Fatalf("%s: status = %d, body = %s", path, w.Code, w.Body.String())
		}
		body := decode(t, w)
		if body["message"] != "Visitor registered" || body["groupId"] != "AB12" {
			t.Errorf("%s: unexpected body %v", path, body)
		}
		group := body["group"].(map[string]any)
		if group["status"] != "checked-in" || group["outTime"] != nil {
			t.Errorf("%s: unexpected group %v", path, group)
		}
	}
}

func TestRegister_BadBody(t *testing.T) {
	svc := &mockVisitorService{}
	w := serve(newRouter(svc, nil), http.MethodPost, "/visitors/register", `{"visitorName":`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if body := decode(t, w); body["code"] != apperrors.CodeInvalidInput {
		t.Errorf("unexpected body %v", body)
	}
}

func TestCheckout(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "success", wantStatus: http.StatusOK},
		{
			name:       "already exited",
			err:        apperrors.New(apperrors.CodeAlreadyCheckedOut, "Group not found or already exited", http.StatusNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   apperrors.CodeAlreadyCheckedOut,
		},
		{
			name:       "missing id",
			err:        apperrors.InvalidInput("groupId is required"),
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.CodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockVisitorService{
				checkoutFunc: func(ctx context.Context, groupID string) (*model.VisitorGroup, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					out := time.Now()
					return &model.VisitorGroup{GroupID: groupID, OutTime: &out}, nil
				},
			}

			w := serve(newRouter(svc, nil), http.MethodPost, "/api/visitors/exit", `{"groupId":"AB12"}`)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
			}
			body := decode(t, w)
			if tt.wantCode != "" {
				if body["code"] != tt.wantCode || body["message"] == "" {
					t.Errorf("unexpected error body %v", body)
				}
				return
			}
			if body["message"] != "Visitor(s) marked out" {
				t.Errorf("unexpected body %v", body)
			}
		})
	}
}

func TestList_EmptyIsArray(t *testing.T) {
	svc := &mockVisitorService{
		listFunc: func(ctx context.Context) ([]model.VisitorGroup, error) {
			return []model.VisitorGroup{}, nil
		},
	}

	w := serve(newRouter(svc, nil), http.MethodGet, "/visitors", "")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("status = %d, body = %q", w.Code, w.Body.String())
	}
}

func TestDashboard(t *testing.T) {
	var gotSearch string
	var gotStatus viewmodel.StatusFilter
	svc := &mockVisitorService{
		dashboardFunc: func(ctx context.Context, search string, status viewmodel.StatusFilter) (*viewmodel.Dashboard, error) {
			gotSearch, gotStatus = search, status
			return &viewmodel.Dashboard{Stats: viewmodel.Stats{TotalVisitors: 1, CheckedIn: 1}, FilteredVisitors: []model.VisitorGroup{}}, nil
		},
	}
	router := newRouter(svc, nil)

	w := serve(router, http.MethodGet, "/visitors/dashboard?search=asha&status=checked-in", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if gotSearch != "asha" || gotStatus != viewmodel.FilterCheckedIn {
		t.Errorf("service received search=%q status=%q", gotSearch, gotStatus)
	}
	stats := decode(t, w)["stats"].(map[string]any)
	if stats["totalVisitors"] != float64(1) {
		t.Errorf("unexpected stats %v", stats)
	}

	w = serve(router, http.MethodGet, "/visitors/dashboard?status=gone", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown status filter: status = %d", w.Code)
	}
}

func TestGetByGroupID(t *testing.T) {
	svc := &mockVisitorService{
		getFunc: func(ctx context.Context, groupID string) (*model.VisitorGroup, error) {
			if groupID != "AB12" {
				return nil, apperrors.NotFoundWithID("Visitor group", groupID)
			}
			return &model.VisitorGroup{GroupID: groupID}, nil
		},
	}
	router := newRouter(svc, nil)

	if w := serve(router, http.MethodGet, "/visitors/AB12", ""); w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
	if w := serve(router, http.MethodGet, "/visitors/ZZZZ", ""); w.Code != http.StatusNotFound {
		t.Errorf("status = %d", w.Code)
	}
}

func TestAdminRoutesUseAdminMiddleware(t *testing.T) {
	deny := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	}
	svc := &mockVisitorService{
		registerFunc: func(ctx context.Context, reg *model.VisitorRegistration) (*model.VisitorGroup, error) {
			return &model.VisitorGroup{GroupID: "AB12"}, nil
		},
	}
	router := newRouter(svc, deny)

	for _, route := range []struct{ method, path, body string }{
		{http.MethodGet, "/visitors", ""},
		{http.MethodGet, "/visitors/dashboard", ""},
		{http.MethodGet, "/api/visitors/AB12", ""},
		{http.MethodPost, "/visitors/exit", `{"groupId":"AB12"}`},
	} {
		if w := serve(router, route.method, route.path, route.body); w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want 401", route.method, route.path, w.Code)
		}
	}

	if w := serve(router, http.MethodPost, "/visitors/register", `{}`); w.Code != http.StatusCreated {
		t.Errorf("registration must stay public, status = %d", w.Code)
	}
}
