package main

import (
	"bytes"
	"encoding/json"
	"gatepass/pkg/model"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	groups     []model.VisitorGroup
	registered *model.VisitorRegistration
	authHeader string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/api/auth/login":
		_ = json.NewEncoder(w).Encode(model.AuthResponse{Token: "tok", Name: "Desk", Email: "desk@example.com"})
	case "/api/visitors":
		f.authHeader = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(f.groups)
	case "/api/visitors/exit":
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"ALREADY_CHECKED_OUT","message":"Group not found or already exited"}`))
	case "/api/visitors/register":
		var reg model.VisitorRegistration
		_ = json.NewDecoder(r.Body).Decode(&reg)
		f.registered = &reg
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"Visitor registered","groupId":"QW12","group":{"groupId":"QW12","companions":[{"name":"Bo"}]}}`))
	default:
		http.NotFound(w, r)
	}
}

func run(t *testing.T, srv *httptest.Server, sessionFile string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	argv := append([]string{"gatepassctl", "--server", srv.URL, "--session-file", sessionFile}, args...)
	err := newApp(&out).Run(argv)
	return out.String(), err
}

func TestCLI_LoginThenDashboard(t *testing.T) {
	out := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	api := &fakeAPI{groups: []model.VisitorGroup{
		{GroupID: "AB12", PrimaryVisitor: model.PrimaryVisitor{VisitorName: "Alice", Reason: "Interview"}},
		{GroupID: "CD34", PrimaryVisitor: model.PrimaryVisitor{VisitorName: "Bob", Reason: "Delivery"}, OutTime: &out},
	}}
	srv := httptest.NewServer(api)
	defer srv.Close()
	sessionFile := filepath.Join(t.TempDir(), "session.json")

	_, err := run(t, srv, sessionFile, "list")
	require.ErrorIs(t, err, errNotLoggedIn)

	text, err := run(t, srv, sessionFile, "login", "--email", "desk@example.com", "--password", "secret123")
	require.NoError(t, err)
	require.Contains(t, text, "Logged in as Desk")

	text, err = run(t, srv, sessionFile, "dashboard", "--status", "checked-in")
	require.NoError(t, err)
	require.Equal(t, "Bearer tok", api.authHeader)
	require.Contains(t, text, "Total: 2  Checked in: 1  Checked out: 1")
	require.Contains(t, text, "AB12")
	require.NotContains(t, text, "CD34")

	_, err = run(t, srv, sessionFile, "dashboard", "--status", "gone")
	require.Error(t, err)

	_, err = run(t, srv, sessionFile, "logout")
	require.NoError(t, err)
	_, err = run(t, srv, sessionFile, "list")
	require.ErrorIs(t, err, errNotLoggedIn)
}

func TestCLI_CheckoutReportsServerError(t *testing.T) {
	srv := httptest.NewServer(&fakeAPI{})
	defer srv.Close()
	sessionFile := filepath.Join(t.TempDir(), "session.json")

	_, err := run(t, srv, sessionFile, "login", "--email", "desk@example.com", "--password", "secret123")
	require.NoError(t, err)

	_, err = run(t, srv, sessionFile, "checkout", "AB12")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Group not found or already exited")
}

func TestCLI_Register(t *testing.T) {
	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	defer srv.Close()

	text, err := run(t, srv, filepath.Join(t.TempDir(), "session.json"),
		"register",
		"--name", "Alice",
		"--phone", "+14155550123",
		"--address", "1 Main St",
		"--reason", "Interview",
		"--photo-url", "https://example.com/a.jpg",
		"--companion", "Bo",
		"--companion", "Cy:+14155550124",
	)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(text, "Visitor registered. Group ID: QW12"))
	require.Len(t, api.registered.Companions, 2)
	require.Equal(t, "+14155550124", api.registered.Companions[1].PhoneNumber)
}

func TestParseCompanions(t *testing.T) {
	got, err := parseCompanions([]string{"Bo", " Cy : +1415 "})
	require.NoError(t, err)
	require.Equal(t, []model.Companion{{Name: "Bo"}, {Name: "Cy", PhoneNumber: "+1415"}}, got)

	_, err = parseCompanions([]string{":+1415"})
	require.Error(t, err)
}
