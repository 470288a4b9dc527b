package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ispconsole/backoffice/internal/adapter/cache/memory"
	"github.com/ispconsole/backoffice/internal/filter"
	"github.com/ispconsole/backoffice/internal/port"
	"github.com/ispconsole/backoffice/internal/query"
	"github.com/ispconsole/backoffice/internal/service"
	"github.com/ispconsole/backoffice/internal/session"
	"github.com/ispconsole/backoffice/internal/table"
)

const testSecret = "router-test-secret"

type fakeBackend struct {
	mu        sync.Mutex
	lists     []string
	creates   []map[string]any
	deletes   []string
	loginRole string // role returned on login, "" means admin
}

func (f *fakeBackend) List(_ context.Context, entity string, page, perPage int, filterQ string) (port.ListPage, error) {
	f.mu.Lock()
	f.lists = append(f.lists, filterQ)
	f.mu.Unlock()
	return port.ListPage{
		Rows:       []map[string]any{{"id": 1, "name": "Alice"}},
		Pagination: table.Pagination{Count: 1, CurrentPage: page, PerPage: perPage, Total: 1, TotalPages: 1},
	}, nil
}

func (f *fakeBackend) Get(_ context.Context, entity, id string) (map[string]any, error) {
	return map[string]any{"id": id, "name": "Alice"}, nil
}

func (f *fakeBackend) Create(_ context.Context, entity string, payload map[string]any) (map[string]any, error) {
	f.mu.Lock()
	f.creates = append(f.creates, payload)
	f.mu.Unlock()
	return payload, nil
}

func (f *fakeBackend) Update(_ context.Context, entity, id string, payload map[string]any) (map[string]any, error) {
	return payload, nil
}

func (f *fakeBackend) Delete(_ context.Context, entity, id string) error {
	f.mu.Lock()
	f.deletes = append(f.deletes, entity+"/"+id)
	f.mu.Unlock()
	return nil
}

func (f *fakeBackend) Options(context.Context, string) ([]map[string]any, error) {
	return []map[string]any{{"id": 1, "name": "North"}}, nil
}

func (f *fakeBackend) Login(_ context.Context, username, password, _ string) (port.Identity, error) {
	if password != "pw" {
		return port.Identity{}, &port.EnvelopeError{Message: "Invalid credentials"}
	}
	role := f.loginRole
	if role == "" {
		role = "admin"
	}
	return port.Identity{Token: "bearer-1", Role: role}, nil
}

func newTestRouter(t *testing.T, backend *fakeBackend) http.Handler {
	t.Helper()
	eng := query.NewEngine(backend, memory.New(), nil, query.Options{})
	svc := service.NewEntity(backend, eng, Notifier{}, nil)
	sessions := session.NewManager(backend, testSecret, time.Hour, "", "")
	return NewRouter(NewHandlers(svc, sessions, filter.DefaultOptions()), NewHub(), sessions, []string{"*"})
}

func sessionCookie(t *testing.T, role string) *http.Cookie {
	t.Helper()
	raw, err := session.Sign(testSecret, session.Claims{
		Username: "someone", Role: role, Token: "tok",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("sign session: %v", err)
	}
	return &http.Cookie{Name: session.CookieName, Value: raw}
}

func do(t *testing.T, h http.Handler, method, path, body string, cookie *http.Cookie) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	if strings.Contains(rec.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	}
	return rec, decoded
}

func TestLoginSetsSessionCookie(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t, &fakeBackend{})

	rec, body := do(t, router, http.MethodPost, "/api/login",
		`{"username":"admin","password":"pw","host":"demo"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body %s", rec.Code, rec.Body)
	}
	if body["success"] != true {
		t.Fatalf("body = %v", body)
	}

	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Fatal("no session cookie set")
	}

	rec, _ = do(t, router, http.MethodPost, "/api/login",
		`{"username":"admin","password":"wrong"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad credentials code = %d", rec.Code)
	}
}

func TestAPIRequiresSession(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t, &fakeBackend{})

	rec, body := do(t, router, http.MethodGet, "/api/entities/staffs/", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("code = %d", rec.Code)
	}
	if body["success"] != false {
		t.Fatalf("body = %v", body)
	}
}

func TestListPassesFiltersThrough(t *testing.T) {
	t.Parallel()
	backend := &fakeBackend{}
	router := newTestRouter(t, backend)

	rec, body := do(t, router, http.MethodGet,
		"/api/entities/staffs/?page=2&per_page=25&designation=technician", "",
		sessionCookie(t, "admin"))
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body %s", rec.Code, rec.Body)
	}

	if len(backend.lists) != 1 || !strings.Contains(backend.lists[0], "designation=technician") {
		t.Fatalf("upstream filters = %v", backend.lists)
	}

	data := body["data"].(map[string]any)
	pag := data["pagination"].(map[string]any)
	if pag["current_page"] != float64(2) || pag["per_page"] != float64(25) {
		t.Fatalf("pagination = %v", pag)
	}
	// A loaded page carries no skeleton flag; the shell derives it
	// from its own loading state.
	if _, ok := data["skeleton"]; ok {
		t.Fatal("skeleton flag leaked onto the wire")
	}
}

func TestCreateValidatesAgainstSchema(t *testing.T) {
	t.Parallel()
	backend := &fakeBackend{}
	router := newTestRouter(t, backend)
	cookie := sessionCookie(t, "admin")

	// Missing required name: blocked before the backend sees it.
	rec, body := do(t, router, http.MethodPost, "/api/entities/zones/",
		`{"code":"N1"}`, cookie)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("code = %d, body %s", rec.Code, rec.Body)
	}
	fields := body["error"].(map[string]any)["fields"].(map[string]any)
	if _, ok := fields["name"]; !ok {
		t.Fatalf("fields = %v", fields)
	}
	if len(backend.creates) != 0 {
		t.Fatal("invalid form reached the backend")
	}

	// Valid create goes through and raises a success toast.
	rec, body = do(t, router, http.MethodPost, "/api/entities/zones/",
		`{"name":"North","code":"N1"}`, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %d, body %s", rec.Code, rec.Body)
	}
	toasts := body["toasts"].([]any)
	if len(toasts) != 1 || toasts[0].(map[string]any)["level"] != "success" {
		t.Fatalf("toasts = %v", toasts)
	}
	if len(backend.creates) != 1 || backend.creates[0]["name"] != "North" {
		t.Fatalf("creates = %v", backend.creates)
	}
}

func TestDeleteToasts(t *testing.T) {
	t.Parallel()
	backend := &fakeBackend{}
	router := newTestRouter(t, backend)

	rec, body := do(t, router, http.MethodDelete, "/api/entities/staffs/7", "",
		sessionCookie(t, "admin"))
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	if len(backend.deletes) != 1 || backend.deletes[0] != "staffs/7" {
		t.Fatalf("deletes = %v", backend.deletes)
	}
	toasts := body["toasts"].([]any)
	if len(toasts) != 1 {
		t.Fatalf("toasts = %v", toasts)
	}
}

func TestPermissionsGateActions(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t, &fakeBackend{})
	operator := sessionCookie(t, "operator")

	// Operators may read and create clients but not delete them.
	rec, _ := do(t, router, http.MethodGet, "/api/entities/clients/", "", operator)
	if rec.Code != http.StatusOK {
		t.Fatalf("read code = %d", rec.Code)
	}
	rec, _ = do(t, router, http.MethodDelete, "/api/entities/clients/3", "", operator)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("delete code = %d", rec.Code)
	}
	rec, _ = do(t, router, http.MethodGet, "/api/entities/salaries/", "", operator)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("salaries code = %d", rec.Code)
	}
}

func TestRemoteLoginRoleLimitsAccess(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t, &fakeBackend{loginRole: "operator"})

	rec, _ := do(t, router, http.MethodPost, "/api/login",
		`{"username":"jane","password":"pw"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login code = %d", rec.Code)
	}
	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("no session cookie set")
	}

	// The session carries the remote role, not a blanket admin.
	rec, _ = do(t, router, http.MethodDelete, "/api/entities/users/1", "", cookie)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("users delete code = %d", rec.Code)
	}
	rec, _ = do(t, router, http.MethodGet, "/api/entities/clients/", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("clients read code = %d", rec.Code)
	}
}

func TestSchemaEndpoint(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t, &fakeBackend{})

	rec, body := do(t, router, http.MethodGet, "/api/entities/zones/schema", "",
		sessionCookie(t, "admin"))
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	data := body["data"].(map[string]any)
	if data["mode"] != "create" {
		t.Fatalf("mode = %v", data["mode"])
	}
	if sections := data["sections"].([]any); len(sections) == 0 {
		t.Fatal("no sections rendered")
	}
}

func TestThemeRoundTrip(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t, &fakeBackend{})
	cookie := sessionCookie(t, "admin")

	rec, body := do(t, router, http.MethodGet, "/api/theme", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	if body["data"].(map[string]any)["color"] != "blue" {
		t.Fatalf("default theme = %v", body["data"])
	}

	rec, _ = do(t, router, http.MethodPut, "/api/theme",
		`{"color":"green","density":"compact","radius":"small","navDrawerSide":"left"}`, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("put code = %d, body %s", rec.Code, rec.Body)
	}

	var themed bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "bo_theme" {
			themed = true
		}
	}
	if !themed {
		t.Fatal("theme cookie not set")
	}

	rec, _ = do(t, router, http.MethodPut, "/api/theme",
		`{"color":"magenta","density":"compact","radius":"small","navDrawerSide":"left"}`, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid theme code = %d", rec.Code)
	}
}

func TestUIConfig(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t, &fakeBackend{})

	rec, body := do(t, router, http.MethodGet, "/api/uiconfig", "", sessionCookie(t, "admin"))
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	data := body["data"].(map[string]any)
	if data["filterDebounceMs"] != float64(400) || data["filterMinChars"] != float64(3) {
		t.Fatalf("config = %v", data)
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t, &fakeBackend{})
	rec, _ := do(t, router, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
}
