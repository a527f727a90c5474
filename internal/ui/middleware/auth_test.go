package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gamy-transporte/reportes/internal/domain/access"
	"github.com/gamy-transporte/reportes/internal/domain/model"
	"github.com/gamy-transporte/reportes/internal/service"
	"github.com/gamy-transporte/reportes/internal/ui/auth"
)

// fakeLoader - PrincipalLoader в памяти.
type fakeLoader struct {
	admins map[int64]*model.AdminUser
	users  map[int64]*model.EndUser
	err    error
}

func (f *fakeLoader) GetAdmin(_ context.Context, id int64) (*model.AdminUser, error) {
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.admins[id]
	if !ok {
		return nil, fmt.Errorf("получение администратора: %w", service.ErrNotFound)
	}
	return a, nil
}

func (f *fakeLoader) GetEndUser(_ context.Context, id int64) (*model.EndUser, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("получение пользователя: %w", service.ErrNotFound)
	}
	return u, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestGate(t *testing.T) (*Gate, *auth.SessionManager, *fakeLoader) {
	t.Helper()
	sm, err := auth.NewSessionManager("gate-secret", time.Hour, false)
	if err != nil {
		t.Fatal(err)
	}
	loader := &fakeLoader{
		admins: map[int64]*model.AdminUser{1: {ID: 1, Email: "admin@gamy.com"}},
		users:  map[int64]*model.EndUser{5: {ID: 5, ExternalID: "g-5", DisplayName: "Ana", Email: "ana@example.com"}},
	}
	return NewGate(sm, loader, testLogger()), sm, loader
}

// requestWithSession возвращает запрос с cookie сессии для указанной роли.
func requestWithSession(t *testing.T, sm *auth.SessionManager, role access.Role, subject int64) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	data := &auth.SessionData{Role: role, Subject: subject}
	if err := sm.Save(rec, httptest.NewRequest(http.MethodGet, "/", nil), data); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, "/home", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

// okHandler записывает субъекта запроса в ответ.
func okHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := PrincipalFromContext(r.Context())
		if p == nil {
			t.Error("субъект не найден в контексте")
			return
		}
		_, _ = fmt.Fprintf(w, "%s:%d:%s", p.Role, p.ID, p.Email)
	})
}

// TestGateRequireAdmin проверяет матрицу доступа к маршрутам администратора.
func TestGateRequireAdmin(t *testing.T) {
	gate, sm, _ := newTestGate(t)
	handler := gate.RequireAdmin()(okHandler(t))

	tests := []struct {
		name       string
		req        *http.Request
		wantStatus int
		wantBody   string
	}{
		{"без сессии", httptest.NewRequest(http.MethodGet, "/home", nil), http.StatusFound, ""},
		{"администратор", requestWithSession(t, sm, access.RoleAdmin, 1), http.StatusOK, "admin:1:admin@gamy.com"},
		{"пользователь", requestWithSession(t, sm, access.RoleUser, 5), http.StatusFound, ""},
		{"удалённый администратор", requestWithSession(t, sm, access.RoleAdmin, 99), http.StatusFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, tt.req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("статус: want %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantStatus == http.StatusFound {
				if loc := rec.Header().Get("Location"); loc != LoginPath {
					t.Errorf("Location: want %q, got %q", LoginPath, loc)
				}
				return
			}
			if rec.Body.String() != tt.wantBody {
				t.Errorf("тело: want %q, got %q", tt.wantBody, rec.Body.String())
			}
		})
	}
}

// TestGateRequireUser проверяет доступ пользователя и отказ администратору.
func TestGateRequireUser(t *testing.T) {
	gate, sm, _ := newTestGate(t)
	handler := gate.RequireUser()(okHandler(t))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithSession(t, sm, access.RoleUser, 5))
	if rec.Code != http.StatusOK {
		t.Fatalf("статус: want 200, got %d", rec.Code)
	}
	if rec.Body.String() != "user:5:ana@example.com" {
		t.Errorf("тело: got %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithSession(t, sm, access.RoleAdmin, 1))
	if rec.Code != http.StatusFound {
		t.Errorf("администратор на маршруте пользователя: want 302, got %d", rec.Code)
	}
}

// TestGateSlidingRefresh проверяет переиздание cookie на каждом запросе.
func TestGateSlidingRefresh(t *testing.T) {
	gate, sm, _ := newTestGate(t)
	handler := gate.RequireAdmin()(okHandler(t))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithSession(t, sm, access.RoleAdmin, 1))

	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName && c.MaxAge > 0 {
			found = true
		}
	}
	if !found {
		t.Error("cookie сессии должна переиздаваться")
	}
}

// TestGateDeletedPrincipalClearsSession проверяет очистку cookie удалённого субъекта.
func TestGateDeletedPrincipalClearsSession(t *testing.T) {
	gate, sm, loader := newTestGate(t)
	handler := gate.RequireAdmin()(okHandler(t))
	req := requestWithSession(t, sm, access.RoleAdmin, 1)

	delete(loader.admins, 1)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusFound {
		t.Fatalf("статус: want 302, got %d", rec.Code)
	}

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("cookie сессии должна удаляться")
	}
}

// TestGateCorruptCookie проверяет повреждённую cookie.
func TestGateCorruptCookie(t *testing.T) {
	gate, _, _ := newTestGate(t)
	handler := gate.RequireAdmin()(okHandler(t))

	req := httptest.NewRequest(http.MethodGet, "/home", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "corrupt"})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusFound {
		t.Errorf("статус: want 302, got %d", rec.Code)
	}
}

// TestGateStorageError проверяет ответ 500 при ошибке БД.
func TestGateStorageError(t *testing.T) {
	gate, sm, loader := newTestGate(t)
	handler := gate.RequireAdmin()(okHandler(t))
	req := requestWithSession(t, sm, access.RoleAdmin, 1)

	loader.err = fmt.Errorf("получение администратора: %w", errors.Join(service.ErrStorage, errors.New("connection refused")))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("статус: want 500, got %d", rec.Code)
	}
}

// TestGateRequireAdminJSON проверяет JSON-ответ 401 вместо redirect.
func TestGateRequireAdminJSON(t *testing.T) {
	gate, _, _ := newTestGate(t)
	handler := gate.RequireAdminJSON()(okHandler(t))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/actualizarEstatusParadero/1", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("статус: want 401, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type: want application/json, got %q", ct)
	}
	if !strings.Contains(rec.Body.String(), `"UNAUTHORIZED"`) {
		t.Errorf("тело должно содержать код UNAUTHORIZED: %s", rec.Body.String())
	}
}
