package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/", "/"},
		{"/home", "/home"},
		{"/health/live", "/health/live"},
		{"/ver-reporte/42", "/ver-reporte/{id}"},
		{"/reportes/17/image", "/reportes/{id}/image"},
		{"/reportes/unidad/A-101", "/reportes/unidad/{unidad}"},
		{"/mis-reportes/paradero/5/image", "/mis-reportes/paradero/{id}/image"},
		{"/actualizarEstatusParadero/9", "/actualizarEstatusParadero/{id}"},
		{"/static/css/app.css", "/static/*"},
		{"/editarNoticia/abc", "/editarNoticia/abc"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := normalizePath(tt.input); got != tt.expected {
				t.Errorf("normalizePath(%q) = %q, ожидалось %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	var seenID string
	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ver-reporte/1", nil))

	if seenID == "" {
		t.Fatal("request_id не передан в контекст")
	}
	if rec.Header().Get(RequestIDHeader) != seenID {
		t.Errorf("X-Request-ID = %q, ожидается %q", rec.Header().Get(RequestIDHeader), seenID)
	}
	out := buf.String()
	if !strings.Contains(out, `"level":"WARN"`) {
		t.Errorf("для 404 ожидается уровень WARN, лог: %s", out)
	}
	if !strings.Contains(out, seenID) {
		t.Errorf("лог не содержит request_id: %s", out)
	}
}

func TestRequestLogger_KeepsIncomingID(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "trace-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "trace-123" {
		t.Errorf("X-Request-ID = %q, ожидается trace-123", got)
	}
}

func TestMetricsMiddleware_PassesStatus(t *testing.T) {
	handler := MetricsMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ver-reporte/1", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("статус = %d, ожидается 418", rec.Code)
	}
}
