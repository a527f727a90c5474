package i18n

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// TestCatalogsHaveSameKeys проверяет, что каталоги es и en содержат одинаковые ключи.
func TestCatalogsHaveSameKeys(t *testing.T) {
	load := func(lang string) map[string]string {
		data, err := LocaleFS.ReadFile("locales/" + lang + ".json")
		if err != nil {
			t.Fatalf("не удалось прочитать каталог %s: %v", lang, err)
		}
		var m map[string]string
		if err := json.Unmarshal(data, &m); err != nil {
			t.Fatalf("некорректный JSON %s: %v", lang, err)
		}
		return m
	}

	es, en := load("es"), load("en")
	for key := range es {
		if _, ok := en[key]; !ok {
			t.Errorf("ключ %q отсутствует в en", key)
		}
	}
	for key := range en {
		if _, ok := es[key]; !ok {
			t.Errorf("ключ %q отсутствует в es", key)
		}
	}
}

// TestBundleTranslate проверяет перевод и fallback на испанский.
func TestBundleTranslate(t *testing.T) {
	b := NewBundle(testLogger())
	if err := b.LoadMessages("es", []byte(`{"a":"uno","b":"dos"}`)); err != nil {
		t.Fatal(err)
	}
	if err := b.LoadMessages("en", []byte(`{"a":"one"}`)); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		lang, key, want string
	}{
		{"es", "a", "uno"},
		{"en", "a", "one"},
		{"en", "b", "dos"},
		{"en", "missing", "missing"},
		{"fr", "a", "uno"},
	}
	for _, tt := range tests {
		if got := b.Translate(tt.lang, tt.key); got != tt.want {
			t.Errorf("Translate(%q, %q) = %q, want %q", tt.lang, tt.key, got, tt.want)
		}
	}
}

// TestBundleInvalidJSON проверяет ошибку разбора каталога.
func TestBundleInvalidJSON(t *testing.T) {
	b := NewBundle(nil)
	if err := b.LoadMessages("es", []byte(`{`)); err == nil {
		t.Error("ожидалась ошибка для некорректного JSON")
	}
}

// TestMatchLanguage проверяет выбор языка по Accept-Language.
func TestMatchLanguage(t *testing.T) {
	tests := []struct {
		accept, want string
	}{
		{"es-MX,es;q=0.9", "es"},
		{"en-US,en;q=0.9", "en"},
		{"fr-FR", "es"},
		{"en-GB;q=0.5,es;q=0.8", "es"},
	}
	for _, tt := range tests {
		if got := MatchLanguage(tt.accept); got != tt.want {
			t.Errorf("MatchLanguage(%q) = %q, want %q", tt.accept, got, tt.want)
		}
	}
}

// TestIsSupported проверяет список языков с каталогами.
func TestIsSupported(t *testing.T) {
	for _, lang := range Languages {
		if !IsSupported(lang) {
			t.Errorf("IsSupported(%q) = false", lang)
		}
	}
	for _, lang := range []string{"", "ru", "ES"} {
		if IsSupported(lang) {
			t.Errorf("IsSupported(%q) = true", lang)
		}
	}
}

// TestMiddleware проверяет приоритет cookie над Accept-Language.
func TestMiddleware(t *testing.T) {
	var got string
	handler := Middleware()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = LangFromContext(r.Context())
	}))

	tests := []struct {
		name   string
		cookie string
		accept string
		want   string
	}{
		{"по умолчанию", "", "", "es"},
		{"accept-language", "", "en-US", "en"},
		{"cookie важнее заголовка", "es", "en-US", "es"},
		{"неизвестный язык в cookie", "ru", "", "es"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: LangCookieName, Value: tt.cookie})
			}
			if tt.accept != "" {
				req.Header.Set("Accept-Language", tt.accept)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)
			if got != tt.want {
				t.Errorf("язык: want %q, got %q", tt.want, got)
			}
		})
	}
}

// TestGlobalT проверяет T с языком из контекста.
func TestGlobalT(t *testing.T) {
	b := Init(testLogger())
	if err := LoadFromEmbedFS(b, testLogger()); err != nil {
		t.Fatal(err)
	}

	ctx := WithLang(context.Background(), "en")
	if got := T(ctx, "login.invalid"); got != "Wrong user or password" {
		t.Errorf("T(en) = %q", got)
	}
	if got := T(context.Background(), "login.invalid"); got != "Usuario o contraseña incorrectos" {
		t.Errorf("T(es) = %q", got)
	}
	if got := Translate("en", "nav.logout"); got != "Sign out" {
		t.Errorf("Translate(en) = %q", got)
	}
}
