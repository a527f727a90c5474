// middleware.go - выбор языка запроса: cookie "lang", затем Accept-Language.
package i18n

import "net/http"

// LangCookieName - cookie с языком, выбранным через /set-language.
const LangCookieName = "lang"

// Middleware кладёт язык запроса в контекст.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithLang(r.Context(), requestLang(r))))
		})
	}
}

func requestLang(r *http.Request) string {
	if c, err := r.Cookie(LangCookieName); err == nil && IsSupported(c.Value) {
		return c.Value
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		return MatchLanguage(accept)
	}
	return DefaultLang
}
