// Пакет i18n - тексты интерфейса порталов на испанском и английском.
// Основной язык - испанский: при отсутствии ключа в каталоге en
// берётся строка из es, при отсутствии и там - сам ключ.
package i18n

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/text/language"
)

// DefaultLang - основной язык порталов.
const DefaultLang = "es"

// Languages - поддерживаемые языки; первый - основной.
var Languages = []string{DefaultLang, "en"}

// matcher сопоставляет Accept-Language с Languages (порядок тегов тот же).
var matcher = language.NewMatcher([]language.Tag{language.Spanish, language.English})

type langKey struct{}

// Bundle - каталоги переводов "язык -> ключ -> строка".
type Bundle struct {
	mu       sync.RWMutex
	catalogs map[string]map[string]string
	logger   *slog.Logger
}

// NewBundle создаёт пустой Bundle. logger может быть nil.
func NewBundle(logger *slog.Logger) *Bundle {
	return &Bundle{catalogs: make(map[string]map[string]string), logger: logger}
}

// LoadMessages заменяет каталог языка содержимым плоского JSON-объекта.
func (b *Bundle) LoadMessages(lang string, data []byte) error {
	messages := make(map[string]string)
	if err := json.Unmarshal(data, &messages); err != nil {
		return fmt.Errorf("i18n: каталог %s: %w", lang, err)
	}

	b.mu.Lock()
	b.catalogs[lang] = messages
	b.mu.Unlock()

	if b.logger != nil {
		b.logger.Debug("Каталог переводов загружен",
			slog.String("lang", lang),
			slog.Int("keys", len(messages)),
		)
	}
	return nil
}

// Translate ищет ключ в каталоге lang, затем в основном каталоге.
func (b *Bundle) Translate(lang, key string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, l := range []string{lang, DefaultLang} {
		if msg, ok := b.catalogs[l][key]; ok {
			return msg
		}
	}
	return key
}

var (
	global     *Bundle
	globalOnce sync.Once
)

// Init создаёт общий Bundle процесса; повторные вызовы возвращают тот же.
func Init(logger *slog.Logger) *Bundle {
	globalOnce.Do(func() {
		global = NewBundle(logger)
	})
	return global
}

// WithLang сохраняет язык в контексте запроса.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langKey{}, lang)
}

// LangFromContext возвращает язык запроса или DefaultLang.
func LangFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(langKey{}).(string); ok && lang != "" {
		return lang
	}
	return DefaultLang
}

// Translate переводит ключ для явно заданного языка (страницы хранят язык в данных).
func Translate(lang, key string) string {
	if global == nil {
		return key
	}
	return global.Translate(lang, key)
}

// T переводит ключ на язык текущего запроса.
func T(ctx context.Context, key string) string {
	return Translate(LangFromContext(ctx), key)
}

// MatchLanguage выбирает язык из заголовка Accept-Language.
func MatchLanguage(acceptLanguage string) string {
	_, idx := language.MatchStrings(matcher, acceptLanguage)
	return Languages[idx]
}

// IsSupported сообщает, есть ли каталог для языка.
func IsSupported(lang string) bool {
	return slices.Contains(Languages, lang)
}
