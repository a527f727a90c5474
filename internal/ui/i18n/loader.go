// loader.go - загрузка встроенных каталогов locales/<lang>.json.
package i18n

import (
	"fmt"
	"log/slog"
)

// LoadFromEmbedFS загружает в bundle каталоги всех языков из Languages.
func LoadFromEmbedFS(bundle *Bundle, logger *slog.Logger) error {
	for _, lang := range Languages {
		data, err := LocaleFS.ReadFile("locales/" + lang + ".json")
		if err != nil {
			return fmt.Errorf("i18n: каталог %s не найден: %w", lang, err)
		}
		if err := bundle.LoadMessages(lang, data); err != nil {
			return err
		}
	}

	logger.Info("Каталоги переводов загружены", slog.Any("languages", Languages))
	return nil
}
