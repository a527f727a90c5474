package i18n

import "embed"

// LocaleFS - каталоги переводов, по одному JSON на язык.
//
//go:embed locales/*.json
var LocaleFS embed.FS
