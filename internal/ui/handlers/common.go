// Пакет handlers - HTTP-обработчики порталов администратора и пользователя.
// common.go - рендеринг страниц, отображение ошибок сервисов в HTTP,
// разбор multipart-загрузок и параметров пути.
package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/gamy-transporte/reportes/internal/domain/access"
	"github.com/gamy-transporte/reportes/internal/service"
	"github.com/gamy-transporte/reportes/internal/ui/i18n"
	uimiddleware "github.com/gamy-transporte/reportes/internal/ui/middleware"
	"github.com/gamy-transporte/reportes/internal/ui/pages"
)

// errUploadTooLarge - тело запроса превышает GM_MAX_UPLOAD_BYTES.
var errUploadTooLarge = errors.New("загрузка превышает допустимый размер")

// notices - ключи уведомлений по значению параметра ?ok=.
var notices = map[string]string{
	"enviado":   "notice.stop_sent",
	"camion":    "notice.bus_sent",
	"guardado":  "notice.saved",
	"eliminado": "notice.deleted",
}

// base формирует общие данные layout из контекста запроса.
func base(r *http.Request, title string) pages.Base {
	b := pages.Base{
		Title:  title,
		Lang:   i18n.LangFromContext(r.Context()),
		Notice: notices[r.URL.Query().Get("ok")],
	}
	if p := uimiddleware.PrincipalFromContext(r.Context()); p != nil {
		b.Admin = p.Role == access.RoleAdmin
		b.Email = p.Email
		b.Name = p.Name
	}
	return b
}

// render пишет HTML-страницу с указанным статусом.
func render(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logger.Error("Ошибка рендеринга страницы",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
}

// renderError отображает ошибку сервиса в HTML-ответ.
// admin - страница ошибки в оформлении портала администратора.
func renderError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, admin bool, err error) {
	ctx := r.Context()
	status, message := http.StatusInternalServerError, i18n.T(ctx, "error.internal")

	switch {
	case errors.Is(err, errUploadTooLarge):
		status, message = http.StatusRequestEntityTooLarge, i18n.T(ctx, "error.upload_too_large")
	case errors.Is(err, service.ErrMalformedRequest):
		status, message = http.StatusBadRequest, service.UserMessage(err, i18n.T(ctx, "error.bad_request"))
	case errors.Is(err, service.ErrNotFound):
		status, message = http.StatusNotFound, i18n.T(ctx, "error.not_found")
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrInvalidTransition):
		status, message = http.StatusConflict, i18n.T(ctx, "error.conflict")
	default:
		logger.Error("Ошибка обработки запроса",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}

	b := base(r, "title.error")
	b.Admin = b.Admin || admin
	render(w, r, logger, status, pages.Error(pages.ErrorData{Base: b, Status: status, Message: message}))
}

// pathID извлекает положительный числовой параметр пути.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: некорректный id %q", service.ErrMalformedRequest, chi.URLParam(r, name))
	}
	return id, nil
}

// parseUpload разбирает multipart-форму с ограничением размера тела.
func parseUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errUploadTooLarge
		}
		return fmt.Errorf("%w: %w", service.ErrMalformedRequest, err)
	}
	return nil
}

// formFile читает загруженный файл. Отсутствующий файл - nil без ошибки:
// обязательность проверяет сервис.
func formFile(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", service.ErrMalformedRequest, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("чтение файла %s: %w", field, err)
	}
	return data, nil
}

// writeImage отдаёт изображение с определённым MIME-типом.
func writeImage(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	_, _ = w.Write(data)
}

// redirectWithNotice перенаправляет на path с уведомлением ?ok=.
func redirectWithNotice(w http.ResponseWriter, r *http.Request, path, notice string) {
	http.Redirect(w, r, path+"?ok="+notice, http.StatusSeeOther)
}

// buildBaseURL формирует базовый URL (scheme + host) из заголовков запроса.
// Учитывает X-Forwarded-* заголовки от reverse proxy.
func buildBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	host := r.Host
	if fwdHost := r.Header.Get("X-Forwarded-Host"); fwdHost != "" {
		host = fwdHost
	}

	return scheme + "://" + host
}
