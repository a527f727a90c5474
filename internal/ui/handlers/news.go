// news.go - новости: публикация, редактирование и удаление в портале
// администратора, список и изображения для обоих порталов.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gamy-transporte/reportes/internal/domain/model"
	"github.com/gamy-transporte/reportes/internal/service"
	"github.com/gamy-transporte/reportes/internal/ui/pages"
)

// NewsHandler - обработчики новостей.
type NewsHandler struct {
	news      News
	maxUpload int64
	logger    *slog.Logger
}

// NewNewsHandler создаёт NewsHandler.
// maxUpload - максимальный размер multipart-тела в байтах.
func NewNewsHandler(news News, maxUpload int64, logger *slog.Logger) *NewsHandler {
	return &NewsHandler{
		news:      news,
		maxUpload: maxUpload,
		logger:    logger.With(slog.String("component", "ui.news")),
	}
}

// HandleList - GET /noticias (администратор).
func (h *NewsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	posts, err := h.news.List(r.Context())
	if err != nil {
		renderError(w, r, h.logger, true, err)
		return
	}
	render(w, r, h.logger, http.StatusOK, pages.NewsList(pages.NewsListData{
		Base:  base(r, "title.news_list"),
		Posts: posts,
	}))
}

// HandleIndex - GET /index (пользователь). Новости, новые первыми.
func (h *NewsHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	posts, err := h.news.List(r.Context())
	if err != nil {
		renderError(w, r, h.logger, false, err)
		return
	}
	render(w, r, h.logger, http.StatusOK, pages.NewsIndex(pages.NewsListData{
		Base:  base(r, "title.news_index"),
		Posts: posts,
	}))
}

// HandleNewForm - GET /nuevaPubli.
func (h *NewsHandler) HandleNewForm(w http.ResponseWriter, r *http.Request) {
	render(w, r, h.logger, http.StatusOK, pages.NewsForm(pages.NewsFormData{
		Base: base(r, "title.news_form"),
	}))
}

// HandlePublish - POST /publicar. Multipart: titulo, informacion, imagen.
func (h *NewsHandler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	if err := parseUpload(w, r, h.maxUpload); err != nil {
		renderError(w, r, h.logger, true, err)
		return
	}

	image, err := formFile(r, "imagen")
	if err != nil {
		renderError(w, r, h.logger, true, err)
		return
	}

	in := service.CreateNews{
		Title: r.FormValue("titulo"),
		Body:  r.FormValue("informacion"),
		Image: image,
	}
	if _, err := h.news.Create(r.Context(), in); err != nil {
		h.formError(w, r, nil, in.Title, in.Body, err)
		return
	}
	redirectWithNotice(w, r, "/noticias", "guardado")
}

// HandleEditForm - GET /editarNoticia/{id}.
func (h *NewsHandler) HandleEditForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, h.logger, true, err)
		return
	}

	post, err := h.news.Get(r.Context(), id)
	if err != nil {
		renderError(w, r, h.logger, true, err)
		return
	}

	render(w, r, h.logger, http.StatusOK, pages.NewsForm(pages.NewsFormData{
		Base:  base(r, "title.news_form"),
		Post:  post,
		Title: post.Title,
		Body:  post.Body,
	}))
}

// HandleUpdate - POST /editarNoticia/{id}. Изображение не меняется.
func (h *NewsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, h.logger, true, err)
		return
	}
	if err := parseUpload(w, r, h.maxUpload); err != nil {
		renderError(w, r, h.logger, true, err)
		return
	}

	in := service.UpdateNews{
		Title: r.FormValue("titulo"),
		Body:  r.FormValue("informacion"),
	}
	if _, err := h.news.Update(r.Context(), id, in); err != nil {
		if !errors.Is(err, service.ErrMalformedRequest) {
			renderError(w, r, h.logger, true, err)
			return
		}
		post, getErr := h.news.Get(r.Context(), id)
		if getErr != nil {
			renderError(w, r, h.logger, true, getErr)
			return
		}
		h.formError(w, r, post, in.Title, in.Body, err)
		return
	}
	redirectWithNotice(w, r, "/noticias", "guardado")
}

// formError повторно показывает форму новости с сообщением об ошибке.
// Ошибки, кроме ErrMalformedRequest, уходят в общую страницу ошибки.
func (h *NewsHandler) formError(w http.ResponseWriter, r *http.Request, post *model.NewsPost, title, body string, err error) {
	if !errors.Is(err, service.ErrMalformedRequest) {
		renderError(w, r, h.logger, true, err)
		return
	}
	render(w, r, h.logger, http.StatusBadRequest, pages.NewsForm(pages.NewsFormData{
		Base:  base(r, "title.news_form"),
		Post:  post,
		Title: title,
		Body:  body,
		Error: service.UserMessage(err, ""),
	}))
}

// HandleDelete - GET /eliminarNoticia/{id}.
func (h *NewsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, h.logger, true, err)
		return
	}

	if err := h.news.Delete(r.Context(), id); err != nil {
		renderError(w, r, h.logger, true, err)
		return
	}
	redirectWithNotice(w, r, "/noticias", "eliminado")
}

// HandleImage - GET /imagen/{id}. Общий для обоих порталов.
func (h *NewsHandler) HandleImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, h.logger, false, err)
		return
	}

	img, err := h.news.Image(r.Context(), id)
	if err != nil {
		renderError(w, r, h.logger, false, err)
		return
	}
	writeImage(w, img.ContentType, img.Data)
}
