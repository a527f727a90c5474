// admins.go - управление учётными записями администраторов
// и главная страница портала администратора.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gamy-transporte/reportes/internal/domain/model"
	"github.com/gamy-transporte/reportes/internal/service"
	"github.com/gamy-transporte/reportes/internal/ui/i18n"
	uimiddleware "github.com/gamy-transporte/reportes/internal/ui/middleware"
	"github.com/gamy-transporte/reportes/internal/ui/pages"
)

// AdminsHandler - обработчики учётных записей администраторов.
type AdminsHandler struct {
	accounts AdminAccounts
	logger   *slog.Logger
}

// NewAdminsHandler создаёт AdminsHandler.
func NewAdminsHandler(accounts AdminAccounts, logger *slog.Logger) *AdminsHandler {
	return &AdminsHandler{
		accounts: accounts,
		logger:   logger.With(slog.String("component", "ui.admins")),
	}
}

// HandleHome - GET /home.
func (h *AdminsHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	render(w, r, h.logger, http.StatusOK, pages.Home(pages.HomeData{Base: base(r, "title.home")}))
}

// HandleList - GET /usuarios.
func (h *AdminsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	admins, err := h.accounts.ListAdmins(r.Context())
	if err != nil {
		renderError(w, r, h.logger, true, err)
		return
	}

	var current int64
	if p := uimiddleware.PrincipalFromContext(r.Context()); p != nil {
		current = p.ID
	}

	render(w, r, h.logger, http.StatusOK, pages.Admins(pages.AdminsData{
		Base:      base(r, "title.admins"),
		Admins:    admins,
		CurrentID: current,
	}))
}

// HandleNewForm - GET /altaUsuarios.
func (h *AdminsHandler) HandleNewForm(w http.ResponseWriter, r *http.Request) {
	render(w, r, h.logger, http.StatusOK, pages.AdminForm(pages.AdminFormData{
		Base: base(r, "title.admin_form"),
	}))
}

// HandleCreate - POST /altaUsuarios. Поля email, password.
func (h *AdminsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	_, err := h.accounts.CreateAdmin(r.Context(), service.AdminInput{
		Email:    email,
		Password: r.FormValue("password"),
	})
	if err != nil {
		h.formError(w, r, nil, email, err)
		return
	}
	redirectWithNotice(w, r, "/usuarios", "guardado")
}

// HandleEditForm - GET /editarUsuario/{id}.
func (h *AdminsHandler) HandleEditForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, h.logger, true, err)
		return
	}

	admin, err := h.accounts.GetAdmin(r.Context(), id)
	if err != nil {
		renderError(w, r, h.logger, true, err)
		return
	}

	render(w, r, h.logger, http.StatusOK, pages.AdminForm(pages.AdminFormData{
		Base:  base(r, "title.admin_form"),
		Admin: admin,
		Email: admin.Email,
	}))
}

// HandleUpdate - POST /editarUsuario/{id} и POST /actualizarUsuario/{id}.
// Пустой password - пароль не меняется.
func (h *AdminsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, h.logger, true, err)
		return
	}

	email := r.FormValue("email")
	if _, err := h.accounts.UpdateAdmin(r.Context(), id, email, r.FormValue("password")); err != nil {
		if !errors.Is(err, service.ErrMalformedRequest) && !errors.Is(err, service.ErrConflict) {
			renderError(w, r, h.logger, true, err)
			return
		}
		admin, getErr := h.accounts.GetAdmin(r.Context(), id)
		if getErr != nil {
			renderError(w, r, h.logger, true, getErr)
			return
		}
		h.formError(w, r, admin, email, err)
		return
	}
	redirectWithNotice(w, r, "/usuarios", "guardado")
}

// HandleDelete - POST /eliminarUsuario/{id}.
// Администратор не может удалить свою учётную запись.
func (h *AdminsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, h.logger, true, err)
		return
	}

	if p := uimiddleware.PrincipalFromContext(r.Context()); p != nil && p.ID == id {
		renderError(w, r, h.logger, true, &service.ValidationError{
			Message: i18n.T(r.Context(), "error.self_delete"),
		})
		return
	}

	if err := h.accounts.DeleteAdmin(r.Context(), id); err != nil {
		renderError(w, r, h.logger, true, err)
		return
	}
	redirectWithNotice(w, r, "/usuarios", "eliminado")
}

// formError повторно показывает форму администратора.
// Дубликат email - 409, некорректные данные - 400.
func (h *AdminsHandler) formError(w http.ResponseWriter, r *http.Request, admin *model.AdminUser, email string, err error) {
	var status int
	var message string
	switch {
	case errors.Is(err, service.ErrConflict):
		status, message = http.StatusConflict, i18n.T(r.Context(), "error.conflict")
	case errors.Is(err, service.ErrMalformedRequest):
		status, message = http.StatusBadRequest, service.UserMessage(err, i18n.T(r.Context(), "error.bad_request"))
	default:
		renderError(w, r, h.logger, true, err)
		return
	}

	render(w, r, h.logger, status, pages.AdminForm(pages.AdminFormData{
		Base:  base(r, "title.admin_form"),
		Admin: admin,
		Email: email,
		Error: message,
	}))
}
