// portal.go - портал пользователя: отправка отчётов об остановках
// и автобусах, "Mis reportes" и изображения собственных отчётов.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gamy-transporte/reportes/internal/service"
	uimiddleware "github.com/gamy-transporte/reportes/internal/ui/middleware"
	"github.com/gamy-transporte/reportes/internal/ui/pages"
)

// PortalHandler - обработчики портала пользователя.
type PortalHandler struct {
	stops     StopReports
	buses     BusReports
	own       OwnReports
	maxUpload int64
	logger    *slog.Logger
}

// NewPortalHandler создаёт PortalHandler.
func NewPortalHandler(stops StopReports, buses BusReports, own OwnReports, maxUpload int64, logger *slog.Logger) *PortalHandler {
	return &PortalHandler{
		stops:     stops,
		buses:     buses,
		own:       own,
		maxUpload: maxUpload,
		logger:    logger.With(slog.String("component", "ui.portal")),
	}
}

// ownerID возвращает id пользователя из контекста.
// Маршруты портала закрыты RequireUser, поэтому субъект всегда есть.
func ownerID(r *http.Request) int64 {
	if p := uimiddleware.PrincipalFromContext(r.Context()); p != nil {
		return p.ID
	}
	return 0
}

// HandleStopForm - GET /report.
func (h *PortalHandler) HandleStopForm(w http.ResponseWriter, r *http.Request) {
	render(w, r, h.logger, http.StatusOK, pages.StopForm(pages.StopFormData{
		Base: base(r, "title.stop_form"),
	}))
}

// HandleSubmitStop - POST /reportParadero. Multipart: location, comment, image.
func (h *PortalHandler) HandleSubmitStop(w http.ResponseWriter, r *http.Request) {
	if err := parseUpload(w, r, h.maxUpload); err != nil {
		renderError(w, r, h.logger, false, err)
		return
	}

	image, err := formFile(r, "image")
	if err != nil {
		renderError(w, r, h.logger, false, err)
		return
	}

	owner := ownerID(r)
	in := service.CreateStopReport{
		OwnerID:  &owner,
		Location: r.FormValue("location"),
		Comment:  r.FormValue("comment"),
		Image:    image,
	}
	if _, err := h.stops.Create(r.Context(), in); err != nil {
		if !errors.Is(err, service.ErrMalformedRequest) {
			renderError(w, r, h.logger, false, err)
			return
		}
		render(w, r, h.logger, http.StatusBadRequest, pages.StopForm(pages.StopFormData{
			Base:     base(r, "title.stop_form"),
			Location: in.Location,
			Comment:  in.Comment,
			Error:    service.UserMessage(err, ""),
		}))
		return
	}
	redirectWithNotice(w, r, "/report", "enviado")
}

// HandleBusForm - GET /reporteCamion. Имя заполняется из профиля Google.
func (h *PortalHandler) HandleBusForm(w http.ResponseWriter, r *http.Request) {
	b := base(r, "title.bus_form")
	render(w, r, h.logger, http.StatusOK, pages.BusForm(pages.BusFormData{
		Base: b,
		Name: b.Name,
	}))
}

// HandleSubmitBus - POST /guardar-reporte-camion.
// Multipart: nombre, unidad, ruta, descripcion, foto.
func (h *PortalHandler) HandleSubmitBus(w http.ResponseWriter, r *http.Request) {
	if err := parseUpload(w, r, h.maxUpload); err != nil {
		renderError(w, r, h.logger, false, err)
		return
	}

	photo, err := formFile(r, "foto")
	if err != nil {
		renderError(w, r, h.logger, false, err)
		return
	}

	owner := ownerID(r)
	in := service.CreateBusReport{
		OwnerID:      &owner,
		ReporterName: r.FormValue("nombre"),
		Unit:         r.FormValue("unidad"),
		Route:        r.FormValue("ruta"),
		Description:  r.FormValue("descripcion"),
		Photo:        photo,
	}
	if _, err := h.buses.Create(r.Context(), in); err != nil {
		if !errors.Is(err, service.ErrMalformedRequest) {
			renderError(w, r, h.logger, false, err)
			return
		}
		render(w, r, h.logger, http.StatusBadRequest, pages.BusForm(pages.BusFormData{
			Base:        base(r, "title.bus_form"),
			Name:        in.ReporterName,
			Unit:        in.Unit,
			Route:       in.Route,
			Description: in.Description,
			Error:       service.UserMessage(err, ""),
		}))
		return
	}
	redirectWithNotice(w, r, "/reporteCamion", "camion")
}

// HandleMyReports - GET /misReportes.
func (h *PortalHandler) HandleMyReports(w http.ResponseWriter, r *http.Request) {
	mine, err := h.own.List(r.Context(), ownerID(r))
	if err != nil {
		renderError(w, r, h.logger, false, err)
		return
	}

	render(w, r, h.logger, http.StatusOK, pages.MyReports(pages.MyReportsData{
		Base:  base(r, "title.my_reports"),
		Stops: mine.Stops,
		Buses: mine.Buses,
	}))
}

// HandleStopImage - GET /mis-reportes/paradero/{id}/image. Только владелец.
func (h *PortalHandler) HandleStopImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, h.logger, false, err)
		return
	}

	img, err := h.stops.ImageForOwner(r.Context(), id, ownerID(r))
	if err != nil {
		renderError(w, r, h.logger, false, err)
		return
	}
	writeImage(w, img.ContentType, img.Data)
}

// HandleBusImage - GET /mis-reportes/camion/{id}/image. Только владелец.
func (h *PortalHandler) HandleBusImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, h.logger, false, err)
		return
	}

	img, err := h.buses.ImageForOwner(r.Context(), id, ownerID(r))
	if err != nil {
		renderError(w, r, h.logger, false, err)
		return
	}
	writeImage(w, img.ContentType, img.Data)
}
