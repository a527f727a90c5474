// bus_reports.go - отчёты об автобусах в портале администратора.
// Статус перезаписывается любым непустым значением, без правил переходов.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gamy-transporte/reportes/internal/service"
	"github.com/gamy-transporte/reportes/internal/ui/pages"
)

// BusReportsHandler - обработчики отчётов об автобусах.
type BusReportsHandler struct {
	reports BusReports
	logger  *slog.Logger
}

// NewBusReportsHandler создаёт BusReportsHandler.
func NewBusReportsHandler(reports BusReports, logger *slog.Logger) *BusReportsHandler {
	return &BusReportsHandler{
		reports: reports,
		logger:  logger.With(slog.String("component", "ui.bus_reports")),
	}
}

// HandleUnits - GET /reporteCamiones. Отчёты, сгруппированные по единице.
func (h *BusReportsHandler) HandleUnits(w http.ResponseWriter, r *http.Request) {
	units, err := h.reports.GroupByUnit(r.Context())
	if err != nil {
		renderError(w, r, h.logger, true, err)
		return
	}

	render(w, r, h.logger, http.StatusOK, pages.BusUnits(pages.BusUnitsData{
		Base:  base(r, "title.bus_units"),
		Units: units,
	}))
}

// HandleUnit - GET /reportes/unidad/{unidad}.
func (h *BusReportsHandler) HandleUnit(w http.ResponseWriter, r *http.Request) {
	unit, err := url.PathUnescape(chi.URLParam(r, "unidad"))
	if err != nil || strings.TrimSpace(unit) == "" {
		renderError(w, r, h.logger, true, service.ErrMalformedRequest)
		return
	}

	reports, err := h.reports.ListByUnit(r.Context(), unit)
	if err != nil {
		renderError(w, r, h.logger, true, err)
		return
	}

	render(w, r, h.logger, http.StatusOK, pages.BusUnit(pages.BusUnitData{
		Base:    base(r, "title.bus_unit"),
		Unit:    unit,
		Reports: reports,
	}))
}

// HandleDetail - GET /ver-reporte-camion/{id}.
func (h *BusReportsHandler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, h.logger, true, err)
		return
	}

	rep, err := h.reports.Get(r.Context(), id)
	if err != nil {
		renderError(w, r, h.logger, true, err)
		return
	}

	render(w, r, h.logger, http.StatusOK, pages.BusReport(pages.BusReportData{
		Base:   base(r, "title.bus_report"),
		Report: rep,
	}))
}

// HandleImage - GET /imagen-reporte-camion/{id}.
func (h *BusReportsHandler) HandleImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, h.logger, true, err)
		return
	}

	img, err := h.reports.Image(r.Context(), id)
	if err != nil {
		renderError(w, r, h.logger, true, err)
		return
	}
	writeImage(w, img.ContentType, img.Data)
}

// HandleUpdateStatus - POST /actualizarEstatus/{id}. Поле формы estatus.
// Некорректное значение - карточка отчёта с ошибкой (400).
func (h *BusReportsHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, h.logger, true, err)
		return
	}

	if _, err := h.reports.OverwriteStatus(r.Context(), id, r.FormValue("estatus")); err != nil {
		if !errors.Is(err, service.ErrMalformedRequest) {
			renderError(w, r, h.logger, true, err)
			return
		}
		rep, getErr := h.reports.Get(r.Context(), id)
		if getErr != nil {
			renderError(w, r, h.logger, true, getErr)
			return
		}
		render(w, r, h.logger, http.StatusBadRequest, pages.BusReport(pages.BusReportData{
			Base:   base(r, "title.bus_report"),
			Report: rep,
			Error:  service.UserMessage(err, ""),
		}))
		return
	}

	redirectWithNotice(w, r, "/ver-reporte-camion/"+strconv.FormatInt(id, 10), "guardado")
}

// HandleDelete - POST /eliminar-reporte-camion/{id}.
func (h *BusReportsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, h.logger, true, err)
		return
	}

	if err := h.reports.Delete(r.Context(), id); err != nil {
		renderError(w, r, h.logger, true, err)
		return
	}
	redirectWithNotice(w, r, "/reporteCamiones", "eliminado")
}
