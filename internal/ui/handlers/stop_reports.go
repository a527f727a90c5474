// stop_reports.go - триаж отчётов об остановках в портале администратора:
// список с фильтром, карточка, изображение, удаление, смена статуса (JSON).
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	apierrors "github.com/gamy-transporte/reportes/internal/api/errors"
	"github.com/gamy-transporte/reportes/internal/domain/status"
	"github.com/gamy-transporte/reportes/internal/service"
	"github.com/gamy-transporte/reportes/internal/ui/pages"
)

// StopReportsHandler - обработчики отчётов об остановках.
type StopReportsHandler struct {
	reports StopReports
	logger  *slog.Logger
}

// NewStopReportsHandler создаёт StopReportsHandler.
func NewStopReportsHandler(reports StopReports, logger *slog.Logger) *StopReportsHandler {
	return &StopReportsHandler{
		reports: reports,
		logger:  logger.With(slog.String("component", "ui.stop_reports")),
	}
}

// HandleList - GET /view-reports и GET /reporteParadas.
// Параметр ?estatus= фильтрует по статусу.
func (h *StopReportsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("estatus")

	reports, err := h.reports.List(r.Context(), filter)
	if err != nil {
		renderError(w, r, h.logger, true, err)
		return
	}

	render(w, r, h.logger, http.StatusOK, pages.StopReports(pages.StopReportsData{
		Base:     base(r, "title.stop_reports"),
		Reports:  reports,
		Filter:   filter,
		Statuses: status.All(),
		Action:   r.URL.Path,
	}))
}

// HandleDetail - GET /ver-reporte/{id}.
func (h *StopReportsHandler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, h.logger, true, err)
		return
	}

	detail, err := h.reports.Get(r.Context(), id)
	if err != nil {
		renderError(w, r, h.logger, true, err)
		return
	}

	var next string
	if st, ok := status.Next(detail.Status); ok {
		next = string(st)
	}

	render(w, r, h.logger, http.StatusOK, pages.StopReport(pages.StopReportData{
		Base:      base(r, "title.stop_report"),
		Report:    detail.StopReport,
		Latitude:  detail.Latitude,
		Longitude: detail.Longitude,
		Next:      next,
	}))
}

// HandleImage - GET /reportes/{id}/image.
func (h *StopReportsHandler) HandleImage(w http.ResponseWriter, r *http.Request) {
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

// HandleDelete - POST /eliminar-reporte/{id}.
func (h *StopReportsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, h.logger, true, err)
		return
	}

	if err := h.reports.Delete(r.Context(), id); err != nil {
		renderError(w, r, h.logger, true, err)
		return
	}
	redirectWithNotice(w, r, "/view-reports", "eliminado")
}

// statusRequest - тело JSON-запроса смены статуса.
type statusRequest struct {
	Estatus string `json:"estatus"`
}

// statusResponse - ответ на успешную смену статуса.
type statusResponse struct {
	ID      int64  `json:"id"`
	Estatus string `json:"estatus"`
}

// HandleUpdateStatus - POST /actualizarEstatusParadero/{id}.
// Принимает поле estatus из JSON-тела или формы, отвечает JSON.
func (h *StopReportsHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		apierrors.ValidationError(w, "Identificador no válido")
		return
	}

	requested, err := readRequestedStatus(r)
	if err != nil {
		apierrors.ValidationError(w, "Cuerpo de la solicitud no válido")
		return
	}
	if requested == "" {
		apierrors.ValidationError(w, "El campo estatus es obligatorio")
		return
	}

	rep, err := h.reports.RequestTransition(r.Context(), id, requested)
	if err != nil {
		var terr *status.TransitionError
		switch {
		case errors.As(err, &terr):
			apierrors.InvalidTransition(w, "Transición de estatus no permitida", string(terr.Current))
		case errors.Is(err, service.ErrMalformedRequest):
			apierrors.ValidationError(w, service.UserMessage(err, "Estatus no válido"))
		case errors.Is(err, service.ErrNotFound):
			apierrors.NotFound(w, "Reporte no encontrado")
		default:
			h.logger.Error("Ошибка смены статуса отчёта",
				slog.Int64("report_id", id),
				slog.String("error", err.Error()),
			)
			apierrors.InternalError(w, "Error interno")
		}
		return
	}

	apierrors.WriteJSON(w, http.StatusOK, statusResponse{ID: rep.ID, Estatus: string(rep.Status)})
}

// readRequestedStatus читает estatus из JSON-тела или формы.
func readRequestedStatus(r *http.Request) (string, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		var req statusRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&req); err != nil {
			return "", err
		}
		return req.Estatus, nil
	}
	return r.FormValue("estatus"), nil
}
