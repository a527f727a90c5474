// stop_reports.go - отчёты об остановках и правило смены их статуса.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gamy-transporte/reportes/internal/domain/model"
	"github.com/gamy-transporte/reportes/internal/domain/status"
	"github.com/gamy-transporte/reportes/internal/repository"
)

// CreateStopReport - данные нового отчёта об остановке.
type CreateStopReport struct {
	OwnerID  *int64
	Location string `validate:"required,max=100" label:"ubicación"`
	Comment  string `validate:"required,max=2000" label:"comentario"`
	Image    []byte `validate:"required,min=1" label:"imagen"`
}

// StopReportDetail - отчёт с разобранными координатами.
type StopReportDetail struct {
	*model.StopReport
	Latitude  float64
	Longitude float64
}

// StopReportService - отчёты об остановках.
type StopReportService struct {
	repo   repository.StopReportRepository
	images *ImageCache
	logger *slog.Logger
}

// NewStopReportService создаёт сервис отчётов об остановках.
func NewStopReportService(repo repository.StopReportRepository, images *ImageCache, logger *slog.Logger) *StopReportService {
	return &StopReportService{
		repo:   repo,
		images: images,
		logger: logger.With(slog.String("component", "stop_report_service")),
	}
}

// Create сохраняет новый отчёт со статусом Enviado.
func (s *StopReportService) Create(ctx context.Context, in CreateStopReport) (*model.StopReport, error) {
	in.Location = strings.TrimSpace(in.Location)
	in.Comment = strings.TrimSpace(in.Comment)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	loc, err := model.ParseLocation(in.Location)
	if err != nil {
		return nil, invalid("Ubicación inválida, use el formato latitud,longitud")
	}
	if _, ok := sniffImage(in.Image); !ok {
		return nil, invalid("El archivo adjunto no es una imagen")
	}

	rep := &model.StopReport{
		Location: loc.String(),
		Comment:  in.Comment,
		Status:   status.Initial,
		OwnerID:  in.OwnerID,
	}
	if err := s.repo.Create(ctx, rep, in.Image); err != nil {
		return nil, repoError("создание отчёта об остановке", err)
	}

	s.logger.Info("Отчёт об остановке создан",
		slog.Int64("report_id", rep.ID),
		slog.String("location", rep.Location),
	)
	return rep, nil
}

// List возвращает отчёты, новые первыми.
// Пустой statusFilter - все статусы, неизвестный - ErrMalformedRequest.
func (s *StopReportService) List(ctx context.Context, statusFilter string) ([]*model.StopReport, error) {
	var filter *status.StopStatus
	if statusFilter = strings.TrimSpace(statusFilter); statusFilter != "" {
		st, err := status.Parse(statusFilter)
		if err != nil {
			return nil, invalid("Estatus desconocido: %s", statusFilter)
		}
		filter = &st
	}

	reports, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, repoError("список отчётов об остановках", err)
	}
	return reports, nil
}

// ListByOwner возвращает отчёты пользователя.
func (s *StopReportService) ListByOwner(ctx context.Context, ownerID int64) ([]*model.StopReport, error) {
	reports, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, repoError("отчёты пользователя об остановках", err)
	}
	return reports, nil
}

// Get возвращает отчёт с разобранными координатами.
func (s *StopReportService) Get(ctx context.Context, id int64) (*StopReportDetail, error) {
	rep, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, repoError("получение отчёта об остановке", err)
	}

	detail := &StopReportDetail{StopReport: rep}
	if loc, err := rep.Coordinates(); err == nil {
		detail.Latitude = loc.Latitude
		detail.Longitude = loc.Longitude
	} else {
		s.logger.Warn("Некорректные координаты в сохранённом отчёте",
			slog.Int64("report_id", id),
			slog.String("location", rep.Location),
		)
	}
	return detail, nil
}

// Image возвращает изображение отчёта.
func (s *StopReportService) Image(ctx context.Context, id int64) (*model.Image, error) {
	img, err := loadImage(s.images, ImageStop, id, func() ([]byte, error) {
		return s.repo.GetImage(ctx, id)
	})
	if err != nil {
		return nil, repoError("изображение отчёта об остановке", err)
	}
	return img, nil
}

// ImageForOwner возвращает изображение, только если отчёт принадлежит ownerID.
// Чужой отчёт неотличим от отсутствующего.
func (s *StopReportService) ImageForOwner(ctx context.Context, id, ownerID int64) (*model.Image, error) {
	rep, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, repoError("получение отчёта об остановке", err)
	}
	if rep.OwnerID == nil || *rep.OwnerID != ownerID {
		return nil, fmt.Errorf("отчёт %d не принадлежит пользователю: %w", id, ErrNotFound)
	}
	return s.Image(ctx, id)
}

// Delete удаляет отчёт. Несуществующий id - ErrNotFound.
func (s *StopReportService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return repoError("удаление отчёта об остановке", err)
	}
	s.images.Delete(ImageStop, id)
	s.logger.Info("Отчёт об остановке удалён", slog.Int64("report_id", id))
	return nil
}

// RequestTransition переводит отчёт в запрошенный статус.
//
// Ошибки:
//   - ErrMalformedRequest - неизвестный статус
//   - ErrNotFound - отчёта нет
//   - ErrInvalidTransition (+ *status.TransitionError) - переход недопустим,
//     сохранённый статус не изменён
func (s *StopReportService) RequestTransition(ctx context.Context, id int64, requested string) (*model.StopReport, error) {
	to, err := status.Parse(strings.TrimSpace(requested))
	if err != nil {
		return nil, invalid("Estatus desconocido: %s", requested)
	}

	from, ok := status.Predecessor(to)
	if !ok {
		// В начальный статус перейти нельзя ни из какого
		rep, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, repoError("получение отчёта об остановке", err)
		}
		return nil, s.rejected(id, rep.Status, to)
	}

	rep, err := s.repo.TransitionStatus(ctx, id, from, to)
	if err != nil {
		var mismatch *repository.StatusMismatchError
		if errors.As(err, &mismatch) {
			return nil, s.rejected(id, mismatch.Current, to)
		}
		return nil, repoError("смена статуса отчёта", err)
	}

	s.logger.Info("Статус отчёта об остановке изменён",
		slog.Int64("report_id", id),
		slog.String("from", string(from)),
		slog.String("to", string(to)),
	)
	return rep, nil
}

// rejected формирует ошибку недопустимого перехода с текущим статусом.
func (s *StopReportService) rejected(id int64, current, to status.StopStatus) error {
	terr := status.Validate(current, to)
	if terr == nil {
		// Статус успел измениться между UPDATE и чтением
		terr = &status.TransitionError{
			Code:    status.CodeInvalidTransition,
			Current: current,
			Message: fmt.Sprintf("статус изменён параллельно: %s", current),
		}
	}
	s.logger.Debug("Переход статуса отклонён",
		slog.Int64("report_id", id),
		slog.String("current", string(current)),
		slog.String("requested", string(to)),
	)
	return fmt.Errorf("%w: %w", ErrInvalidTransition, terr)
}
