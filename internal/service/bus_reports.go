// bus_reports.go - отчёты об автобусах.
//
// Статус отчёта об автобусе перезаписывается без правил переходов,
// в отличие от отчёта об остановке (см. StopReportService.RequestTransition).
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gamy-transporte/reportes/internal/domain/model"
	"github.com/gamy-transporte/reportes/internal/repository"
)

// MaxBusStatusLength - максимальная длина статуса отчёта об автобусе.
const MaxBusStatusLength = 50

// CreateBusReport - данные нового отчёта об автобусе.
type CreateBusReport struct {
	OwnerID      *int64
	ReporterName string `validate:"required,max=200" label:"nombre"`
	Unit         string `validate:"required,max=50" label:"unidad"`
	Route        string `validate:"required,max=100" label:"ruta"`
	Description  string `validate:"required,max=2000" label:"descripción"`
	Photo        []byte `validate:"required,min=1" label:"foto"`
}

type busStatusUpdate struct {
	Status string `validate:"required,max=50" label:"estatus"`
}

// BusReportService - отчёты об автобусах.
type BusReportService struct {
	repo   repository.BusReportRepository
	images *ImageCache
	logger *slog.Logger
}

// NewBusReportService создаёт сервис отчётов об автобусах.
func NewBusReportService(repo repository.BusReportRepository, images *ImageCache, logger *slog.Logger) *BusReportService {
	return &BusReportService{
		repo:   repo,
		images: images,
		logger: logger.With(slog.String("component", "bus_report_service")),
	}
}

// Create сохраняет новый отчёт об автобусе.
func (s *BusReportService) Create(ctx context.Context, in CreateBusReport) (*model.BusReport, error) {
	in.ReporterName = strings.TrimSpace(in.ReporterName)
	in.Unit = strings.TrimSpace(in.Unit)
	in.Route = strings.TrimSpace(in.Route)
	in.Description = strings.TrimSpace(in.Description)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if _, ok := sniffImage(in.Photo); !ok {
		return nil, invalid("El archivo adjunto no es una imagen")
	}

	rep := &model.BusReport{
		ReporterName: in.ReporterName,
		Unit:         in.Unit,
		Route:        in.Route,
		Description:  in.Description,
		OwnerID:      in.OwnerID,
	}
	if err := s.repo.Create(ctx, rep, in.Photo); err != nil {
		return nil, repoError("создание отчёта об автобусе", err)
	}

	s.logger.Info("Отчёт об автобусе создан",
		slog.Int64("report_id", rep.ID),
		slog.String("unit", rep.Unit),
	)
	return rep, nil
}

// List возвращает все отчёты, новые первыми.
func (s *BusReportService) List(ctx context.Context) ([]*model.BusReport, error) {
	reports, err := s.repo.List(ctx)
	if err != nil {
		return nil, repoError("список отчётов об автобусах", err)
	}
	return reports, nil
}

// ListByUnit возвращает отчёты по номеру единицы.
func (s *BusReportService) ListByUnit(ctx context.Context, unit string) ([]*model.BusReport, error) {
	unit = strings.TrimSpace(unit)
	if unit == "" {
		return nil, invalid("El campo unidad es obligatorio")
	}
	reports, err := s.repo.ListByUnit(ctx, unit)
	if err != nil {
		return nil, repoError("отчёты по единице", err)
	}
	return reports, nil
}

// ListByOwner возвращает отчёты пользователя.
func (s *BusReportService) ListByOwner(ctx context.Context, ownerID int64) ([]*model.BusReport, error) {
	reports, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, repoError("отчёты пользователя об автобусах", err)
	}
	return reports, nil
}

// GroupByUnit возвращает агрегаты по единицам.
func (s *BusReportService) GroupByUnit(ctx context.Context) ([]*model.BusUnitSummary, error) {
	groups, err := s.repo.GroupByUnit(ctx)
	if err != nil {
		return nil, repoError("группировка по единицам", err)
	}
	return groups, nil
}

// Get возвращает отчёт по id.
func (s *BusReportService) Get(ctx context.Context, id int64) (*model.BusReport, error) {
	rep, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, repoError("получение отчёта об автобусе", err)
	}
	return rep, nil
}

// Image возвращает фотографию отчёта.
func (s *BusReportService) Image(ctx context.Context, id int64) (*model.Image, error) {
	img, err := loadImage(s.images, ImageBus, id, func() ([]byte, error) {
		return s.repo.GetPhoto(ctx, id)
	})
	if err != nil {
		return nil, repoError("фотография отчёта об автобусе", err)
	}
	return img, nil
}

// ImageForOwner возвращает фотографию, только если отчёт принадлежит ownerID.
func (s *BusReportService) ImageForOwner(ctx context.Context, id, ownerID int64) (*model.Image, error) {
	rep, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, repoError("получение отчёта об автобусе", err)
	}
	if rep.OwnerID == nil || *rep.OwnerID != ownerID {
		return nil, fmt.Errorf("отчёт %d не принадлежит пользователю: %w", id, ErrNotFound)
	}
	return s.Image(ctx, id)
}

// OverwriteStatus записывает любой непустой статус (до 50 символов).
func (s *BusReportService) OverwriteStatus(ctx context.Context, id int64, newStatus string) (*model.BusReport, error) {
	in := busStatusUpdate{Status: strings.TrimSpace(newStatus)}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	rep, err := s.repo.UpdateStatus(ctx, id, in.Status)
	if err != nil {
		return nil, repoError("обновление статуса отчёта об автобусе", err)
	}

	s.logger.Info("Статус отчёта об автобусе перезаписан",
		slog.Int64("report_id", id),
		slog.String("status", in.Status),
	)
	return rep, nil
}

// Delete удаляет отчёт. Несуществующий id - ErrNotFound.
func (s *BusReportService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return repoError("удаление отчёта об автобусе", err)
	}
	s.images.Delete(ImageBus, id)
	s.logger.Info("Отчёт об автобусе удалён", slog.Int64("report_id", id))
	return nil
}
