// my_reports.go - отчёты текущего пользователя ("Mis reportes").
package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/gamy-transporte/reportes/internal/domain/model"
)

// MyReports - отчёты пользователя обоих типов.
type MyReports struct {
	Stops []*model.StopReport
	Buses []*model.BusReport
}

// MyReportsService собирает отчёты пользователя из двух сервисов.
type MyReportsService struct {
	stops *StopReportService
	buses *BusReportService
}

// NewMyReportsService создаёт сервис "Mis reportes".
func NewMyReportsService(stops *StopReportService, buses *BusReportService) *MyReportsService {
	return &MyReportsService{stops: stops, buses: buses}
}

// List загружает отчёты об остановках и об автобусах параллельно.
func (s *MyReportsService) List(ctx context.Context, ownerID int64) (*MyReports, error) {
	var result MyReports
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stops, err := s.stops.ListByOwner(gctx, ownerID)
		result.Stops = stops
		return err
	})
	g.Go(func() error {
		buses, err := s.buses.ListByOwner(gctx, ownerID)
		result.Buses = buses
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &result, nil
}
