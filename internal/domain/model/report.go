package model

import (
	"time"

	"github.com/gamy-transporte/reportes/internal/domain/status"
)

// StopReport - отчёт об остановке (paradero).
// Хранится в таблице stop_reports. Изображение загружается отдельно.
type StopReport struct {
	ID int64
	// Location - нормализованные координаты "lat,lon"
	Location string
	Comment  string
	Status   status.StopStatus
	// OwnerID - автор отчёта (nil, если пользователь удалён)
	OwnerID   *int64
	HasImage  bool
	CreatedAt time.Time
}

// Coordinates разбирает сохранённое поле Location.
func (r *StopReport) Coordinates() (Location, error) {
	return ParseLocation(r.Location)
}

// BusReport - отчёт об автобусе (camión).
// Хранится в таблице bus_reports. Статус - произвольный текст без правил переходов.
type BusReport struct {
	ID           int64
	ReporterName string
	Unit         string
	Route        string
	Description  string
	Status       string
	OwnerID      *int64
	HasPhoto     bool
	CreatedAt    time.Time
}

// BusUnitSummary - агрегат отчётов об автобусах по номеру единицы.
type BusUnitSummary struct {
	Unit         string
	ReportCount  int
	LastReported time.Time
}

// Image - бинарное изображение с определённым MIME-типом.
type Image struct {
	Data        []byte
	ContentType string
}
