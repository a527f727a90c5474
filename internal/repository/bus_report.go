package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gamy-transporte/reportes/internal/domain/model"
)

// BusReportRepository - доступ к таблице bus_reports.
type BusReportRepository interface {
	// Create сохраняет отчёт вместе с фотографией.
	Create(ctx context.Context, r *model.BusReport, photo []byte) error
	// List возвращает все отчёты, новые первыми.
	List(ctx context.Context) ([]*model.BusReport, error)
	// ListByUnit возвращает отчёты по номеру единицы, новые первыми.
	ListByUnit(ctx context.Context, unit string) ([]*model.BusReport, error)
	// ListByOwner возвращает отчёты пользователя, новые первыми.
	ListByOwner(ctx context.Context, ownerID int64) ([]*model.BusReport, error)
	// GroupByUnit возвращает агрегаты по единицам:
	// больше отчётов первыми, затем по времени последнего отчёта.
	GroupByUnit(ctx context.Context) ([]*model.BusUnitSummary, error)
	// GetByID возвращает отчёт без фотографии.
	GetByID(ctx context.Context, id int64) (*model.BusReport, error)
	// GetPhoto возвращает фотографию отчёта.
	GetPhoto(ctx context.Context, id int64) ([]byte, error)
	// UpdateStatus перезаписывает статус без проверки переходов.
	UpdateStatus(ctx context.Context, id int64, status string) (*model.BusReport, error)
	// Delete удаляет отчёт.
	Delete(ctx context.Context, id int64) error
}

type busReportRepo struct {
	db DBTX
}

// NewBusReportRepository создаёт репозиторий отчётов об автобусах.
func NewBusReportRepository(db DBTX) BusReportRepository {
	return &busReportRepo{db: db}
}

const busReportColumns = `id, reporter_name, unit, route, description, status,
	owner_id, photo IS NOT NULL, created_at`

func scanBusReport(row pgx.Row) (*model.BusReport, error) {
	r := &model.BusReport{}
	err := row.Scan(
		&r.ID, &r.ReporterName, &r.Unit, &r.Route, &r.Description, &r.Status,
		&r.OwnerID, &r.HasPhoto, &r.CreatedAt,
	)
	return r, err
}

func (r *busReportRepo) Create(ctx context.Context, rep *model.BusReport, photo []byte) error {
	query := `
		INSERT INTO bus_reports (reporter_name, unit, route, description, photo, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, status, created_at`

	err := r.db.QueryRow(ctx, query,
		rep.ReporterName, rep.Unit, rep.Route, rep.Description, photo, rep.OwnerID,
	).Scan(&rep.ID, &rep.Status, &rep.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания отчёта об автобусе: %w", err)
	}
	rep.HasPhoto = photo != nil
	return nil
}

func (r *busReportRepo) List(ctx context.Context) ([]*model.BusReport, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM bus_reports
		ORDER BY created_at DESC, id DESC`, busReportColumns)
	return r.query(ctx, query)
}

func (r *busReportRepo) ListByUnit(ctx context.Context, unit string) ([]*model.BusReport, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM bus_reports
		WHERE unit = $1
		ORDER BY created_at DESC, id DESC`, busReportColumns)
	return r.query(ctx, query, unit)
}

func (r *busReportRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*model.BusReport, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM bus_reports
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC`, busReportColumns)
	return r.query(ctx, query, ownerID)
}

func (r *busReportRepo) query(ctx context.Context, query string, args ...any) ([]*model.BusReport, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения отчётов об автобусах: %w", err)
	}
	defer rows.Close()

	var result []*model.BusReport
	for rows.Next() {
		rep, err := scanBusReport(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования отчёта об автобусе: %w", err)
		}
		result = append(result, rep)
	}
	return result, rows.Err()
}

func (r *busReportRepo) GroupByUnit(ctx context.Context) ([]*model.BusUnitSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT unit, COUNT(*), MAX(created_at)
		FROM bus_reports
		GROUP BY unit
		ORDER BY COUNT(*) DESC, MAX(created_at) DESC, unit`)
	if err != nil {
		return nil, fmt.Errorf("ошибка группировки отчётов по единицам: %w", err)
	}
	defer rows.Close()

	var result []*model.BusUnitSummary
	for rows.Next() {
		s := &model.BusUnitSummary{}
		if err := rows.Scan(&s.Unit, &s.ReportCount, &s.LastReported); err != nil {
			return nil, fmt.Errorf("ошибка сканирования агрегата: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *busReportRepo) GetByID(ctx context.Context, id int64) (*model.BusReport, error) {
	query := fmt.Sprintf(`SELECT %s FROM bus_reports WHERE id = $1`, busReportColumns)
	rep, err := scanBusReport(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения отчёта об автобусе: %w", err)
	}
	return rep, nil
}

func (r *busReportRepo) GetPhoto(ctx context.Context, id int64) ([]byte, error) {
	return selectBlob(ctx, r.db, "bus_reports", "photo", id)
}

func (r *busReportRepo) UpdateStatus(ctx context.Context, id int64, st string) (*model.BusReport, error) {
	query := fmt.Sprintf(`
		UPDATE bus_reports SET status = $2
		WHERE id = $1
		RETURNING %s`, busReportColumns)

	rep, err := scanBusReport(r.db.QueryRow(ctx, query, id, st))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка обновления статуса отчёта об автобусе: %w", err)
	}
	return rep, nil
}

func (r *busReportRepo) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "bus_reports", id)
}
