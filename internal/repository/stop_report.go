package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gamy-transporte/reportes/internal/domain/model"
	"github.com/gamy-transporte/reportes/internal/domain/status"
)

// StopReportRepository - доступ к таблице stop_reports.
type StopReportRepository interface {
	// Create сохраняет отчёт вместе с изображением.
	Create(ctx context.Context, r *model.StopReport, image []byte) error
	// List возвращает отчёты, новые первыми. filter == nil - все статусы.
	List(ctx context.Context, filter *status.StopStatus) ([]*model.StopReport, error)
	// ListByOwner возвращает отчёты пользователя, новые первыми.
	ListByOwner(ctx context.Context, ownerID int64) ([]*model.StopReport, error)
	// GetByID возвращает отчёт без изображения.
	GetByID(ctx context.Context, id int64) (*model.StopReport, error)
	// GetImage возвращает изображение отчёта.
	GetImage(ctx context.Context, id int64) ([]byte, error)
	// Delete удаляет отчёт.
	Delete(ctx context.Context, id int64) error
	// TransitionStatus атомарно меняет статус from → to.
	// ErrNotFound - отчёта нет, *StatusMismatchError - статус не равен from.
	TransitionStatus(ctx context.Context, id int64, from, to status.StopStatus) (*model.StopReport, error)
}

type stopReportRepo struct {
	db DBTX
}

// NewStopReportRepository создаёт репозиторий отчётов об остановках.
func NewStopReportRepository(db DBTX) StopReportRepository {
	return &stopReportRepo{db: db}
}

const stopReportColumns = `id, location, comment, status, owner_id, image IS NOT NULL, created_at`

// scanStopReport сканирует строку результата в модель StopReport.
func scanStopReport(row pgx.Row) (*model.StopReport, error) {
	r := &model.StopReport{}
	var st string
	err := row.Scan(&r.ID, &r.Location, &r.Comment, &st, &r.OwnerID, &r.HasImage, &r.CreatedAt)
	r.Status = status.StopStatus(st)
	return r, err
}

func (r *stopReportRepo) Create(ctx context.Context, rep *model.StopReport, image []byte) error {
	query := `
		INSERT INTO stop_reports (location, comment, image, status, owner_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	if rep.Status == "" {
		rep.Status = status.Initial
	}
	err := r.db.QueryRow(ctx, query,
		rep.Location, rep.Comment, image, string(rep.Status), rep.OwnerID,
	).Scan(&rep.ID, &rep.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания отчёта об остановке: %w", err)
	}
	rep.HasImage = image != nil
	return nil
}

func (r *stopReportRepo) List(ctx context.Context, filter *status.StopStatus) ([]*model.StopReport, error) {
	var args []any
	where := ""
	if filter != nil {
		where = "WHERE status = $1"
		args = append(args, string(*filter))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM stop_reports
		%s
		ORDER BY created_at DESC, id DESC`, stopReportColumns, where)

	return r.query(ctx, query, args...)
}

func (r *stopReportRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*model.StopReport, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM stop_reports
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC`, stopReportColumns)

	return r.query(ctx, query, ownerID)
}

func (r *stopReportRepo) query(ctx context.Context, query string, args ...any) ([]*model.StopReport, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения отчётов об остановках: %w", err)
	}
	defer rows.Close()

	var result []*model.StopReport
	for rows.Next() {
		rep, err := scanStopReport(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования отчёта об остановке: %w", err)
		}
		result = append(result, rep)
	}
	return result, rows.Err()
}

func (r *stopReportRepo) GetByID(ctx context.Context, id int64) (*model.StopReport, error) {
	query := fmt.Sprintf(`SELECT %s FROM stop_reports WHERE id = $1`, stopReportColumns)
	rep, err := scanStopReport(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения отчёта об остановке: %w", err)
	}
	return rep, nil
}

func (r *stopReportRepo) GetImage(ctx context.Context, id int64) ([]byte, error) {
	return selectBlob(ctx, r.db, "stop_reports", "image", id)
}

func (r *stopReportRepo) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "stop_reports", id)
}

func (r *stopReportRepo) TransitionStatus(ctx context.Context, id int64, from, to status.StopStatus) (*model.StopReport, error) {
	// Проверка и запись статуса - один условный UPDATE
	query := fmt.Sprintf(`
		UPDATE stop_reports
		SET status = $3
		WHERE id = $1 AND status = $2
		RETURNING %s`, stopReportColumns)

	rep, err := scanStopReport(r.db.QueryRow(ctx, query, id, string(from), string(to)))
	if err == nil {
		return rep, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("ошибка обновления статуса отчёта: %w", err)
	}

	// Строка не изменена: отчёта нет либо статус другой
	var current string
	err = r.db.QueryRow(ctx, `SELECT status FROM stop_reports WHERE id = $1`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения статуса отчёта: %w", err)
	}
	return nil, &StatusMismatchError{Current: status.StopStatus(current)}
}
