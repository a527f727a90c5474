// Пакет repository - слой доступа к данным PostgreSQL.
// Все запросы - чистый SQL через pgx, без ORM.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gamy-transporte/reportes/internal/domain/status"
)

// Ошибки слоя репозиториев.
var (
	// ErrNotFound - запись не найдена.
	ErrNotFound = errors.New("запись не найдена")
	// ErrConflict - конфликт уникальности (дублирующийся ресурс).
	ErrConflict = errors.New("конфликт - запись уже существует")
)

// StatusMismatchError - условный UPDATE статуса не сработал:
// запись существует, но её статус отличается от ожидаемого.
type StatusMismatchError struct {
	Current status.StopStatus
}

func (e *StatusMismatchError) Error() string {
	return fmt.Sprintf("текущий статус %q не совпадает с ожидаемым", e.Current)
}

// DBTX - интерфейс для выполнения SQL-запросов.
// Реализуется как *pgxpool.Pool, так и pgx.Tx, что позволяет
// использовать репозитории как внутри, так и вне транзакций.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// isUniqueViolation проверяет, является ли ошибка нарушением уникальности PostgreSQL.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

// deleteByID удаляет запись по id. ErrNotFound, если ни одна строка не удалена.
func deleteByID(ctx context.Context, db DBTX, table string, id int64) error {
	tag, err := db.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return fmt.Errorf("ошибка удаления из %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// selectBlob читает бинарную колонку по id.
// ErrNotFound, если записи нет или колонка NULL.
func selectBlob(ctx context.Context, db DBTX, table, column string, id int64) ([]byte, error) {
	var data []byte
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, column, table)
	if err := db.QueryRow(ctx, query, id).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка чтения %s.%s: %w", table, column, err)
	}
	if data == nil {
		return nil, ErrNotFound
	}
	return data, nil
}
