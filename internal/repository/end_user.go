package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gamy-transporte/reportes/internal/domain/model"
)

// EndUserRepository - доступ к таблице end_users.
type EndUserRepository interface {
	// Upsert создаёт пользователя при первом входе.
	// Существующая запись возвращается без изменений.
	Upsert(ctx context.Context, externalID, displayName, email string) (*model.EndUser, error)
	// GetByID возвращает пользователя по id.
	GetByID(ctx context.Context, id int64) (*model.EndUser, error)
}

type endUserRepo struct {
	db DBTX
}

// NewEndUserRepository создаёт репозиторий пользователей.
func NewEndUserRepository(db DBTX) EndUserRepository {
	return &endUserRepo{db: db}
}

const endUserColumns = `id, external_id, display_name, email, created_at`

func scanEndUser(row pgx.Row) (*model.EndUser, error) {
	u := &model.EndUser{}
	err := row.Scan(&u.ID, &u.ExternalID, &u.DisplayName, &u.Email, &u.CreatedAt)
	return u, err
}

func (r *endUserRepo) Upsert(ctx context.Context, externalID, displayName, email string) (*model.EndUser, error) {
	_, err := r.db.Exec(ctx, `
		INSERT INTO end_users (external_id, display_name, email)
		VALUES ($1, $2, $3)
		ON CONFLICT (external_id) DO NOTHING`, externalID, displayName, email)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания пользователя: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM end_users WHERE external_id = $1`, endUserColumns)
	u, err := scanEndUser(r.db.QueryRow(ctx, query, externalID))
	if err != nil {
		return nil, fmt.Errorf("ошибка получения пользователя после upsert: %w", err)
	}
	return u, nil
}

func (r *endUserRepo) GetByID(ctx context.Context, id int64) (*model.EndUser, error) {
	query := fmt.Sprintf(`SELECT %s FROM end_users WHERE id = $1`, endUserColumns)
	u, err := scanEndUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения пользователя: %w", err)
	}
	return u, nil
}
