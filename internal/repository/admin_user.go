package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gamy-transporte/reportes/internal/domain/model"
)

// AdminUserRepository - интерфейс CRUD для таблицы admin_users.
type AdminUserRepository interface {
	// Create создаёт администратора. ErrConflict, если email занят.
	Create(ctx context.Context, u *model.AdminUser) error
	// CreateIfAbsent создаёт администратора, если email свободен.
	// Возвращает true, если запись создана.
	CreateIfAbsent(ctx context.Context, email, passwordHash string) (bool, error)
	// GetByID возвращает администратора по id.
	GetByID(ctx context.Context, id int64) (*model.AdminUser, error)
	// GetByEmail возвращает администратора по email.
	GetByEmail(ctx context.Context, email string) (*model.AdminUser, error)
	// List возвращает всех администраторов по email.
	List(ctx context.Context) ([]*model.AdminUser, error)
	// Update обновляет email и хэш пароля.
	Update(ctx context.Context, u *model.AdminUser) error
	// Delete удаляет администратора.
	Delete(ctx context.Context, id int64) error
}

// adminUserRepo - реализация AdminUserRepository.
type adminUserRepo struct {
	db DBTX
}

// NewAdminUserRepository создаёт репозиторий администраторов.
func NewAdminUserRepository(db DBTX) AdminUserRepository {
	return &adminUserRepo{db: db}
}

const adminColumns = `id, email, password_hash, created_at`

// scanAdminUser сканирует строку результата в модель AdminUser.
func scanAdminUser(row pgx.Row) (*model.AdminUser, error) {
	u := &model.AdminUser{}
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

func (r *adminUserRepo) Create(ctx context.Context, u *model.AdminUser) error {
	query := `
		INSERT INTO admin_users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query, u.Email, u.PasswordHash).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: администратор с email %s уже существует", ErrConflict, u.Email)
		}
		return fmt.Errorf("ошибка создания администратора: %w", err)
	}
	return nil
}

func (r *adminUserRepo) CreateIfAbsent(ctx context.Context, email, passwordHash string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO admin_users (email, password_hash)
		VALUES ($1, $2)
		ON CONFLICT (email) DO NOTHING`, email, passwordHash)
	if err != nil {
		return false, fmt.Errorf("ошибка создания администратора: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *adminUserRepo) GetByID(ctx context.Context, id int64) (*model.AdminUser, error) {
	query := fmt.Sprintf(`SELECT %s FROM admin_users WHERE id = $1`, adminColumns)
	u, err := scanAdminUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения администратора: %w", err)
	}
	return u, nil
}

func (r *adminUserRepo) GetByEmail(ctx context.Context, email string) (*model.AdminUser, error) {
	query := fmt.Sprintf(`SELECT %s FROM admin_users WHERE email = $1`, adminColumns)
	u, err := scanAdminUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения администратора по email: %w", err)
	}
	return u, nil
}

func (r *adminUserRepo) List(ctx context.Context) ([]*model.AdminUser, error) {
	query := fmt.Sprintf(`SELECT %s FROM admin_users ORDER BY email`, adminColumns)
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка администраторов: %w", err)
	}
	defer rows.Close()

	var result []*model.AdminUser
	for rows.Next() {
		u, err := scanAdminUser(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования администратора: %w", err)
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

func (r *adminUserRepo) Update(ctx context.Context, u *model.AdminUser) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE admin_users
		SET email = $2, password_hash = $3
		WHERE id = $1`, u.ID, u.Email, u.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: администратор с email %s уже существует", ErrConflict, u.Email)
		}
		return fmt.Errorf("ошибка обновления администратора: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *adminUserRepo) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "admin_users", id)
}
