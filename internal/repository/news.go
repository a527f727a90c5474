package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gamy-transporte/reportes/internal/domain/model"
)

// NewsRepository - доступ к таблице news_posts.
type NewsRepository interface {
	// Create сохраняет новость вместе с изображением.
	Create(ctx context.Context, n *model.NewsPost, image []byte) error
	// List возвращает новости, новые первыми.
	List(ctx context.Context) ([]*model.NewsPost, error)
	// GetByID возвращает новость без изображения.
	GetByID(ctx context.Context, id int64) (*model.NewsPost, error)
	// GetImage возвращает изображение новости.
	GetImage(ctx context.Context, id int64) ([]byte, error)
	// Update меняет заголовок и текст. Изображение не трогается.
	Update(ctx context.Context, id int64, title, body string) (*model.NewsPost, error)
	// Delete удаляет новость.
	Delete(ctx context.Context, id int64) error
}

type newsRepo struct {
	db DBTX
}

// NewNewsRepository создаёт репозиторий новостей.
func NewNewsRepository(db DBTX) NewsRepository {
	return &newsRepo{db: db}
}

const newsColumns = `id, title, body, image IS NOT NULL, created_at`

func scanNewsPost(row pgx.Row) (*model.NewsPost, error) {
	n := &model.NewsPost{}
	err := row.Scan(&n.ID, &n.Title, &n.Body, &n.HasImage, &n.CreatedAt)
	return n, err
}

func (r *newsRepo) Create(ctx context.Context, n *model.NewsPost, image []byte) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO news_posts (title, body, image)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`, n.Title, n.Body, image,
	).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания новости: %w", err)
	}
	n.HasImage = image != nil
	return nil
}

func (r *newsRepo) List(ctx context.Context) ([]*model.NewsPost, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM news_posts
		ORDER BY created_at DESC, id DESC`, newsColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения новостей: %w", err)
	}
	defer rows.Close()

	var result []*model.NewsPost
	for rows.Next() {
		n, err := scanNewsPost(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования новости: %w", err)
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (r *newsRepo) GetByID(ctx context.Context, id int64) (*model.NewsPost, error) {
	query := fmt.Sprintf(`SELECT %s FROM news_posts WHERE id = $1`, newsColumns)
	n, err := scanNewsPost(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения новости: %w", err)
	}
	return n, nil
}

func (r *newsRepo) GetImage(ctx context.Context, id int64) ([]byte, error) {
	return selectBlob(ctx, r.db, "news_posts", "image", id)
}

func (r *newsRepo) Update(ctx context.Context, id int64, title, body string) (*model.NewsPost, error) {
	query := fmt.Sprintf(`
		UPDATE news_posts SET title = $2, body = $3
		WHERE id = $1
		RETURNING %s`, newsColumns)

	n, err := scanNewsPost(r.db.QueryRow(ctx, query, id, title, body))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка обновления новости: %w", err)
	}
	return n, nil
}

func (r *newsRepo) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "news_posts", id)
}
