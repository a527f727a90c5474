// news.go - новости для пользователей.
package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gamy-transporte/reportes/internal/domain/model"
	"github.com/gamy-transporte/reportes/internal/repository"
)

// CreateNews - данные новой новости.
type CreateNews struct {
	Title string `validate:"required,max=200" label:"título"`
	Body  string `validate:"required,max=10000" label:"información"`
	Image []byte `validate:"required,min=1" label:"imagen"`
}

// UpdateNews - изменяемые поля новости. Изображение не меняется.
type UpdateNews struct {
	Title string `validate:"required,max=200" label:"título"`
	Body  string `validate:"required,max=10000" label:"información"`
}

// NewsService - новости.
type NewsService struct {
	repo   repository.NewsRepository
	images *ImageCache
	logger *slog.Logger
}

// NewNewsService создаёт сервис новостей.
func NewNewsService(repo repository.NewsRepository, images *ImageCache, logger *slog.Logger) *NewsService {
	return &NewsService{
		repo:   repo,
		images: images,
		logger: logger.With(slog.String("component", "news_service")),
	}
}

// Create публикует новость.
func (s *NewsService) Create(ctx context.Context, in CreateNews) (*model.NewsPost, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Body = strings.TrimSpace(in.Body)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if _, ok := sniffImage(in.Image); !ok {
		return nil, invalid("El archivo adjunto no es una imagen")
	}

	post := &model.NewsPost{Title: in.Title, Body: in.Body}
	if err := s.repo.Create(ctx, post, in.Image); err != nil {
		return nil, repoError("создание новости", err)
	}

	s.logger.Info("Новость опубликована", slog.Int64("news_id", post.ID))
	return post, nil
}

// List возвращает новости, новые первыми.
func (s *NewsService) List(ctx context.Context) ([]*model.NewsPost, error) {
	posts, err := s.repo.List(ctx)
	if err != nil {
		return nil, repoError("список новостей", err)
	}
	return posts, nil
}

// Get возвращает новость по id.
func (s *NewsService) Get(ctx context.Context, id int64) (*model.NewsPost, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, repoError("получение новости", err)
	}
	return post, nil
}

// Update меняет заголовок и текст новости.
func (s *NewsService) Update(ctx context.Context, id int64, in UpdateNews) (*model.NewsPost, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Body = strings.TrimSpace(in.Body)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	post, err := s.repo.Update(ctx, id, in.Title, in.Body)
	if err != nil {
		return nil, repoError("обновление новости", err)
	}

	s.logger.Info("Новость обновлена", slog.Int64("news_id", id))
	return post, nil
}

// Delete удаляет новость. Несуществующий id - ErrNotFound.
func (s *NewsService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return repoError("удаление новости", err)
	}
	s.images.Delete(ImageNews, id)
	s.logger.Info("Новость удалена", slog.Int64("news_id", id))
	return nil
}

// Image возвращает изображение новости.
func (s *NewsService) Image(ctx context.Context, id int64) (*model.Image, error) {
	img, err := loadImage(s.images, ImageNews, id, func() ([]byte, error) {
		return s.repo.GetImage(ctx, id)
	})
	if err != nil {
		return nil, repoError("изображение новости", err)
	}
	return img, nil
}
