// credentials.go - учётные данные администраторов (email + bcrypt)
// и пользователей, вошедших через Google.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/gamy-transporte/reportes/internal/domain/model"
	"github.com/gamy-transporte/reportes/internal/repository"
)

// MinPasswordLength - минимальная длина пароля администратора.
const MinPasswordLength = 6

// AdminInput - данные для создания администратора.
type AdminInput struct {
	Email    string `validate:"required,email,max=254" label:"correo"`
	Password string `validate:"required,min=6,max=72" label:"contraseña"`
}

// adminUpdate - данные для изменения администратора. Пароль необязателен.
type adminUpdate struct {
	Email    string `validate:"required,email,max=254" label:"correo"`
	Password string `validate:"omitempty,min=6,max=72" label:"contraseña"`
}

// externalIdentity - профиль пользователя от Google.
type externalIdentity struct {
	ExternalID  string `validate:"required,max=255" label:"identificador"`
	DisplayName string `validate:"max=255" label:"nombre"`
	Email       string `validate:"max=254" label:"correo"`
}

// CredentialService - проверка учётных данных и управление администраторами.
type CredentialService struct {
	admins repository.AdminUserRepository
	users  repository.EndUserRepository
	cost   int
	logger *slog.Logger
}

// NewCredentialService создаёт сервис учётных данных.
func NewCredentialService(
	admins repository.AdminUserRepository,
	users repository.EndUserRepository,
	logger *slog.Logger,
) *CredentialService {
	return &CredentialService{
		admins: admins,
		users:  users,
		cost:   bcrypt.DefaultCost,
		logger: logger.With(slog.String("component", "credential_service")),
	}
}

// normalizeEmail приводит email к каноническому виду.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// VerifyLocal проверяет email и пароль администратора.
// Неизвестный email и неверный пароль неразличимы: оба дают ErrAuthFailure.
func (s *CredentialService) VerifyLocal(ctx context.Context, email, password string) (*model.AdminUser, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrAuthFailure
	}

	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAuthFailure
		}
		return nil, repoError("поиск администратора", err)
	}

	if err := checkPassword(admin.PasswordHash, password); err != nil {
		return nil, ErrAuthFailure
	}
	return admin, nil
}

// AuthorizeGoogleAdmin разрешает вход через Google только для
// существующего администратора с тем же email.
func (s *CredentialService) AuthorizeGoogleAdmin(ctx context.Context, email string) (*model.AdminUser, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrAuthFailure
	}

	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAuthFailure
		}
		return nil, repoError("поиск администратора", err)
	}
	return admin, nil
}

// UpsertExternalUser возвращает пользователя по Google subject,
// создавая его при первом входе. Существующая запись не изменяется.
func (s *CredentialService) UpsertExternalUser(ctx context.Context, externalID, displayName, email string) (*model.EndUser, error) {
	in := externalIdentity{
		ExternalID:  strings.TrimSpace(externalID),
		DisplayName: strings.TrimSpace(displayName),
		Email:       normalizeEmail(email),
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	user, err := s.users.Upsert(ctx, in.ExternalID, in.DisplayName, in.Email)
	if err != nil {
		return nil, repoError("upsert пользователя", err)
	}
	return user, nil
}

// GetEndUser возвращает пользователя по id.
func (s *CredentialService) GetEndUser(ctx context.Context, id int64) (*model.EndUser, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, repoError("получение пользователя", err)
	}
	return user, nil
}

// Bootstrap создаёт начального администратора, если его ещё нет.
// Пустой пароль - пропуск с предупреждением.
func (s *CredentialService) Bootstrap(ctx context.Context, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if password == "" {
		s.logger.Warn("Начальный администратор не создан: GM_BOOTSTRAP_ADMIN_PASSWORD не задан",
			slog.String("email", email),
		)
		return false, nil
	}
	if err := validateStruct(AdminInput{Email: email, Password: password}); err != nil {
		return false, err
	}

	hash, err := hashPassword(password, s.cost)
	if err != nil {
		return false, fmt.Errorf("хэширование пароля: %w", err)
	}

	created, err := s.admins.CreateIfAbsent(ctx, email, hash)
	if err != nil {
		return false, repoError("создание начального администратора", err)
	}
	if created {
		s.logger.Info("Начальный администратор создан", slog.String("email", email))
	} else {
		s.logger.Debug("Начальный администратор уже существует", slog.String("email", email))
	}
	return created, nil
}

// ListAdmins возвращает всех администраторов.
func (s *CredentialService) ListAdmins(ctx context.Context) ([]*model.AdminUser, error) {
	admins, err := s.admins.List(ctx)
	if err != nil {
		return nil, repoError("список администраторов", err)
	}
	return admins, nil
}

// GetAdmin возвращает администратора по id.
func (s *CredentialService) GetAdmin(ctx context.Context, id int64) (*model.AdminUser, error) {
	admin, err := s.admins.GetByID(ctx, id)
	if err != nil {
		return nil, repoError("получение администратора", err)
	}
	return admin, nil
}

// CreateAdmin создаёт администратора. Дубликат email - ErrConflict.
func (s *CredentialService) CreateAdmin(ctx context.Context, in AdminInput) (*model.AdminUser, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	hash, err := hashPassword(in.Password, s.cost)
	if err != nil {
		return nil, fmt.Errorf("хэширование пароля: %w", err)
	}

	admin := &model.AdminUser{Email: in.Email, PasswordHash: hash}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, repoError("создание администратора", err)
	}

	s.logger.Info("Администратор создан",
		slog.Int64("admin_id", admin.ID),
		slog.String("email", admin.Email),
	)
	return admin, nil
}

// UpdateAdmin меняет email администратора и, если password не пуст, пароль.
func (s *CredentialService) UpdateAdmin(ctx context.Context, id int64, email, password string) (*model.AdminUser, error) {
	in := adminUpdate{Email: normalizeEmail(email), Password: password}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	admin, err := s.admins.GetByID(ctx, id)
	if err != nil {
		return nil, repoError("получение администратора", err)
	}

	admin.Email = in.Email
	if in.Password != "" {
		hash, err := hashPassword(in.Password, s.cost)
		if err != nil {
			return nil, fmt.Errorf("хэширование пароля: %w", err)
		}
		admin.PasswordHash = hash
	}

	if err := s.admins.Update(ctx, admin); err != nil {
		return nil, repoError("обновление администратора", err)
	}

	s.logger.Info("Администратор обновлён",
		slog.Int64("admin_id", admin.ID),
		slog.Bool("password_changed", in.Password != ""),
	)
	return admin, nil
}

// DeleteAdmin удаляет администратора.
func (s *CredentialService) DeleteAdmin(ctx context.Context, id int64) error {
	if err := s.admins.Delete(ctx, id); err != nil {
		return repoError("удаление администратора", err)
	}
	s.logger.Info("Администратор удалён", slog.Int64("admin_id", id))
	return nil
}
