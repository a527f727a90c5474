// Пакет middleware - HTTP middleware порталов.
// auth.go - проверка cookie-сессии, скользящий таймаут неактивности,
// повторная загрузка субъекта из БД на каждом запросе.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	apierrors "github.com/gamy-transporte/reportes/internal/api/errors"
	"github.com/gamy-transporte/reportes/internal/domain/access"
	"github.com/gamy-transporte/reportes/internal/domain/model"
	"github.com/gamy-transporte/reportes/internal/service"
	"github.com/gamy-transporte/reportes/internal/ui/auth"
)

// contextKey - тип для ключей контекста UI.
type contextKey string

// ContextKeyPrincipal - субъект запроса в контексте.
const ContextKeyPrincipal contextKey = "ui_principal"

// LoginPath - страница входа, куда перенаправляются запросы без доступа.
const LoginPath = "/"

// Principal - аутентифицированный субъект запроса.
// ID - id строки admin_users для администратора или end_users для пользователя.
type Principal struct {
	Role  access.Role
	ID    int64
	Email string
	Name  string
}

// PrincipalLoader загружает субъекта сессии из БД.
// Реализуется service.CredentialService.
type PrincipalLoader interface {
	GetAdmin(ctx context.Context, id int64) (*model.AdminUser, error)
	GetEndUser(ctx context.Context, id int64) (*model.EndUser, error)
}

// Gate - middleware проверки доступа к маршрутам портала.
type Gate struct {
	sessions *auth.SessionManager
	loader   PrincipalLoader
	logger   *slog.Logger
}

// NewGate создаёт новый Gate.
func NewGate(sessions *auth.SessionManager, loader PrincipalLoader, logger *slog.Logger) *Gate {
	return &Gate{
		sessions: sessions,
		loader:   loader,
		logger:   logger.With(slog.String("component", "ui_gate")),
	}
}

// RequireAdmin пропускает только сессию администратора, остальных - redirect на вход.
func (g *Gate) RequireAdmin() func(http.Handler) http.Handler {
	return g.require(access.AdminOnly, redirectToLogin)
}

// RequireUser пропускает только сессию пользователя, остальных - redirect на вход.
func (g *Gate) RequireUser() func(http.Handler) http.Handler {
	return g.require(access.UserOnly, redirectToLogin)
}

// RequireAdminJSON - вариант RequireAdmin для JSON-эндпоинтов: 401 вместо redirect.
func (g *Gate) RequireAdminJSON() func(http.Handler) http.Handler {
	return g.require(access.AdminOnly, func(w http.ResponseWriter, _ *http.Request) {
		apierrors.Unauthorized(w, "Sesión no válida o expirada")
	})
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, LoginPath, http.StatusFound)
}

func (g *Gate) require(required access.Requirement, deny http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Извлекаем сессию из cookie
			data, err := g.sessions.Load(r)
			if err != nil {
				g.logger.Debug("Ошибка чтения сессии",
					slog.String("error", err.Error()),
					slog.String("remote_addr", r.RemoteAddr),
				)
				g.sessions.Clear(w, r)
				deny(w, r)
				return
			}
			if data == nil {
				deny(w, r)
				return
			}

			// 2. Таймаут неактивности
			if g.sessions.Expired(data) {
				g.logger.Info("Сессия истекла по неактивности",
					slog.String("role", string(data.Role)),
					slog.Int64("subject", data.Subject),
				)
				g.sessions.Clear(w, r)
				deny(w, r)
				return
			}

			// 3. Роль
			if access.Authorize(data.Role, required) != access.Allow {
				deny(w, r)
				return
			}

			// 4. Субъект должен существовать в БД на момент запроса
			principal, err := g.loadPrincipal(r.Context(), data)
			if err != nil {
				if errors.Is(err, service.ErrNotFound) {
					g.logger.Info("Субъект сессии удалён",
						slog.String("role", string(data.Role)),
						slog.Int64("subject", data.Subject),
					)
					g.sessions.Clear(w, r)
					deny(w, r)
					return
				}
				g.logger.Error("Ошибка загрузки субъекта сессии",
					slog.String("error", err.Error()),
				)
				http.Error(w, "Error interno", http.StatusInternalServerError)
				return
			}

			// 5. Скользящее продление
			data.Email = principal.Email
			data.Name = principal.Name
			if err := g.sessions.Save(w, r, data); err != nil {
				g.logger.Warn("Ошибка продления сессии",
					slog.String("error", err.Error()),
				)
			}

			ctx := WithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (g *Gate) loadPrincipal(ctx context.Context, data *auth.SessionData) (*Principal, error) {
	switch data.Role {
	case access.RoleAdmin:
		admin, err := g.loader.GetAdmin(ctx, data.Subject)
		if err != nil {
			return nil, err
		}
		return &Principal{Role: access.RoleAdmin, ID: admin.ID, Email: admin.Email, Name: admin.Email}, nil
	case access.RoleUser:
		user, err := g.loader.GetEndUser(ctx, data.Subject)
		if err != nil {
			return nil, err
		}
		return &Principal{Role: access.RoleUser, ID: user.ID, Email: user.Email, Name: user.DisplayName}, nil
	default:
		return nil, service.ErrNotFound
	}
}

// PrincipalFromContext извлекает Principal из контекста запроса.
// Возвращает nil если запрос не прошёл через Gate.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, ok := ctx.Value(ContextKeyPrincipal).(*Principal)
	if !ok {
		return nil
	}
	return p
}

// WithPrincipal помещает Principal в контекст.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ContextKeyPrincipal, p)
}
