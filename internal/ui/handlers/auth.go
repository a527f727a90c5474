// auth.go - вход администратора (email + пароль), вход через Google
// (Authorization Code + PKCE) и выход для обоих порталов.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gamy-transporte/reportes/internal/domain/access"
	"github.com/gamy-transporte/reportes/internal/service"
	"github.com/gamy-transporte/reportes/internal/ui/auth"
	"github.com/gamy-transporte/reportes/internal/ui/i18n"
	"github.com/gamy-transporte/reportes/internal/ui/pages"
)

// Путь callback Google относительно портала.
const googleCallbackPath = "/auth/google/callback"

// AuthHandler - обработчики входа и выхода.
// role определяет портал: администратор или пользователь.
type AuthHandler struct {
	role        access.Role
	sessions    *auth.SessionManager
	creds       Credentials
	google      GoogleLogin
	redirectURL string
	logger      *slog.Logger
}

// NewAuthHandler создаёт AuthHandler.
// google == nil - вход через Google отключён.
// redirectURL - callback Google, пустой - строится из запроса.
func NewAuthHandler(
	role access.Role,
	sessions *auth.SessionManager,
	creds Credentials,
	google GoogleLogin,
	redirectURL string,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		role:        role,
		sessions:    sessions,
		creds:       creds,
		google:      google,
		redirectURL: redirectURL,
		logger:      logger.With(slog.String("component", "ui.auth")),
	}
}

// homePath - страница после входа.
func (h *AuthHandler) homePath() string {
	if h.role == access.RoleAdmin {
		return "/home"
	}
	return "/index"
}

// loggedIn проверяет действующую сессию нужной роли.
func (h *AuthHandler) loggedIn(r *http.Request) bool {
	data, err := h.sessions.Load(r)
	return err == nil && data != nil && data.Role == h.role && !h.sessions.Expired(data)
}

// HandleLoginPage - GET / портала администратора.
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	if h.loggedIn(r) {
		http.Redirect(w, r, h.homePath(), http.StatusFound)
		return
	}
	h.renderLogin(w, r, http.StatusOK, "", "")
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, email, errMsg string) {
	b := base(r, "title.login")
	b.Admin = true
	render(w, r, h.logger, status, pages.Login(pages.LoginData{
		Base:          b,
		Email:         email,
		Error:         errMsg,
		GoogleEnabled: h.google != nil,
	}))
}

// HandleLogin - POST /login. Проверка email и пароля администратора.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	admin, err := h.creds.VerifyLocal(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, service.ErrAuthFailure) {
			h.logger.Info("Неудачная попытка входа", slog.String("email", email))
			h.renderLogin(w, r, http.StatusUnauthorized, email, i18n.T(r.Context(), "login.invalid"))
			return
		}
		renderError(w, r, h.logger, true, err)
		return
	}

	if err := h.sessions.Save(w, r, &auth.SessionData{
		Role:    access.RoleAdmin,
		Subject: admin.ID,
		Email:   admin.Email,
		Name:    admin.Email,
	}); err != nil {
		renderError(w, r, h.logger, true, err)
		return
	}

	h.logger.Info("Администратор вошёл", slog.Int64("admin_id", admin.ID))
	http.Redirect(w, r, "/home", http.StatusSeeOther)
}

// HandleLanding - GET / портала пользователя.
func (h *AuthHandler) HandleLanding(w http.ResponseWriter, r *http.Request) {
	if h.loggedIn(r) {
		http.Redirect(w, r, h.homePath(), http.StatusFound)
		return
	}
	render(w, r, h.logger, http.StatusOK, pages.Landing(pages.LandingData{Base: base(r, "title.landing")}))
}

// HandleGoogleLogin - GET /auth/google.
// Генерирует state и PKCE verifier, сохраняет в короткоживущей cookie,
// redirect на Google.
func (h *AuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		http.NotFound(w, r)
		return
	}

	state, err := auth.GenerateState()
	if err != nil {
		h.logger.Error("Ошибка генерации state", slog.String("error", err.Error()))
		renderError(w, r, h.logger, h.role == access.RoleAdmin, err)
		return
	}
	verifier := auth.GenerateVerifier()

	if err := h.sessions.SaveState(w, r, state, verifier); err != nil {
		renderError(w, r, h.logger, h.role == access.RoleAdmin, err)
		return
	}

	http.Redirect(w, r, h.google.AuthCodeURL(h.callbackURL(r), state, verifier), http.StatusFound)
}

// HandleGoogleCallback - GET /auth/google/callback.
// Обменивает code на id_token, создаёт сессию.
func (h *AuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	if errCode := q.Get("error"); errCode != "" {
		h.logger.Warn("Google вернул ошибку авторизации", slog.String("error", errCode))
		h.loginFailed(w, r, "error.google")
		return
	}

	verifier, err := h.sessions.PopState(w, r, q.Get("state"))
	if err != nil {
		h.logger.Warn("Проверка state не пройдена", slog.String("error", err.Error()))
		h.loginFailed(w, r, "error.google")
		return
	}

	code := q.Get("code")
	if code == "" {
		h.loginFailed(w, r, "error.google")
		return
	}

	identity, err := h.google.Exchange(r.Context(), code, h.callbackURL(r), verifier)
	if err != nil {
		h.logger.Error("Ошибка входа через Google", slog.String("error", err.Error()))
		h.loginFailed(w, r, "error.google")
		return
	}

	var data *auth.SessionData
	if h.role == access.RoleAdmin {
		data, err = h.googleAdmin(r, identity)
	} else {
		data, err = h.googleUser(r, identity)
	}
	if err != nil {
		if errors.Is(err, service.ErrAuthFailure) {
			h.loginFailed(w, r, "login.google_denied")
			return
		}
		renderError(w, r, h.logger, h.role == access.RoleAdmin, err)
		return
	}

	if err := h.sessions.Save(w, r, data); err != nil {
		renderError(w, r, h.logger, h.role == access.RoleAdmin, err)
		return
	}

	h.logger.Info("Вход через Google",
		slog.String("role", string(data.Role)),
		slog.Int64("subject", data.Subject),
	)
	http.Redirect(w, r, h.homePath(), http.StatusSeeOther)
}

// googleAdmin пропускает только существующего администратора с подтверждённым email.
func (h *AuthHandler) googleAdmin(r *http.Request, identity *auth.Identity) (*auth.SessionData, error) {
	if !identity.EmailVerified {
		return nil, service.ErrAuthFailure
	}
	admin, err := h.creds.AuthorizeGoogleAdmin(r.Context(), identity.Email)
	if err != nil {
		return nil, err
	}
	return &auth.SessionData{Role: access.RoleAdmin, Subject: admin.ID, Email: admin.Email, Name: admin.Email}, nil
}

// googleUser создаёт пользователя при первом входе.
func (h *AuthHandler) googleUser(r *http.Request, identity *auth.Identity) (*auth.SessionData, error) {
	user, err := h.creds.UpsertExternalUser(r.Context(), identity.Subject, identity.Name, identity.Email)
	if err != nil {
		return nil, err
	}
	return &auth.SessionData{Role: access.RoleUser, Subject: user.ID, Email: user.Email, Name: user.DisplayName}, nil
}

// loginFailed возвращает на страницу входа с сообщением.
func (h *AuthHandler) loginFailed(w http.ResponseWriter, r *http.Request, key string) {
	msg := i18n.T(r.Context(), key)
	if h.role == access.RoleAdmin {
		h.renderLogin(w, r, http.StatusUnauthorized, "", msg)
		return
	}
	render(w, r, h.logger, http.StatusUnauthorized, pages.Landing(pages.LandingData{
		Base:  base(r, "title.landing"),
		Error: msg,
	}))
}

// HandleLogout - GET /logout. Удаляет сессию, redirect на вход.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w, r)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *AuthHandler) callbackURL(r *http.Request) string {
	if h.redirectURL != "" {
		return h.redirectURL
	}
	return buildBaseURL(r) + googleCallbackPath
}
