// Пакет auth - аутентификация и управление сессиями порталов.
// Подписанные и зашифрованные cookie-сессии (gorilla/sessions),
// OAuth-клиент Google (authorization code + PKCE).
package auth

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	"github.com/gamy-transporte/reportes/internal/domain/access"
)

// Имя cookie сессии портала.
const SessionCookieName = "gamy_session"

// Имя cookie с state и PKCE verifier на время OAuth-входа.
const StateCookieName = "gamy_oauth_state"

// StateCookieMaxAge - время жизни state cookie (5 минут).
const StateCookieMaxAge = 5 * 60

// Ключи значений в сессии.
const (
	keyRole     = "role"
	keySubject  = "subject"
	keyEmail    = "email"
	keyName     = "name"
	keyLastSeen = "last_seen"
	keyState    = "state"
	keyVerifier = "verifier"
)

// ErrStateMismatch - state из callback не совпал с сохранённым.
var ErrStateMismatch = errors.New("state не совпадает")

// ErrStateMissing - state cookie отсутствует или истекла.
var ErrStateMissing = errors.New("state cookie отсутствует")

// SessionData - данные сессии, хранящиеся в cookie.
// Subject - id строки admin_users или end_users в зависимости от роли.
type SessionData struct {
	Role     access.Role
	Subject  int64
	Email    string
	Name     string
	LastSeen time.Time
}

// SessionManager - менеджер cookie-сессий портала.
type SessionManager struct {
	store *sessions.CookieStore
	state *sessions.CookieStore
	idle  time.Duration
	now   func() time.Time
}

// NewSessionManager создаёт менеджер сессий.
// secret - секрет подписи и шифрования. Если пустой - ключи генерируются
// случайно и сессии не переживают рестарт.
// idle - таймаут неактивности, он же max-age cookie (скользящий).
func NewSessionManager(secret string, idle time.Duration, secure bool) (*SessionManager, error) {
	if idle <= 0 {
		return nil, fmt.Errorf("таймаут сессии должен быть положительным: %s", idle)
	}

	var hashKey, blockKey []byte
	if secret == "" {
		hashKey = securecookie.GenerateRandomKey(64)
		blockKey = securecookie.GenerateRandomKey(32)
		if hashKey == nil || blockKey == nil {
			return nil, errors.New("ошибка генерации ключей сессии")
		}
	} else {
		hashKey = deriveKey("hash", secret)
		blockKey = deriveKey("block", secret)
	}

	return &SessionManager{
		store: newCookieStore(hashKey, blockKey, int(idle.Seconds()), secure),
		state: newCookieStore(hashKey, blockKey, StateCookieMaxAge, secure),
		idle:  idle,
		now:   time.Now,
	}, nil
}

func newCookieStore(hashKey, blockKey []byte, maxAge int, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore(hashKey, blockKey)
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(maxAge)
	return store
}

// deriveKey хеширует секрет в 32 байта с разделением по назначению ключа.
func deriveKey(purpose, secret string) []byte {
	h := sha256.Sum256([]byte(purpose + ":" + secret))
	return h[:]
}

// Load извлекает SessionData из cookie запроса.
// Возвращает nil, nil если сессии нет. Ошибка означает повреждённую
// или поддельную cookie.
func (sm *SessionManager) Load(r *http.Request) (*SessionData, error) {
	session, err := sm.store.Get(r, SessionCookieName)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения сессии: %w", err)
	}
	if session.IsNew {
		return nil, nil
	}

	role, _ := session.Values[keyRole].(string)
	subject, _ := session.Values[keySubject].(int64)
	if !access.IsValidRole(role) || subject <= 0 {
		return nil, nil
	}

	data := &SessionData{
		Role:    access.Role(role),
		Subject: subject,
	}
	data.Email, _ = session.Values[keyEmail].(string)
	data.Name, _ = session.Values[keyName].(string)
	if ts, ok := session.Values[keyLastSeen].(int64); ok {
		data.LastSeen = time.Unix(ts, 0)
	}
	return data, nil
}

// Expired проверяет таймаут неактивности сессии.
func (sm *SessionManager) Expired(data *SessionData) bool {
	return sm.now().Sub(data.LastSeen) > sm.idle
}

// Save записывает SessionData в cookie и обновляет LastSeen.
// Повторный вызов на каждом запросе продлевает сессию.
func (sm *SessionManager) Save(w http.ResponseWriter, r *http.Request, data *SessionData) error {
	// Ошибка Get означает повреждённую cookie: она перезаписывается новой сессией
	session, _ := sm.store.Get(r, SessionCookieName)

	data.LastSeen = sm.now()
	session.Values[keyRole] = string(data.Role)
	session.Values[keySubject] = data.Subject
	session.Values[keyEmail] = data.Email
	session.Values[keyName] = data.Name
	session.Values[keyLastSeen] = data.LastSeen.Unix()

	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("ошибка сохранения сессии: %w", err)
	}
	return nil
}

// Clear удаляет cookie сессии (logout).
func (sm *SessionManager) Clear(w http.ResponseWriter, r *http.Request) {
	session, _ := sm.store.Get(r, SessionCookieName)
	session.Values = map[any]any{}
	session.Options.MaxAge = -1
	_ = session.Save(r, w)
}

// SaveState сохраняет state и PKCE verifier в короткоживущую cookie.
func (sm *SessionManager) SaveState(w http.ResponseWriter, r *http.Request, state, verifier string) error {
	session, _ := sm.state.Get(r, StateCookieName)
	session.Values[keyState] = state
	session.Values[keyVerifier] = verifier
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("ошибка сохранения state: %w", err)
	}
	return nil
}

// PopState проверяет state из callback и возвращает PKCE verifier.
// State cookie удаляется в любом случае (одноразовая).
func (sm *SessionManager) PopState(w http.ResponseWriter, r *http.Request, state string) (string, error) {
	session, err := sm.state.Get(r, StateCookieName)
	if err != nil || session.IsNew {
		return "", ErrStateMissing
	}

	saved, _ := session.Values[keyState].(string)
	verifier, _ := session.Values[keyVerifier].(string)

	session.Values = map[any]any{}
	session.Options.MaxAge = -1
	_ = session.Save(r, w)

	if saved == "" || verifier == "" {
		return "", ErrStateMissing
	}
	if saved != state {
		return "", ErrStateMismatch
	}
	return verifier, nil
}
