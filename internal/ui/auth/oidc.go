// oidc.go - клиент входа через Google (OpenID Connect).
// Authorization Code Flow с PKCE (RFC 7636), проверка id_token по JWKS Google.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// Допустимые значения iss в id_token Google.
var googleIssuers = []string{"https://accounts.google.com", "accounts.google.com"}

// ErrInvalidIDToken - id_token не прошёл проверку.
var ErrInvalidIDToken = errors.New("невалидный id_token")

// GoogleConfig - конфигурация клиента Google.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	JWKSURL      string
	// HTTPClient - клиент для token endpoint и JWKS (nil - создаётся с Timeout).
	HTTPClient *http.Client
	// Timeout - таймаут HTTP-запросов. Используется при HTTPClient == nil.
	Timeout time.Duration
	// JWKSRefreshInterval - интервал фонового обновления ключей.
	JWKSRefreshInterval time.Duration
}

// Identity - проверенная личность из id_token.
type Identity struct {
	// Subject - sub Google, стабильный идентификатор аккаунта.
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}

// googleClaims - claims id_token Google.
type googleClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// GoogleClient - клиент OAuth Google.
type GoogleClient struct {
	oauth      oauth2.Config
	jwks       keyfunc.Keyfunc
	httpClient *http.Client
	leeway     time.Duration
}

// NewGoogleClient создаёт клиент Google с JWKS-хранилищем и фоновым обновлением.
// Сервис стартует даже если JWKS недоступен в момент запуска.
func NewGoogleClient(ctx context.Context, cfg GoogleConfig, logger *slog.Logger) (*GoogleClient, error) {
	httpClient := googleHTTPClient(cfg)

	refresh := cfg.JWKSRefreshInterval
	if refresh <= 0 {
		refresh = time.Hour
	}

	storage, err := jwkset.NewStorageFromHTTP(cfg.JWKSURL, jwkset.HTTPClientStorageOptions{
		Client:                    httpClient,
		Ctx:                       ctx,
		NoErrorReturnFirstHTTPReq: true,
		RefreshInterval:           refresh,
		RefreshErrorHandler: func(_ context.Context, err error) {
			logger.Error("Ошибка обновления JWKS Google",
				slog.String("error", err.Error()),
				slog.String("url", cfg.JWKSURL),
			)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("создание JWKS storage: %w", err)
	}

	k, err := keyfunc.New(keyfunc.Options{
		Ctx:     ctx,
		Storage: storage,
	})
	if err != nil {
		return nil, fmt.Errorf("создание keyfunc: %w", err)
	}

	return NewGoogleClientWithKeyfunc(cfg, k), nil
}

// NewGoogleClientWithKeyfunc создаёт клиент с предоставленной keyfunc.
// Используется в тестах для подстановки JWKS.
func NewGoogleClientWithKeyfunc(cfg GoogleConfig, kf keyfunc.Keyfunc) *GoogleClient {
	return &GoogleClient{
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
			Scopes: []string{"openid", "profile", "email"},
		},
		jwks:       kf,
		httpClient: googleHTTPClient(cfg),
		leeway:     30 * time.Second,
	}
}

func googleHTTPClient(cfg GoogleConfig) *http.Client {
	if cfg.HTTPClient != nil {
		return cfg.HTTPClient
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// GenerateVerifier генерирует PKCE code_verifier.
func GenerateVerifier() string {
	return oauth2.GenerateVerifier()
}

// GenerateState генерирует случайный state parameter для CSRF-защиты.
func GenerateState() (string, error) {
	stateBytes := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, stateBytes); err != nil {
		return "", fmt.Errorf("ошибка генерации state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(stateBytes), nil
}

// AuthCodeURL формирует URL redirect на страницу входа Google.
// redirectURI - callback портала, verifier - PKCE code_verifier (S256).
func (c *GoogleClient) AuthCodeURL(redirectURI, state, verifier string) string {
	conf := c.oauth
	conf.RedirectURL = redirectURI
	return conf.AuthCodeURL(state,
		oauth2.S256ChallengeOption(verifier),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
}

// Exchange обменивает authorization code на токены и проверяет id_token.
func (c *GoogleClient) Exchange(ctx context.Context, code, redirectURI, verifier string) (*Identity, error) {
	conf := c.oauth
	conf.RedirectURL = redirectURI

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := conf.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("ошибка обмена code на токены: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, fmt.Errorf("%w: отсутствует в ответе token endpoint", ErrInvalidIDToken)
	}

	return c.VerifyIDToken(ctx, rawIDToken)
}

// VerifyIDToken проверяет подпись (RS256), срок действия, audience и issuer id_token.
func (c *GoogleClient) VerifyIDToken(ctx context.Context, raw string) (*Identity, error) {
	claims := &googleClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, c.jwks.KeyfuncCtx(ctx),
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithAudience(c.oauth.ClientID),
		jwt.WithLeeway(c.leeway),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidIDToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidIDToken
	}

	if !validIssuer(claims.Issuer) {
		return nil, fmt.Errorf("%w: неизвестный issuer %q", ErrInvalidIDToken, claims.Issuer)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: отсутствует sub", ErrInvalidIDToken)
	}

	return &Identity{
		Subject:       claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
	}, nil
}

func validIssuer(iss string) bool {
	for _, v := range googleIssuers {
		if iss == v {
			return true
		}
	}
	return false
}
