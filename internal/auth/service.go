package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"speakersite/internal/apperr"
	"speakersite/internal/config"
	"speakersite/internal/redis"
	"speakersite/internal/storage"
)

const redisTokenPrefix = "speakersite:token:"

var (
	errTokenRequired = errors.New("token required")
	errTokenInvalid  = errors.New("invalid token")
	errTokenExpired  = errors.New("token expired")
)

// Service issues, validates, and revokes session tokens and owns the user accounts behind them.
type Service struct {
	store          *storage.Store
	cache          *redis.Client
	log            *logrus.Logger
	tokenTTL       time.Duration
	admins         map[string]struct{}
	cookieName     string
	headerName     string
	csrfCookieName string
	csrfHeaderName string
}

// NewService constructs an auth service. cache may be nil.
func NewService(store *storage.Store, cache *redis.Client, cfg config.AuthConfig, log *logrus.Logger) *Service {
	ttl := time.Duration(cfg.TokenTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	admins := make(map[string]struct{}, len(cfg.Admins))
	for _, name := range cfg.Admins {
		if name = strings.TrimSpace(name); name != "" {
			admins[name] = struct{}{}
		}
	}
	return &Service{
		store:          store,
		cache:          cache,
		log:            log,
		tokenTTL:       ttl,
		admins:         admins,
		cookieName:     "auth_token",
		headerName:     "Authorization",
		csrfCookieName: "csrf_token",
		csrfHeaderName: "X-CSRF-Token",
	}
}

// IssueToken mints a new random token for the user and persists it.
func (s *Service) IssueToken(ctx context.Context, userID int64) (string, error) {
	if userID <= 0 {
		return "", errors.New("invalid user id")
	}
	now := time.Now().UTC()
	expiresAt := now.Add(s.tokenTTL)
	var lastErr error
	for i := 0; i < 5; i++ {
		token, err := generateToken()
		if err != nil {
			return "", err
		}
		if lastErr = s.store.InsertToken(ctx, token, userID, now, expiresAt); lastErr == nil {
			s.cacheToken(ctx, token, userID, s.tokenTTL)
			return token, nil
		}
	}
	return "", fmt.Errorf("could not issue token: %w", lastErr)
}

// NewCSRFToken returns a random token used for CSRF protection.
func (s *Service) NewCSRFToken() (string, error) {
	return generateToken()
}

// ValidateToken verifies the token exists and has not expired, returning the user id.
func (s *Service) ValidateToken(ctx context.Context, authToken string) (int64, error) {
	if authToken == "" {
		return 0, errTokenRequired
	}
	if userID, ok := s.cachedToken(ctx, authToken); ok {
		return userID, nil
	}
	userID, expires, err := s.store.LookupToken(ctx, authToken)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, errTokenInvalid
		}
		return 0, err
	}
	now := time.Now().UTC()
	if now.After(expires) {
		if err := s.store.DeleteToken(ctx, authToken); err != nil {
			s.log.WithError(err).Warn("purge expired token")
		}
		return 0, errTokenExpired
	}
	s.cacheToken(ctx, authToken, userID, expires.Sub(now))
	return userID, nil
}

// RevokeToken deletes a single token.
func (s *Service) RevokeToken(ctx context.Context, authToken string) error {
	if authToken == "" {
		return nil
	}
	if s.cache != nil {
		if err := s.cache.Del(ctx, redisTokenPrefix+authToken); err != nil {
			s.log.WithError(err).Warn("drop cached token")
		}
	}
	return s.store.DeleteToken(ctx, authToken)
}

// PingCache checks the token cache. It is a no-op when no cache is configured.
func (s *Service) PingCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Ping(ctx)
}

func (s *Service) cacheToken(ctx context.Context, token string, userID int64, ttl time.Duration) {
	if s.cache == nil || ttl <= 0 {
		return
	}
	if err := s.cache.Set(ctx, redisTokenPrefix+token, strconv.FormatInt(userID, 10), ttl); err != nil {
		s.log.WithError(err).Warn("cache token")
	}
}

func (s *Service) cachedToken(ctx context.Context, token string) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	val, err := s.cache.Get(ctx, redisTokenPrefix+token)
	if err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) {
			s.log.WithError(err).Warn("read cached token")
		}
		return 0, false
	}
	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil || userID <= 0 {
		return 0, false
	}
	return userID, true
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func unauthorized(op string, err error) error {
	return apperr.E(apperr.CodeUnauthorized, op, "authorization required", err)
}

// AuthCookieName returns the cookie name storing auth tokens.
func (s *Service) AuthCookieName() string {
	return s.cookieName
}

// CSRFCookieName returns the cookie used for CSRF tokens.
func (s *Service) CSRFCookieName() string {
	return s.csrfCookieName
}

// CSRFHeaderName returns the CSRF header name.
func (s *Service) CSRFHeaderName() string {
	return s.csrfHeaderName
}

// TokenTTL reports the configured token lifetime.
func (s *Service) TokenTTL() time.Duration {
	return s.tokenTTL
}
