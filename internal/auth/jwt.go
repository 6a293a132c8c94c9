package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken: подпись, срок или формат токена не прошли проверку.
var ErrInvalidToken = errors.New("invalid session token")

// Claims: содержимое сессионного токена. sid должен существовать в SessionStore.
type Claims struct {
	SessionID string `json:"sid"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// UserID возвращает владельца токена из subject.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// TokenIssuer подписывает и проверяет сессионные токены (HS256).
// Простой сессии отсчитывает Redis (ttl, продлевается при каждом запросе),
// а exp в токене ограничивает только её абсолютный возраст (maxAge).
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	maxAge time.Duration
	now    func() time.Time
}

// NewTokenIssuer создаёт издателя. maxAge меньше ttl поднимается до ttl.
func NewTokenIssuer(secret string, ttl, maxAge time.Duration) *TokenIssuer {
	if maxAge < ttl {
		maxAge = ttl
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, maxAge: maxAge, now: time.Now}
}

// TTL: сколько сессия живёт без запросов.
func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

// MaxAge: абсолютный предел жизни токена.
func (i *TokenIssuer) MaxAge() time.Duration {
	return i.maxAge
}

// Issue выпускает токен для пользователя и новой сессии.
// Возвращаемое время: exp токена, то есть абсолютный предел сессии.
func (i *TokenIssuer) Issue(userID uuid.UUID, email, sessionID string) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(i.maxAge)

	claims := Claims{
		SessionID: sessionID,
		Email:     email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("ошибка подписи токена: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse проверяет подпись и срок действия токена.
func (i *TokenIssuer) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.SessionID == "" {
		return nil, fmt.Errorf("%w: missing session id", ErrInvalidToken)
	}
	if _, err := claims.UserID(); err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return claims, nil
}
