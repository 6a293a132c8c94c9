// Package imagekit реализует подпись одноразовых учётных данных для загрузки
// на медиа-хостинг по схеме ImageKit: signature = hex(HMAC-SHA1(privateKey, token+expire)).
package imagekit

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// MaxExpireWindow: expire не может быть дальше часа от текущего момента.
const MaxExpireWindow = time.Hour

var (
	ErrNotConfigured    = errors.New("media host keys are not configured")
	ErrPublicKey        = errors.New("your account cannot be authenticated")
	ErrExpired          = errors.New("the expire parameter must be a unix timestamp in seconds and less than 1 hour into the future")
	ErrSignatureInvalid = errors.New("invalid signature")
	ErrTokenMissing     = errors.New("the token parameter is missing")
)

// Credentials: параметры загрузки, отдаваемые клиенту через /upload-auth.
type Credentials struct {
	Signature string `json:"signature"`
	Expire    int64  `json:"expire"`
	Token     string `json:"token"`
	PublicKey string `json:"publicKey"`
}

// Signer выпускает и проверяет подписанные параметры загрузки.
type Signer struct {
	publicKey  string
	privateKey string
	ttl        time.Duration
	now        func() time.Time
}

func NewSigner(publicKey, privateKey string, ttl time.Duration) *Signer {
	return &Signer{publicKey: publicKey, privateKey: privateKey, ttl: ttl, now: time.Now}
}

// Issue создаёт новые учётные данные со свежим токеном.
func (s *Signer) Issue() (*Credentials, error) {
	if s.publicKey == "" || s.privateKey == "" {
		return nil, ErrNotConfigured
	}

	token := uuid.NewString()
	expire := s.now().Add(s.ttl).Unix()

	return &Credentials{
		Signature: s.sign(token, expire),
		Expire:    expire,
		Token:     token,
		PublicKey: s.publicKey,
	}, nil
}

// Verify проверяет учётные данные, пришедшие вместе с файлом.
func (s *Signer) Verify(c Credentials) error {
	if s.publicKey == "" || s.privateKey == "" {
		return ErrNotConfigured
	}
	if c.PublicKey != s.publicKey {
		return ErrPublicKey
	}
	if c.Token == "" {
		return ErrTokenMissing
	}

	now := s.now()
	exp := time.Unix(c.Expire, 0)
	if !exp.After(now) || exp.Sub(now) > MaxExpireWindow {
		return ErrExpired
	}

	expected := s.sign(c.Token, c.Expire)
	if !hmac.Equal([]byte(expected), []byte(c.Signature)) {
		return ErrSignatureInvalid
	}
	return nil
}

// TimeLeft: сколько ещё живут учётные данные; используется как TTL одноразового токена.
func (s *Signer) TimeLeft(c Credentials) time.Duration {
	return time.Unix(c.Expire, 0).Sub(s.now())
}

func (s *Signer) sign(token string, expire int64) string {
	mac := hmac.New(sha1.New, []byte(s.privateKey))
	mac.Write([]byte(token + strconv.FormatInt(expire, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

// ParseExpire разбирает поле expire из формы.
func ParseExpire(raw string) (int64, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrExpired, err)
	}
	return v, nil
}
