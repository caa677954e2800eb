package authutils

import (
	"errors"
	"fmt"
	"time"

	"penora-write/shared/logger"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Ошибки проверки токена
var (
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("token is malformed")
)

// Claims - claims access-токена dev-сервера.
// email и username дублируют профиль, чтобы клиент мог показать их без отдельного запроса.
type Claims struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// JWTManager выпускает и проверяет HS256 access-токены.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	logger *zap.Logger
}

// NewJWTManager создает менеджер токенов. Пустой секрет недопустим.
func NewJWTManager(secret string, ttl time.Duration, log *zap.Logger) (*JWTManager, error) {
	if secret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTManager{
		secret: []byte(secret),
		ttl:    ttl,
		logger: logger.OrNop(log).Named("JWTManager"),
	}, nil
}

// Issue выпускает токен для пользователя
func (m *JWTManager) Issue(subject, username, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:    email,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}
	return signed, nil
}

// Verify проверяет подпись, срок действия и наличие subject
func (m *JWTManager) Verify(tokenString string) (*Claims, error) {
	log := m.logger.With(zap.String("tokenSnippet", logger.TokenSnippet(tokenString)))
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			log.Warn("Unexpected signing method", zap.Any("alg", token.Header["alg"]))
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		log.Debug("Failed to parse or verify token", zap.Error(err))
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		default:
			return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
		}
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: subject missing", ErrTokenInvalid)
	}
	return claims, nil
}
