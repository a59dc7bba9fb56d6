// Пакет auth — коллаборатор идентичности: проверка пароля, выпуск и
// проверка токенов, чёрный список при выходе. Сервис заявок о нём не
// знает — получает уже собранного актора.
package auth

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired = errors.New("токен просрочен")
	ErrTokenInvalid = errors.New("токен недействителен")
)

type Claims struct {
	UserID   int64  `json:"user_id"`
	Role     string `json:"role"`
	TroupeID *int64 `json:"troupe_id,omitempty"`
	jwtv5.RegisteredClaims
}

type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

func (m *Manager) Generate(userID int64, role string, troupeID *int64) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		Role:     role,
		TroupeID: troupeID,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(m.ttl)),
			Issuer:    "scout-gallery",
		},
	}
	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *Manager) Parse(raw string) (*Claims, error) {
	token, err := jwtv5.ParseWithClaims(raw, &Claims{}, func(t *jwtv5.Token) (any, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
