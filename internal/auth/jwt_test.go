package auth

import (
	"errors"
	"testing"
	"time"
)

func ptrInt64(v int64) *int64 { return &v }

func TestGenerateParse(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.Generate(42, "chef_troupe", ptrInt64(5))
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if claims.UserID != 42 || claims.Role != "chef_troupe" {
		t.Fatalf("claims не совпали: %+v", claims)
	}
	if claims.TroupeID == nil || *claims.TroupeID != 5 {
		t.Fatal("troupe_id не дошёл через токен")
	}
	if claims.ID == "" {
		t.Fatal("jti обязателен: без него не работает чёрный список")
	}
}

func TestParse_Expired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)
	token, err := m.Generate(1, "admin", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Parse(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("ожидали ErrTokenExpired, получили %v", err)
	}
}

func TestParse_WrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", time.Hour).Generate(1, "admin", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewManager("secret-b", time.Hour).Parse(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("ожидали ErrTokenInvalid, получили %v", err)
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	if !CheckPassword(hash, "s3cret") {
		t.Fatal("верный пароль не прошёл проверку")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatal("неверный пароль прошёл проверку")
	}
}
