package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
)

// NotFoundError — запись не нашлась. Отдельный тип, чтобы API-слой
// мог отличить 404 от настоящей ошибки хранилища.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d: не найдено", e.Resource, e.ID)
}

func NotFound(resource string, id int64) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// IsUnavailable — единственный класс ошибок, который клиенту безопасно
// повторить: соединение/таймаут, а не нарушение бизнес-правила.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
