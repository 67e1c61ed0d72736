// Package entities содержит сущности домена сессионной аутентификации.
package entities

import (
	"errors"
	"strings"
	"time"
)

// Ошибки хранилища учетных записей.
var (
	ErrEmptyUserID    = errors.New("user ID cannot be empty")
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email is already registered")
)

// User представляет учетную запись пользователя.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeEmail приводит email к каноническому виду: без пробелов по краям и в нижнем регистре.
// Уникальность email регистронезависима, поэтому сравнение всегда идет по нормализованной форме.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
