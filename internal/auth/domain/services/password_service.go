package services

import (
	"errors"
)

// Ошибки, связанные с паролями.
var (
	ErrHashingFailed   = errors.New("failed to hash password")
	ErrInvalidPassword = errors.New("invalid password")
)

// Ограничения на длину пароля.
const (
	MinPasswordLength = 8
	// MaxPasswordBytes - предел bcrypt; более длинные пароли были бы молча обрезаны.
	MaxPasswordBytes = 72
)
