package entities

import (
	"errors"
	"time"
)

// Ошибки хранилища сессий.
var (
	// ErrSessionNotFound возвращается хранилищем, если записи с таким хэшем токена нет.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionRotated возвращается Rotate, если сессия уже заменена другим запросом.
	ErrSessionRotated = errors.New("session already rotated")
)

// Session представляет выданную пользователю сессию.
//
// Token заполнен только в значении, возвращенном при создании или ротации;
// в хранилище лежит лишь TokenHash.
type Session struct {
	Token     string
	TokenHash string
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
	// RotatedTo - хэш токена-преемника. Непустой у старой записи, оставленной
	// после ротации на короткий срок для запросов, еще несущих старую cookie.
	RotatedTo string
}

// IsExpiredAt сообщает, истекла ли сессия к моменту t.
// Сессия действительна только пока ExpiresAt строго позже t.
func (s *Session) IsExpiredAt(t time.Time) bool {
	return !s.ExpiresAt.After(t)
}

// IsRotated сообщает, заменена ли сессия преемником.
func (s *Session) IsRotated() bool {
	return s.RotatedTo != ""
}
