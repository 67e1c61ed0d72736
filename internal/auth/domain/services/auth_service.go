package services

import "errors"

// Ошибки домена аутентификации.
var (
	// ErrInvalidCredentials одинакова для неизвестного email и неверного пароля.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailAlreadyExists сообщает о занятом email при регистрации.
	ErrEmailAlreadyExists = errors.New("account already exists")
	// ErrSessionInvalid - штатный результат проверки отсутствующей, неизвестной или истекшей сессии.
	ErrSessionInvalid = errors.New("session is invalid")
	// ErrStoreUnavailable оборачивает отказ хранилища. Никогда не трактуется как отсутствие сессии.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrTokenGenerationFailed сообщает о сбое источника случайности.
	ErrTokenGenerationFailed = errors.New("failed to generate session token")
)
