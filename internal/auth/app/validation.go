package app

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"sessiongate/internal/auth/domain/entities"
	"sessiongate/internal/auth/domain/services"
)

// Имена полей форм.
const (
	FieldName     = "name"
	FieldEmail    = "email"
	FieldPassword = "password"
)

// Сообщения об ошибках полей.
const (
	MsgNameRequired     = "Name is required."
	MsgEmailInvalid     = "Please enter a valid email."
	MsgPasswordTooShort = "Password must be at least 8 characters long."
	MsgPasswordTooLong  = "Password must be at most 72 bytes long."
	MsgPasswordRequired = "Password is required."
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func validEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

func validateRegistration(name, email, password string) entities.FormErrors {
	errs := entities.FormErrors{}

	if strings.TrimSpace(name) == "" {
		errs.Add(FieldName, MsgNameRequired)
	}
	if !validEmail(email) {
		errs.Add(FieldEmail, MsgEmailInvalid)
	}
	if utf8.RuneCountInString(password) < services.MinPasswordLength {
		errs.Add(FieldPassword, MsgPasswordTooShort)
	}
	if len(password) > services.MaxPasswordBytes {
		errs.Add(FieldPassword, MsgPasswordTooLong)
	}

	return errs
}

func validateLogin(email, password string) entities.FormErrors {
	errs := entities.FormErrors{}

	if !validEmail(email) {
		errs.Add(FieldEmail, MsgEmailInvalid)
	}
	if password == "" {
		errs.Add(FieldPassword, MsgPasswordRequired)
	}

	return errs
}
