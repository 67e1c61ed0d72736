package handlers

import "time"

// RegisterRequest содержит данные для регистрации пользователя.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest содержит данные для входа пользователя.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse возвращается после регистрации и входа. Токен передается только в cookie.
type SessionResponse struct {
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserProfileResponse содержит данные профиля пользователя.
type UserProfileResponse struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// DecisionResponse описывает решение guard для пути.
type DecisionResponse struct {
	Path   string `json:"path"`
	Class  string `json:"class"`
	Action string `json:"action"`
	Target string `json:"target,omitempty"`
}

// MessageResponse - ответ с текстовым сообщением.
type MessageResponse struct {
	Message string `json:"message"`
}
