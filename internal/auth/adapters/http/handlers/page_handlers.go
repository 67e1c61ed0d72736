package handlers

import (
	"github.com/gofiber/fiber/v3"

	"sessiongate/internal/auth/adapters/http/middleware"
)

// PageResponse - заглушка страницы; разметку отдает внешний слой.
type PageResponse struct {
	Page   string `json:"page"`
	UserID string `json:"user_id,omitempty"`
}

// Page возвращает обработчик страницы name. Guard уже отработал до него.
func Page(name string) fiber.Handler {
	return func(c fiber.Ctx) error {
		resp := PageResponse{Page: name}
		if session, ok := middleware.SessionFromLocals(c); ok {
			resp.UserID = session.UserID
		}
		return c.Status(fiber.StatusOK).JSON(resp)
	}
}
