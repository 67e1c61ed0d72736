// Package handlers содержит HTTP обработчики сервиса сессий.
package handlers

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"sessiongate/internal/auth/adapters/http/middleware"
	"sessiongate/internal/auth/domain/entities"
	"sessiongate/internal/auth/ports/api"
	"sessiongate/pkg/logger"
)

// Константы для логирования.
const (
	LogHandlerRegister = "auth handler: register"
	LogHandlerLogin    = "auth handler: login"
	LogHandlerLogout   = "auth handler: logout"
	LogHandlerMe       = "auth handler: current user"

	ErrorInvalidRequest = "invalid request"
	MsgLoggedOut        = "logged out"
)

// AuthHandler содержит HTTP обработчики аутентификации.
type AuthHandler struct {
	auth   api.AuthUseCase
	cookie middleware.CookieConfig
}

// NewAuthHandler создает новый экземпляр обработчика аутентификации.
func NewAuthHandler(auth api.AuthUseCase, cookie middleware.CookieConfig) *AuthHandler {
	return &AuthHandler{auth: auth, cookie: cookie}
}

// Register обрабатывает запрос на регистрацию нового пользователя.
func (h *AuthHandler) Register(c fiber.Ctx) error {
	requestCtx := middleware.RequestContext(c)
	log := logger.Log(requestCtx)
	log.Debug(requestCtx, LogHandlerRegister)

	var req RegisterRequest
	if err := c.Bind().JSON(&req); err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return fiber.NewError(fiber.StatusBadRequest, ErrorInvalidRequest)
	}

	session, err := h.auth.Register(requestCtx, req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}

	h.cookie.SetSessionCookie(c, session)
	return c.Status(fiber.StatusCreated).JSON(sessionResponse(session))
}

// Login обрабатывает запрос на вход пользователя.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	requestCtx := middleware.RequestContext(c)
	log := logger.Log(requestCtx)
	log.Debug(requestCtx, LogHandlerLogin)

	var req LoginRequest
	if err := c.Bind().JSON(&req); err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return fiber.NewError(fiber.StatusBadRequest, ErrorInvalidRequest)
	}

	session, err := h.auth.Login(requestCtx, req.Email, req.Password)
	if err != nil {
		return err
	}

	h.cookie.SetSessionCookie(c, session)
	return c.Status(fiber.StatusOK).JSON(sessionResponse(session))
}

// Logout отзывает текущую сессию и удаляет cookie.
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	requestCtx := middleware.RequestContext(c)
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerLogout)

	if err := h.auth.Logout(requestCtx, h.cookie.SessionToken(c)); err != nil {
		return err
	}

	h.cookie.ClearSessionCookie(c)
	return c.Status(fiber.StatusOK).JSON(MessageResponse{Message: MsgLoggedOut})
}

// Me возвращает профиль владельца сессии.
func (h *AuthHandler) Me(c fiber.Ctx) error {
	requestCtx := middleware.RequestContext(c)
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerMe)

	user, err := h.auth.CurrentUser(requestCtx, h.cookie.SessionToken(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(UserProfileResponse{
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	})
}

func sessionResponse(session *entities.Session) SessionResponse {
	return SessionResponse{UserID: session.UserID, ExpiresAt: session.ExpiresAt}
}
