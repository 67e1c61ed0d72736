package http

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"sessiongate/internal/auth/adapters/http/middleware"
	"sessiongate/internal/auth/domain/entities"
	"sessiongate/internal/auth/domain/services"
	"sessiongate/pkg/logger"
)

// Сообщения ответов об ошибках.
const (
	MsgUnauthorized       = "unauthorized"
	MsgServiceUnavailable = "service unavailable"
	MsgInternalError      = "internal server error"
)

// ValidationErrorResponse - ответ 422 с ошибками по полям.
type ValidationErrorResponse struct {
	Errors entities.FormErrors `json:"errors"`
}

// ErrorHandler переводит доменные ошибки в HTTP-ответы.
// Причины 5xx только логируются и в ответ не попадают.
func ErrorHandler(c fiber.Ctx, err error) error {
	requestCtx := middleware.RequestContext(c)
	log := logger.Log(requestCtx).With(zap.String("path", c.Path()))

	var validationErr *entities.ValidationError
	var fiberErr *fiber.Error

	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ValidationErrorResponse{Errors: validationErr.Fields})
	case errors.Is(err, services.ErrInvalidCredentials):
		return message(c, fiber.StatusUnauthorized, services.ErrInvalidCredentials.Error())
	case errors.Is(err, services.ErrEmailAlreadyExists):
		return message(c, fiber.StatusConflict, services.ErrEmailAlreadyExists.Error())
	case errors.Is(err, services.ErrSessionInvalid):
		return message(c, fiber.StatusUnauthorized, MsgUnauthorized)
	case errors.Is(err, services.ErrStoreUnavailable):
		log.Error(requestCtx, "store unavailable", zap.Error(err))
		return message(c, fiber.StatusServiceUnavailable, MsgServiceUnavailable)
	case errors.As(err, &fiberErr):
		return message(c, fiberErr.Code, fiberErr.Message)
	default:
		log.Error(requestCtx, "unhandled error", zap.Error(err))
		return message(c, fiber.StatusInternalServerError, MsgInternalError)
	}
}

func message(c fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"message": msg})
}
