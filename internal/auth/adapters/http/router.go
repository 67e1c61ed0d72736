// Package http содержит HTTP сервер сервиса сессий.
package http

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sessiongate/internal/auth/adapters/http/handlers"
	"sessiongate/internal/auth/adapters/http/middleware"
	"sessiongate/internal/auth/ports/api"
	svc "sessiongate/internal/auth/ports/services"
)

// Dependencies - все, что нужно маршрутизатору.
type Dependencies struct {
	Auth           api.AuthUseCase
	Sessions       svc.SessionService
	Guard          api.RouteGuard
	Cookie         middleware.CookieConfig
	RateLimit      middleware.RateLimitConfig
	BypassPrefixes []string
	LoginPath      string
	DashboardPath  string
}

// NewApp создает fiber.App с обработчиком доменных ошибок.
// Маршрутизация чувствительна к регистру: страница /dashboard не доступна как /DASHBOARD.
func NewApp(cfg fiber.Config) *fiber.App {
	cfg.ErrorHandler = ErrorHandler
	cfg.CaseSensitive = true
	return fiber.New(cfg)
}

// SetupRouter настраивает маршрутизацию для HTTP сервера.
func SetupRouter(app *fiber.App, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.Auth, deps.Cookie)
	guardHandler := handlers.NewGuardHandler(deps.Guard, deps.Sessions, deps.Cookie)

	bypass := deps.BypassPrefixes
	if bypass == nil {
		bypass = middleware.DefaultBypassPrefixes
	}

	// Middleware для всех запросов.
	app.Use(requestid.New())
	app.Use(middleware.NewContextMiddleware())
	app.Use(middleware.NewLoggerMiddleware())
	app.Use(middleware.NewRecoveryMiddleware())

	// Guard страниц: решение принимается до любого обработчика страницы.
	app.Use(middleware.NewGuardMiddleware(middleware.GuardConfig{
		Guard:          deps.Guard,
		Sessions:       deps.Sessions,
		Cookie:         deps.Cookie,
		BypassPrefixes: bypass,
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API версии 1.
	apiV1 := app.Group("/api/v1")

	authRoutes := apiV1.Group("/auth")
	authRoutes.Use(middleware.NewRateLimitMiddleware(deps.RateLimit))
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Post("/logout", authHandler.Logout)

	userRoutes := apiV1.Group("/user")
	userRoutes.Use(middleware.NewRequireSession(deps.Sessions, deps.Cookie))
	userRoutes.Get("/me", authHandler.Me)

	apiV1.Get("/guard/decide", guardHandler.Decide)

	// Страницы.
	app.Get("/", handlers.Page("home"))
	app.Get(pathOr(deps.LoginPath, "/login"), handlers.Page("login"))
	app.Get("/register", handlers.Page("register"))
	app.Get(pathOr(deps.DashboardPath, "/dashboard"), handlers.Page("dashboard"))

	// Обработчик для несуществующих маршрутов.
	app.Use(func(c fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "route not found",
		})
	})
}

func pathOr(path, fallback string) string {
	if path == "" {
		return fallback
	}
	return path
}
