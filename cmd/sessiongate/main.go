// Package main реализует точку входа шлюза сессий.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	authhttp "sessiongate/internal/auth/adapters/http"
	"sessiongate/internal/auth/adapters/memory"
	"sessiongate/internal/auth/adapters/postgres"
	authredis "sessiongate/internal/auth/adapters/redis"
	"sessiongate/internal/auth/adapters/services"
	"sessiongate/internal/auth/app"
	"sessiongate/internal/auth/config"
	"sessiongate/internal/auth/db"
	"sessiongate/internal/auth/ports/api"
	"sessiongate/internal/auth/ports/repositories"
	"sessiongate/pkg/db/redis"
	"sessiongate/pkg/logger"
	"sessiongate/pkg/shutdown"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode    = "AUTH_LOGGER_MODE"
	EnvLoggerLevel   = "AUTH_LOGGER_LEVEL"
	EnvMigrationsDir = "AUTH_MIGRATIONS_DIR"
)

// Константы для сообщений об ошибках.
const (
	ErrInitLogger           = "failed to initialize logger"
	ErrSyncLogger           = "failed to sync logger"
	ErrLoadConfig           = "failed to load configuration"
	ErrInitLoggerWithConfig = "failed to initialize logger with configuration settings"
	ErrInitStores           = "failed to initialize stores"
	ErrInitGuard            = "failed to initialize route guard"
	ErrHTTPServer           = "HTTP server stopped with error"
)

// Константы для игнорируемых ошибок.
const (
	ErrSyncStderr = "sync /dev/stderr: invalid argument"
	ErrSyncStdout = "sync /dev/stdout: invalid argument"
)

// Константы для сообщений сервиса.
const (
	LogServiceStarted      = "session gate started"
	LogServiceShutdownDone = "session gate shutdown complete"
	LogClosingDB           = "closing database connections"
	LogClosingRedis        = "closing Redis connection"
	LogStoppingHTTP        = "stopping HTTP server"
	LogStoppingJanitor     = "stopping session janitor"
	LogInitStores          = "initializing stores"
	LogInitServices        = "initializing services"
	LogInitUseCases        = "initializing use cases"
	LogInitHTTPServer      = "initializing HTTP server"
	LogStartingHTTP        = "starting HTTP server"
)

// stores - выбранные хранилища и хуки их закрытия.
type stores struct {
	users    repositories.UserRepository
	sessions repositories.SessionRepository
	closers  []shutdown.Hook
}

func main() {
	env := logger.Development
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == "production" {
		env = logger.Production
	}

	log, err := logger.NewLogger(env, os.Getenv(EnvLoggerLevel))
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}

	logger.SetGlobalLogger(log)

	ctx := logger.NewRequestIDContext(context.Background(), "")

	var exitCode int

	func() {
		defer func() {
			if err := log.Sync(); err != nil {
				errMsg := err.Error()
				if strings.Contains(errMsg, ErrSyncStderr) || strings.Contains(errMsg, ErrSyncStdout) {
					return
				}
				if _, writeErr := fmt.Fprintf(os.Stderr, "%s: %v\n", ErrSyncLogger, err); writeErr != nil {
					panic(writeErr)
				}
			}
		}()

		cfg, err := config.Load(ctx)
		if err != nil {
			log.Error(ctx, ErrLoadConfig, zap.Error(err))
			exitCode = 1
			return
		}

		finalLogger, err := logger.NewLogger(cfg.Logging.GetEnvironment(), cfg.Logging.Level)
		if err != nil {
			log.Error(ctx, ErrInitLoggerWithConfig, zap.Error(err))
			exitCode = 1
			return
		}
		logger.SetGlobalLogger(finalLogger)
		log = finalLogger

		log.Info(ctx, LogInitStores,
			zap.String("users", cfg.Storage.Users),
			zap.String("sessions", cfg.Storage.Sessions))
		st, err := openStores(ctx, cfg)
		if err != nil {
			log.Error(ctx, ErrInitStores, zap.Error(err))
			exitCode = 1
			return
		}

		log.Info(ctx, LogInitServices)
		serviceFactory := services.NewServiceFactory(st.sessions, cfg.Session.Domain(), cfg.Password.BcryptCost)
		sessionService := serviceFactory.SessionService()

		log.Info(ctx, LogInitUseCases)
		authUseCase := app.NewAuthUseCase(st.users, serviceFactory.PasswordService(), sessionService)

		guard, err := newRouteGuard(cfg)
		if err != nil {
			log.Error(ctx, ErrInitGuard, zap.Error(err))
			runHooks(ctx, cfg, st.closers)
			exitCode = 1
			return
		}

		janitor := app.NewSessionJanitor(sessionService, cfg.Session.CleanupInterval)
		janitor.Start(ctx)

		log.Info(ctx, LogInitHTTPServer, zap.String("address", cfg.HTTP.GetAddress()))
		httpApp := authhttp.NewApp(fiber.Config{
			AppName:      config.ServiceName,
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		})
		authhttp.SetupRouter(httpApp, authhttp.Dependencies{
			Auth:           authUseCase,
			Sessions:       sessionService,
			Guard:          guard,
			Cookie:         cfg.Session.Cookie(),
			RateLimit:      cfg.RateLimit.Middleware(),
			BypassPrefixes: cfg.Routes.Bypass,
			LoginPath:      cfg.Routes.LoginPath,
			DashboardPath:  cfg.Routes.DashboardPath,
		})

		log.Info(ctx, LogStartingHTTP)
		go func() {
			if err := httpApp.Listen(cfg.HTTP.GetAddress(), fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
				log.Error(ctx, ErrHTTPServer, zap.Error(err))
			}
		}()

		log.Info(ctx, LogServiceStarted,
			zap.String("environment", string(cfg.Logging.GetEnvironment())),
			zap.String("log_level", cfg.Logging.Level),
			zap.String("startup_time", time.Now().Format(time.RFC3339)))

		hooks := []shutdown.Hook{
			func(ctx context.Context) error {
				log.Info(ctx, LogStoppingHTTP)
				return httpApp.ShutdownWithContext(ctx)
			},
			func(ctx context.Context) error {
				log.Info(ctx, LogStoppingJanitor)
				return janitor.Stop(ctx)
			},
		}
		shutdown.Wait(ctx, cfg.Shutdown.GetTimeout(), hooks...)
		runHooks(ctx, cfg, st.closers)

		log.Info(ctx, LogServiceShutdownDone)
	}()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// openStores открывает хранилища, выбранные в конфигурации.
// Postgres открывается один раз, даже если в нем лежат и пользователи, и сессии.
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	st := &stores{}

	var repoFactory *postgres.RepositoryFactory
	if cfg.NeedsPostgres() {
		database, err := db.New(ctx, &cfg.Postgres, os.Getenv(EnvMigrationsDir))
		if err != nil {
			return nil, err
		}
		repoFactory = postgres.NewRepositoryFactory(database.Pool())
		st.closers = append(st.closers, func(ctx context.Context) error {
			logger.Log(ctx).Info(ctx, LogClosingDB)
			database.Close(ctx)
			return nil
		})
	}

	switch cfg.Storage.Users {
	case config.StorePostgres:
		st.users = repoFactory.UserRepository()
	default:
		st.users = memory.NewUserRepository()
	}

	switch cfg.Storage.Sessions {
	case config.StorePostgres:
		st.sessions = repoFactory.SessionRepository()
	case config.StoreRedis:
		client, err := redis.NewClient(ctx, cfg.Redis.ClientConfig())
		if err != nil {
			runHooks(ctx, cfg, st.closers)
			return nil, err
		}
		st.sessions = authredis.NewSessionRepository(client.RawClient(), cfg.Redis.KeyPrefix)
		st.closers = append(st.closers, func(ctx context.Context) error {
			logger.Log(ctx).Info(ctx, LogClosingRedis)
			return client.Close()
		})
	default:
		st.sessions = memory.NewSessionRepository()
	}

	return st, nil
}

func newRouteGuard(cfg *config.Config) (api.RouteGuard, error) {
	guardCfg, err := cfg.Routes.Guard()
	if err != nil {
		return nil, err
	}
	return app.NewRouteGuard(guardCfg)
}

func runHooks(ctx context.Context, cfg *config.Config, hooks []shutdown.Hook) {
	if len(hooks) > 0 {
		shutdown.Run(ctx, cfg.Shutdown.GetTimeout(), hooks...)
	}
}
