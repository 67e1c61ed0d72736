// Package app содержит сценарии аутентификации, guard маршрутов и janitor сессий.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"sessiongate/internal/auth/domain/entities"
	"sessiongate/internal/auth/domain/services"
	"sessiongate/internal/auth/metrics"
	"sessiongate/internal/auth/ports/api"
	"sessiongate/internal/auth/ports/repositories"
	svc "sessiongate/internal/auth/ports/services"
	"sessiongate/pkg/logger"
)

const (
	methodRegister    = "Register"
	methodLogin       = "Login"
	methodLogout      = "Logout"
	methodCurrentUser = "CurrentUser"

	msgStartRegistration = "starting user registration"
	msgValidationFailed  = "form validation failed"
	msgEmailExists       = "user with this email already exists"
	msgUserRegistered    = "user registered successfully"
	msgLoginAttempt      = "login attempt"
	msgLoginNonExistent  = "login attempt with non-existent email"
	msgInvalidPassword   = "invalid password provided"
	msgUserLoggedIn      = "user logged in successfully"
	msgUserLoggedOut     = "user logged out successfully"
	msgSessionOrphaned   = "session belongs to a missing user"

	msgErrCheckExistingUser = "failed to check existing user"
	msgErrHashPassword      = "failed to hash password"
	msgErrCreateUser        = "failed to create user"
	msgErrCreateSession     = "failed to create session"
	msgErrFindingUser       = "error finding user"
	msgErrVerifyingPassword = "error verifying password"
	msgErrDummyHash         = "failed to prepare dummy password hash"
	msgErrDestroySession    = "failed to destroy session"

	errCtxCheckingUser      = "checking existing user"
	errCtxHashingPassword   = "hashing password"
	errCtxCreatingUser      = "creating user"
	errCtxCreatingSession   = "creating session"
	errCtxFindingUser       = "finding user"
	errCtxVerifyingPassword = "verifying password"
	errCtxDestroyingSession = "destroying session"
	errCtxValidatingSession = "validating session"

	dummyPassword = "sessiongate-timing-dummy"
)

// AuthUseCaseImpl реализует интерфейс AuthUseCase.
type AuthUseCaseImpl struct {
	userRepo    repositories.UserRepository
	passwordSvc svc.PasswordService
	sessionSvc  svc.SessionService

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthUseCase создает новый экземпляр сервиса аутентификации.
func NewAuthUseCase(
	userRepo repositories.UserRepository,
	passwordSvc svc.PasswordService,
	sessionSvc svc.SessionService,
) api.AuthUseCase {
	return &AuthUseCaseImpl{
		userRepo:    userRepo,
		passwordSvc: passwordSvc,
		sessionSvc:  sessionSvc,
	}
}

// Register создает нового пользователя и выдает ему сессию.
// Ошибки формы возвращаются до обращения к хранилищу.
func (a *AuthUseCaseImpl) Register(ctx context.Context, name, email, password string) (*entities.Session, error) {
	log := logger.Log(ctx).With(zap.String("method", methodRegister))
	log.Debug(ctx, msgStartRegistration)

	if errs := validateRegistration(name, email, password); !errs.Empty() {
		log.Debug(ctx, msgValidationFailed, zap.Strings("fields", errs.Fields()))
		metrics.RecordRegistration(metrics.ResultValidationError)
		return nil, &entities.ValidationError{Fields: errs}
	}

	existingUser, err := a.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, entities.ErrUserNotFound) {
		log.Error(ctx, msgErrCheckExistingUser, zap.Error(err))
		metrics.RecordRegistration(metrics.ResultError)
		return nil, fmt.Errorf("%s: %w: %w", errCtxCheckingUser, services.ErrStoreUnavailable, err)
	}
	if existingUser != nil {
		log.Debug(ctx, msgEmailExists)
		metrics.RecordRegistration(metrics.ResultConflict)
		return nil, services.ErrEmailAlreadyExists
	}

	hashedPassword, err := a.passwordSvc.Hash(ctx, password)
	if err != nil {
		log.Error(ctx, msgErrHashPassword, zap.Error(err))
		metrics.RecordRegistration(metrics.ResultError)
		return nil, fmt.Errorf("%s: %w", errCtxHashingPassword, err)
	}

	createdUser, err := a.userRepo.InsertUnique(ctx, &entities.User{
		Name:         strings.TrimSpace(name),
		Email:        entities.NormalizeEmail(email),
		PasswordHash: hashedPassword,
	})
	if err != nil {
		if errors.Is(err, entities.ErrDuplicateEmail) {
			log.Debug(ctx, msgEmailExists)
			metrics.RecordRegistration(metrics.ResultConflict)
			return nil, services.ErrEmailAlreadyExists
		}
		log.Error(ctx, msgErrCreateUser, zap.Error(err))
		metrics.RecordRegistration(metrics.ResultError)
		return nil, fmt.Errorf("%s: %w: %w", errCtxCreatingUser, services.ErrStoreUnavailable, err)
	}

	session, err := a.sessionSvc.Create(ctx, createdUser.ID)
	if err != nil {
		log.Error(ctx, msgErrCreateSession, zap.Error(err))
		metrics.RecordRegistration(metrics.ResultError)
		return nil, fmt.Errorf("%s: %w", errCtxCreatingSession, err)
	}

	metrics.RecordRegistration(metrics.ResultSuccess)
	log.Info(ctx, msgUserRegistered, zap.String("user_id", createdUser.ID))

	return session, nil
}

// Login проверяет учетные данные и выдает новую сессию.
// Неизвестный email и неверный пароль дают одну и ту же ошибку ErrInvalidCredentials.
func (a *AuthUseCaseImpl) Login(ctx context.Context, email, password string) (*entities.Session, error) {
	log := logger.Log(ctx).With(zap.String("method", methodLogin))
	log.Debug(ctx, msgLoginAttempt)

	if errs := validateLogin(email, password); !errs.Empty() {
		log.Debug(ctx, msgValidationFailed, zap.Strings("fields", errs.Fields()))
		metrics.RecordLogin(metrics.ResultValidationError)
		return nil, &entities.ValidationError{Fields: errs}
	}

	user, err := a.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			log.Debug(ctx, msgLoginNonExistent)
			a.burnPasswordCheck(ctx, password)
			metrics.RecordLogin(metrics.ResultInvalidCredentials)
			return nil, services.ErrInvalidCredentials
		}
		log.Error(ctx, msgErrFindingUser, zap.Error(err))
		metrics.RecordLogin(metrics.ResultError)
		return nil, fmt.Errorf("%s: %w: %w", errCtxFindingUser, services.ErrStoreUnavailable, err)
	}

	ok, err := a.passwordSvc.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		log.Error(ctx, msgErrVerifyingPassword, zap.Error(err))
		metrics.RecordLogin(metrics.ResultError)
		return nil, fmt.Errorf("%s: %w", errCtxVerifyingPassword, err)
	}
	if !ok {
		log.Debug(ctx, msgInvalidPassword, zap.String("user_id", user.ID))
		metrics.RecordLogin(metrics.ResultInvalidCredentials)
		return nil, services.ErrInvalidCredentials
	}

	session, err := a.sessionSvc.Create(ctx, user.ID)
	if err != nil {
		log.Error(ctx, msgErrCreateSession, zap.Error(err))
		metrics.RecordLogin(metrics.ResultError)
		return nil, fmt.Errorf("%s: %w", errCtxCreatingSession, err)
	}

	metrics.RecordLogin(metrics.ResultSuccess)
	log.Info(ctx, msgUserLoggedIn, zap.String("user_id", user.ID))

	return session, nil
}

// Logout отзывает сессию. Отсутствующий или уже отозванный токен не является ошибкой.
func (a *AuthUseCaseImpl) Logout(ctx context.Context, token string) error {
	log := logger.Log(ctx).With(zap.String("method", methodLogout))

	if err := a.sessionSvc.Destroy(ctx, token); err != nil {
		log.Error(ctx, msgErrDestroySession, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxDestroyingSession, err)
	}

	log.Debug(ctx, msgUserLoggedOut)
	return nil
}

// CurrentUser возвращает пользователя, которому принадлежит сессия.
func (a *AuthUseCaseImpl) CurrentUser(ctx context.Context, token string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("method", methodCurrentUser))

	session, err := a.sessionSvc.Validate(ctx, token)
	if err != nil {
		if errors.Is(err, services.ErrSessionInvalid) {
			return nil, services.ErrSessionInvalid
		}
		return nil, fmt.Errorf("%s: %w", errCtxValidatingSession, err)
	}

	user, err := a.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			log.Warn(ctx, msgSessionOrphaned, zap.String("user_id", session.UserID))
			return nil, services.ErrSessionInvalid
		}
		log.Error(ctx, msgErrFindingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w: %w", errCtxFindingUser, services.ErrStoreUnavailable, err)
	}

	return user, nil
}

// burnPasswordCheck выполняет сравнение с фиктивным хэшем, чтобы вход с неизвестным
// email стоил столько же, сколько вход с неверным паролем.
func (a *AuthUseCaseImpl) burnPasswordCheck(ctx context.Context, password string) {
	a.dummyOnce.Do(func() {
		hash, err := a.passwordSvc.Hash(ctx, dummyPassword)
		if err != nil {
			logger.Log(ctx).Error(ctx, msgErrDummyHash, zap.Error(err))
			return
		}
		a.dummyHash = hash
	})

	if a.dummyHash == "" {
		return
	}
	_, _ = a.passwordSvc.Verify(ctx, password, a.dummyHash)
}
