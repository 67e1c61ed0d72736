package app_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"sessiongate/internal/auth/adapters/memory"
	adaptersvc "sessiongate/internal/auth/adapters/services"
	"sessiongate/internal/auth/app"
	"sessiongate/internal/auth/domain/entities"
	"sessiongate/internal/auth/domain/services"
	"sessiongate/internal/auth/ports/api"
	"sessiongate/internal/auth/ports/repositories"
	svc "sessiongate/internal/auth/ports/services"
)

var ErrDatabaseConnection = errors.New("database connection error")

type testEnv struct {
	users    repositories.UserRepository
	sessions svc.SessionService
	auth     api.AuthUseCase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := memory.NewUserRepository()
	sessions := adaptersvc.NewSessionService(memory.NewSessionRepository(), services.DefaultSessionConfig())
	return &testEnv{
		users:    users,
		sessions: sessions,
		auth:     app.NewAuthUseCase(users, adaptersvc.NewBcrypt(bcrypt.MinCost), sessions),
	}
}

func requireFieldErrors(t *testing.T, err error) entities.FormErrors {
	t.Helper()
	var validationErr *entities.ValidationError
	require.ErrorAs(t, err, &validationErr)
	return validationErr.Fields
}

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	session, err := env.auth.Register(ctx, "Ann", "ann@example.com", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)

	validated, err := env.sessions.Validate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, validated.UserID)

	loginSession, err := env.auth.Login(ctx, "ANN@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, session.UserID, loginSession.UserID)
	assert.NotEqual(t, session.Token, loginSession.Token, "each login issues an independent session")

	_, err = env.sessions.Validate(ctx, session.Token)
	require.NoError(t, err, "earlier sessions stay valid")
}

func TestRegisterStoresNormalizedEmailAndHash(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.auth.Register(ctx, "  Ann  ", " Ann@Example.COM ", "password123")
	require.NoError(t, err)

	user, err := env.users.FindByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.Name)
	assert.Equal(t, "ann@example.com", user.Email)
	assert.NotEqual(t, "password123", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name     string
		userName string
		email    string
		password string
		expected entities.FormErrors
	}{
		{
			name:     "all fields invalid",
			userName: "   ",
			email:    "not-an-email",
			password: "short",
			expected: entities.FormErrors{
				app.FieldName:     {app.MsgNameRequired},
				app.FieldEmail:    {app.MsgEmailInvalid},
				app.FieldPassword: {app.MsgPasswordTooShort},
			},
		},
		{
			name:     "password over 72 bytes",
			userName: "Ann",
			email:    "ann@example.com",
			password: strings.Repeat("p", 73),
			expected: entities.FormErrors{
				app.FieldPassword: {app.MsgPasswordTooLong},
			},
		},
		{
			name:     "email without tld",
			userName: "Ann",
			email:    "ann@example",
			password: "password123",
			expected: entities.FormErrors{
				app.FieldEmail: {app.MsgEmailInvalid},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(mockUserRepository)
			passwords := new(mockPasswordService)
			sessions := new(mockSessionService)
			auth := app.NewAuthUseCase(users, passwords, sessions)

			session, err := auth.Register(context.Background(), tt.userName, tt.email, tt.password)

			assert.Nil(t, session)
			assert.Equal(t, tt.expected, requireFieldErrors(t, err))
			users.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
			users.AssertNotCalled(t, "InsertUnique", mock.Anything, mock.Anything)
			passwords.AssertNotCalled(t, "Hash", mock.Anything, mock.Anything)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.auth.Register(ctx, "Ann", "ann@example.com", "password123")
	require.NoError(t, err)

	_, err = env.auth.Register(ctx, "Other", "ANN@example.com", "password456")
	require.ErrorIs(t, err, services.ErrEmailAlreadyExists)
	assert.Equal(t, "account already exists", err.Error())
}

func TestRegisterConcurrentSameEmail(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserRepository()
	sessionRepo := memory.NewSessionRepository()
	sessions := adaptersvc.NewSessionService(sessionRepo, services.DefaultSessionConfig())
	auth := app.NewAuthUseCase(users, adaptersvc.NewBcrypt(bcrypt.MinCost), sessions)

	const attempts = 2
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = auth.Register(ctx, "Ann", "ann@example.com", "password123")
		}()
	}
	wg.Wait()

	var created, duplicates int
	for _, err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, services.ErrEmailAlreadyExists):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, duplicates)

	// Все сессии истекут к этому моменту, поэтому счетчик удаленных равен числу выданных.
	issued, err := sessionRepo.DeleteExpired(ctx, time.Now().Add(365*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), issued)
}

func TestRegisterInsertConflictMapsToDuplicate(t *testing.T) {
	ctx := context.Background()
	users := new(mockUserRepository)
	passwords := new(mockPasswordService)
	sessions := new(mockSessionService)

	users.On("FindByEmail", ctx, "ann@example.com").Return(nil, entities.ErrUserNotFound)
	passwords.On("Hash", ctx, "password123").Return("hash", nil)
	users.On("InsertUnique", ctx, mock.AnythingOfType("*entities.User")).Return(nil, entities.ErrDuplicateEmail)

	auth := app.NewAuthUseCase(users, passwords, sessions)
	_, err := auth.Register(ctx, "Ann", "ann@example.com", "password123")

	require.ErrorIs(t, err, services.ErrEmailAlreadyExists)
	sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	users.AssertExpectations(t)
}

func TestRegisterStoreFailure(t *testing.T) {
	ctx := context.Background()
	users := new(mockUserRepository)
	users.On("FindByEmail", ctx, "ann@example.com").Return(nil, ErrDatabaseConnection)

	auth := app.NewAuthUseCase(users, new(mockPasswordService), new(mockSessionService))
	_, err := auth.Register(ctx, "Ann", "ann@example.com", "password123")

	require.ErrorIs(t, err, services.ErrStoreUnavailable)
	require.ErrorIs(t, err, ErrDatabaseConnection)
}

func TestLoginInvalidCredentialsAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.auth.Register(ctx, "Ann", "ann@example.com", "password123")
	require.NoError(t, err)

	_, wrongPassword := env.auth.Login(ctx, "ann@example.com", "wrong-password")
	_, unknownEmail := env.auth.Login(ctx, "nobody@example.com", "password123")

	require.ErrorIs(t, wrongPassword, services.ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, services.ErrInvalidCredentials)
	assert.Equal(t, "invalid credentials", wrongPassword.Error())
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestLoginUnknownEmailStillVerifiesPassword(t *testing.T) {
	ctx := context.Background()
	users := new(mockUserRepository)
	passwords := new(mockPasswordService)
	sessions := new(mockSessionService)

	users.On("FindByEmail", ctx, "nobody@example.com").Return(nil, entities.ErrUserNotFound)
	passwords.On("Hash", ctx, mock.AnythingOfType("string")).Return("dummy-hash", nil).Once()
	passwords.On("Verify", ctx, "password123", "dummy-hash").Return(false, nil).Twice()

	auth := app.NewAuthUseCase(users, passwords, sessions)

	for range 2 {
		_, err := auth.Login(ctx, "nobody@example.com", "password123")
		require.ErrorIs(t, err, services.ErrInvalidCredentials)
	}

	passwords.AssertExpectations(t)
	sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLoginValidation(t *testing.T) {
	users := new(mockUserRepository)
	auth := app.NewAuthUseCase(users, new(mockPasswordService), new(mockSessionService))

	_, err := auth.Login(context.Background(), "bad", "")

	assert.Equal(t, entities.FormErrors{
		app.FieldEmail:    {app.MsgEmailInvalid},
		app.FieldPassword: {app.MsgPasswordRequired},
	}, requireFieldErrors(t, err))
	users.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}

func TestLoginStoreFailure(t *testing.T) {
	ctx := context.Background()
	users := new(mockUserRepository)
	users.On("FindByEmail", ctx, "ann@example.com").Return(nil, ErrDatabaseConnection)

	auth := app.NewAuthUseCase(users, new(mockPasswordService), new(mockSessionService))
	_, err := auth.Login(ctx, "ann@example.com", "password123")

	require.ErrorIs(t, err, services.ErrStoreUnavailable)
	assert.NotErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	session, err := env.auth.Register(ctx, "Ann", "ann@example.com", "password123")
	require.NoError(t, err)

	require.NoError(t, env.auth.Logout(ctx, session.Token))
	require.NoError(t, env.auth.Logout(ctx, session.Token), "logout is idempotent")
	require.NoError(t, env.auth.Logout(ctx, ""), "logout without a session succeeds")

	_, err = env.sessions.Validate(ctx, session.Token)
	require.ErrorIs(t, err, services.ErrSessionInvalid)
}

func TestLogoutStoreFailure(t *testing.T) {
	ctx := context.Background()
	sessions := new(mockSessionService)
	sessions.On("Destroy", ctx, "token").Return(services.ErrStoreUnavailable)

	auth := app.NewAuthUseCase(new(mockUserRepository), new(mockPasswordService), sessions)

	require.ErrorIs(t, auth.Logout(ctx, "token"), services.ErrStoreUnavailable)
}

func TestCurrentUser(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	session, err := env.auth.Register(ctx, "Ann", "ann@example.com", "password123")
	require.NoError(t, err)

	user, err := env.auth.CurrentUser(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.Name)

	_, err = env.auth.CurrentUser(ctx, "unknown")
	require.ErrorIs(t, err, services.ErrSessionInvalid)
}

func TestCurrentUserOrphanedSession(t *testing.T) {
	ctx := context.Background()
	users := new(mockUserRepository)
	sessions := new(mockSessionService)

	sessions.On("Validate", ctx, "token").Return(&entities.Session{UserID: "gone", ExpiresAt: time.Now().Add(time.Hour)}, nil)
	users.On("FindByID", ctx, "gone").Return(nil, entities.ErrUserNotFound)

	auth := app.NewAuthUseCase(users, new(mockPasswordService), sessions)
	_, err := auth.CurrentUser(ctx, "token")

	require.ErrorIs(t, err, services.ErrSessionInvalid)
}
