package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sessiongate/internal/auth/domain/entities"
	"sessiongate/internal/auth/domain/services"
	"sessiongate/internal/auth/metrics"
	"sessiongate/internal/auth/ports/repositories"
	svc "sessiongate/internal/auth/ports/services"
	"sessiongate/pkg/logger"
)

const (
	methodCreate       = "SessionService.Create"
	methodValidate     = "SessionService.Validate"
	methodDestroy      = "SessionService.Destroy"
	methodRenew        = "SessionService.Renew"
	methodPurgeExpired = "SessionService.PurgeExpired"

	errMsgSaveSession    = "failed to save session"
	errMsgFindSession    = "failed to find session"
	errMsgDeleteSession  = "failed to delete session"
	errMsgRotateSession  = "failed to rotate session"
	errMsgPurgeSessions  = "failed to purge expired sessions"
	errMsgGenerateToken  = "failed to generate session token"
	logMsgSessionCreated = "session created"
	logMsgSessionExpired = "session expired"
	logMsgSessionRotated = "session rotated"
	logMsgRotationLost   = "session was rotated concurrently"
	logMsgRotationGone   = "session was revoked during rotation"
	logMsgSessionRevoked = "session revoked"
	logMsgSessionsPurged = "expired sessions purged"
	logMsgStoreFailure   = "session store failure"
)

// SessionServiceImpl реализует SessionService поверх SessionRepository.
type SessionServiceImpl struct {
	repo repositories.SessionRepository
	cfg  services.SessionConfig
	now  func() time.Time
}

// Option настраивает SessionServiceImpl.
type Option func(*SessionServiceImpl)

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(s *SessionServiceImpl) {
		s.now = now
	}
}

// NewSessionService создает сервис сессий.
// Неположительный TTL заменяется значением по умолчанию, отрицательные окно продления
// и срок жизни старого токена - нулем.
func NewSessionService(repo repositories.SessionRepository, cfg services.SessionConfig, opts ...Option) svc.SessionService {
	if cfg.TTL <= 0 {
		cfg.TTL = services.DefaultSessionTTL
	}
	if cfg.RenewWindow < 0 {
		cfg.RenewWindow = 0
	}
	if cfg.RotationGrace < 0 {
		cfg.RotationGrace = 0
	}

	s := &SessionServiceImpl{
		repo: repo,
		cfg:  cfg,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create выдает новую сессию пользователю.
func (s *SessionServiceImpl) Create(ctx context.Context, userID string) (*entities.Session, error) {
	log := logger.Log(ctx).With(zap.String("method", methodCreate))

	if userID == "" {
		return nil, entities.ErrEmptyUserID
	}

	session, err := s.newSession(userID)
	if err != nil {
		log.Error(ctx, errMsgGenerateToken, zap.Error(err))
		return nil, err
	}

	if err := s.repo.Save(ctx, session); err != nil {
		log.Error(ctx, errMsgSaveSession, zap.Error(err))
		return nil, fmt.Errorf("%s: %w: %w", errMsgSaveSession, services.ErrStoreUnavailable, err)
	}

	metrics.RecordSessionIssued()
	log.Debug(ctx, logMsgSessionCreated, zap.String("user_id", userID))

	return session, nil
}

// Validate проверяет токен. Неизвестный и истекший токены неразличимы для вызывающего;
// истекшие записи удаляет janitor, а не проверка.
// Старый токен, замененный ротацией, действителен до конца своего короткого срока
// и только пока жива цепочка до действующей сессии.
func (s *SessionServiceImpl) Validate(ctx context.Context, token string) (*entities.Session, error) {
	log := logger.Log(ctx).With(zap.String("method", methodValidate))

	session, err := s.resolve(ctx, token)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrStoreUnavailable):
			log.Error(ctx, logMsgStoreFailure, zap.Error(err))
			metrics.RecordValidation(metrics.ResultError)
		case errors.Is(err, errSessionExpired):
			log.Debug(ctx, logMsgSessionExpired)
			metrics.RecordValidation(metrics.ResultInvalid)
			err = services.ErrSessionInvalid
		default:
			metrics.RecordValidation(metrics.ResultInvalid)
		}
		return nil, err
	}

	metrics.RecordValidation(metrics.ResultValid)
	return session, nil
}

// Destroy отзывает сессию вместе с преемниками, выданными при ротации.
func (s *SessionServiceImpl) Destroy(ctx context.Context, token string) error {
	log := logger.Log(ctx).With(zap.String("method", methodDestroy))

	if token == "" {
		return nil
	}

	hash := HashSessionToken(token)
	for hops := 0; hash != "" && hops <= services.MaxRotationHops; hops++ {
		next := ""
		session, err := s.repo.FindByTokenHash(ctx, hash)
		switch {
		case err == nil:
			next = session.RotatedTo
		case !errors.Is(err, entities.ErrSessionNotFound):
			log.Error(ctx, errMsgFindSession, zap.Error(err))
			return fmt.Errorf("%s: %w: %w", errMsgFindSession, services.ErrStoreUnavailable, err)
		}

		if err := s.repo.DeleteByTokenHash(ctx, hash); err != nil {
			log.Error(ctx, errMsgDeleteSession, zap.Error(err))
			return fmt.Errorf("%s: %w: %w", errMsgDeleteSession, services.ErrStoreUnavailable, err)
		}
		hash = next
	}

	metrics.RecordSessionRevoked()
	log.Debug(ctx, logMsgSessionRevoked)

	return nil
}

// Renew проверяет сессию и при попадании в окно продления выдает новый токен взамен старого.
// Старый токен, уже замененный другим запросом, принимается без повторной ротации:
// cookie клиента обновит ответ победившего запроса.
func (s *SessionServiceImpl) Renew(ctx context.Context, token string) (*entities.Session, bool, error) {
	log := logger.Log(ctx).With(zap.String("method", methodRenew))

	current, err := s.Validate(ctx, token)
	if err != nil {
		return nil, false, err
	}

	now := s.now()
	if current.IsRotated() || s.cfg.RenewWindow == 0 || current.ExpiresAt.Sub(now) > s.cfg.RenewWindow {
		return current, false, nil
	}

	next, err := s.newSession(current.UserID)
	if err != nil {
		log.Error(ctx, errMsgGenerateToken, zap.Error(err))
		return nil, false, err
	}

	if err := s.repo.Rotate(ctx, current.TokenHash, next, s.retireAt(now, current)); err != nil {
		switch {
		case errors.Is(err, entities.ErrSessionRotated):
			log.Debug(ctx, logMsgRotationLost, zap.String("user_id", current.UserID))
			return current, false, nil
		case errors.Is(err, entities.ErrSessionNotFound):
			log.Debug(ctx, logMsgRotationGone, zap.String("user_id", current.UserID))
			return nil, false, services.ErrSessionInvalid
		default:
			log.Error(ctx, errMsgRotateSession, zap.Error(err))
			return nil, false, fmt.Errorf("%s: %w: %w", errMsgRotateSession, services.ErrStoreUnavailable, err)
		}
	}

	metrics.RecordSessionRotated()
	log.Debug(ctx, logMsgSessionRotated, zap.String("user_id", next.UserID))

	return next, true, nil
}

// PurgeExpired удаляет истекшие сессии.
func (s *SessionServiceImpl) PurgeExpired(ctx context.Context) (int64, error) {
	log := logger.Log(ctx).With(zap.String("method", methodPurgeExpired))

	n, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		log.Error(ctx, errMsgPurgeSessions, zap.Error(err))
		return 0, fmt.Errorf("%s: %w: %w", errMsgPurgeSessions, services.ErrStoreUnavailable, err)
	}

	metrics.RecordSessionsPurged(n)
	if n > 0 {
		log.Info(ctx, logMsgSessionsPurged, zap.Int64("count", n))
	}

	return n, nil
}

// errSessionExpired различает истечение внутри сервиса; наружу уходит ErrSessionInvalid.
var errSessionExpired = fmt.Errorf("%w: expired", services.ErrSessionInvalid)

// resolve находит запись токена и проходит по цепочке ротаций до действующей сессии.
// Возвращается запись самого токена.
func (s *SessionServiceImpl) resolve(ctx context.Context, token string) (*entities.Session, error) {
	if token == "" {
		return nil, services.ErrSessionInvalid
	}

	session, err := s.find(ctx, HashSessionToken(token))
	if err != nil {
		return nil, err
	}
	session.Token = token

	now := s.now()
	current := session
	for hops := 0; ; hops++ {
		if current.IsExpiredAt(now) {
			return nil, errSessionExpired
		}
		if !current.IsRotated() {
			return session, nil
		}
		if hops == services.MaxRotationHops {
			return nil, services.ErrSessionInvalid
		}
		if current, err = s.find(ctx, current.RotatedTo); err != nil {
			return nil, err
		}
	}
}

func (s *SessionServiceImpl) find(ctx context.Context, tokenHash string) (*entities.Session, error) {
	session, err := s.repo.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, entities.ErrSessionNotFound) {
			return nil, services.ErrSessionInvalid
		}
		return nil, fmt.Errorf("%s: %w: %w", errMsgFindSession, services.ErrStoreUnavailable, err)
	}
	return session, nil
}

// retireAt - момент, до которого старый токен принимается после ротации.
// Нулевое значение означает немедленное удаление.
func (s *SessionServiceImpl) retireAt(now time.Time, current *entities.Session) time.Time {
	if s.cfg.RotationGrace == 0 {
		return time.Time{}
	}
	retire := now.Add(s.cfg.RotationGrace)
	if current.ExpiresAt.Before(retire) {
		return current.ExpiresAt
	}
	return retire
}

func (s *SessionServiceImpl) newSession(userID string) (*entities.Session, error) {
	token, err := generateSessionToken()
	if err != nil {
		return nil, err
	}

	issuedAt := s.now().UTC()
	return &entities.Session{
		Token:     token,
		TokenHash: HashSessionToken(token),
		UserID:    userID,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(s.cfg.TTL),
	}, nil
}
