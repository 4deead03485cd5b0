package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/glatasks/backend/domain"
	"github.com/glatasks/backend/pkg/timeutil"
	"github.com/glatasks/backend/repository"
)

// UseCase covers registration, credential validation and the session tokens
// carried by the login cookie. The cookie value is a JWT wrapping the Redis
// session id; the session itself lives in Redis with a TTL.
type UseCase struct {
	users      repository.UserRepository
	sessions   repository.SessionRepository
	jwtSecret  []byte
	sessionTTL time.Duration
	loc        *time.Location
	logger     *zap.Logger
}

func New(users repository.UserRepository, sessions repository.SessionRepository, jwtSecret []byte, sessionTTL time.Duration, loc *time.Location, logger *zap.Logger) *UseCase {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:      users,
		sessions:   sessions,
		jwtSecret:  jwtSecret,
		sessionTTL: sessionTTL,
		loc:        loc,
		logger:     logger,
	}
}

// Register creates an account. The handle must be 4-32 alphanumeric
// characters and unused; the password must be non-empty.
func (uc *UseCase) Register(ctx context.Context, handle, password string) (*domain.User, error) {
	if err := domain.ValidateHandle(handle); err != nil {
		return nil, err
	}
	if _, err := uc.users.GetByHandle(ctx, handle); err == nil {
		return nil, domain.NewError(domain.ErrCodeInvalid, "user id is already taken")
	} else if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		return nil, err
	}

	user := &domain.User{
		Handle: handle,
		Joined: timeutil.Now(uc.loc),
	}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.logger.Info("user registered", zap.String("handle", handle))
	return user, nil
}

// Validate checks credentials and records the login time. It is shared by the
// cookie login flow and the internal /auth/validate endpoint.
func (uc *UseCase) Validate(ctx context.Context, handle, password string) (*domain.User, error) {
	user, err := uc.users.GetByHandle(ctx, handle)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.NewError(domain.ErrCodeUnauthorized, "wrong user id or password")
		}
		return nil, err
	}
	if !user.PasswordOK(password) {
		return nil, domain.NewError(domain.ErrCodeUnauthorized, "wrong user id or password")
	}

	now := timeutil.Now(uc.loc)
	if err := uc.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now
	return user, nil
}

// Login validates credentials, opens a session and returns the signed cookie
// token for it.
func (uc *UseCase) Login(ctx context.Context, handle, password string) (*domain.User, string, error) {
	user, err := uc.Validate(ctx, handle, password)
	if err != nil {
		return nil, "", err
	}

	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(uc.sessionTTL),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, "", err
	}

	token, err := uc.signToken(session)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Logout revokes the session behind a cookie token. Unknown or expired tokens
// are not an error.
func (uc *UseCase) Logout(ctx context.Context, token string) error {
	sessionID, err := uc.parseToken(token)
	if err != nil {
		return nil
	}
	return uc.sessions.Delete(ctx, sessionID)
}

// ResolveToken maps a cookie token back to its user, failing UNAUTHORIZED on
// any broken link in the chain.
func (uc *UseCase) ResolveToken(ctx context.Context, token string) (*domain.User, error) {
	sessionID, err := uc.parseToken(token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if session.IsExpired(time.Now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrUnauthorized
	}
	user, err := uc.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	// Sliding expiry: activity keeps the session alive.
	if err := uc.sessions.Extend(ctx, sessionID, int(uc.sessionTTL.Seconds())); err != nil {
		uc.logger.Debug("session extend failed", zap.Error(err))
	}
	return user, nil
}

func (uc *UseCase) signToken(session *domain.Session) (string, error) {
	// Expiry is owned by the Redis session, not the token: sessions slide on
	// activity, so a fixed exp claim would cap them at the original window.
	claims := jwt.MapClaims{
		"sid": session.ID,
		"iat": session.CreatedAt.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(uc.jwtSecret)
	if err != nil {
		return "", domain.WrapError(domain.ErrCodeInternal, "sign session token", err)
	}
	return token, nil
}

func (uc *UseCase) parseToken(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrUnauthorized
		}
		return uc.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return "", domain.ErrUnauthorized
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", domain.ErrUnauthorized
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", domain.ErrUnauthorized
	}
	return sid, nil
}
