package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glatasks/backend/domain"
	"github.com/glatasks/backend/usecase/auth"
)

type fakeUserRepo struct {
	seq  int64
	rows map[int64]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{rows: make(map[int64]domain.User)}
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	row, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &row, nil
}

func (r *fakeUserRepo) GetByHandle(_ context.Context, handle string) (*domain.User, error) {
	for _, row := range r.rows {
		if row.Handle == handle {
			row := row
			return &row, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.seq++
	user.ID = r.seq
	r.rows[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, id int64, at time.Time) error {
	row, ok := r.rows[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	row.LastLogin = &at
	r.rows[id] = row
	return nil
}

type fakeSessionRepo struct {
	rows map[string]domain.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{rows: make(map[string]domain.Session)}
}

func (r *fakeSessionRepo) Get(_ context.Context, id string) (*domain.Session, error) {
	row, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &row, nil
}

func (r *fakeSessionRepo) Save(_ context.Context, session *domain.Session) error {
	r.rows[session.ID] = *session
	return nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, id string) error {
	delete(r.rows, id)
	return nil
}

func (r *fakeSessionRepo) Extend(_ context.Context, id string, ttlSeconds int) error {
	row, ok := r.rows[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	row.ExpiresAt = time.Now().Add(time.Duration(ttlSeconds) * time.Second)
	r.rows[id] = row
	return nil
}

func fixture(t *testing.T) (*auth.UseCase, *fakeUserRepo, *fakeSessionRepo) {
	t.Helper()
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	uc := auth.New(users, sessions, []byte("test-secret"), time.Hour, time.UTC, nil)
	return uc, users, sessions
}

func TestRegister(t *testing.T) {
	uc, _, _ := fixture(t)

	user, err := uc.Register(context.Background(), "alice01", "hunter22")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice01", user.Handle)
	assert.True(t, user.PasswordOK("hunter22"))
	assert.False(t, user.Joined.IsZero())
}

func TestRegister_InvalidHandle(t *testing.T) {
	uc, _, _ := fixture(t)

	for _, handle := range []string{"", "ab", "has space", "dash-ed"} {
		_, err := uc.Register(context.Background(), handle, "hunter22")
		assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid), handle)
	}
}

func TestRegister_DuplicateHandle(t *testing.T) {
	uc, _, _ := fixture(t)

	_, err := uc.Register(context.Background(), "alice01", "hunter22")
	require.NoError(t, err)

	_, err = uc.Register(context.Background(), "alice01", "other")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestRegister_EmptyPassword(t *testing.T) {
	uc, _, _ := fixture(t)

	_, err := uc.Register(context.Background(), "alice01", "")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestValidate(t *testing.T) {
	uc, _, _ := fixture(t)

	_, err := uc.Register(context.Background(), "alice01", "hunter22")
	require.NoError(t, err)

	user, err := uc.Validate(context.Background(), "alice01", "hunter22")
	require.NoError(t, err)
	assert.NotNil(t, user.LastLogin)
}

func TestValidate_WrongCredentials(t *testing.T) {
	uc, _, _ := fixture(t)

	_, err := uc.Register(context.Background(), "alice01", "hunter22")
	require.NoError(t, err)

	_, err = uc.Validate(context.Background(), "alice01", "wrong")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))

	// Unknown handles get the same answer as bad passwords.
	_, err = uc.Validate(context.Background(), "nobody1", "hunter22")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))
}

func TestLogin_ResolveToken_RoundTrip(t *testing.T) {
	uc, _, _ := fixture(t)

	registered, err := uc.Register(context.Background(), "alice01", "hunter22")
	require.NoError(t, err)

	user, token, err := uc.Login(context.Background(), "alice01", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, token)

	resolved, err := uc.ResolveToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, resolved.ID)
}

func TestResolveToken_SlidesExpiry(t *testing.T) {
	uc, _, sessions := fixture(t)

	_, err := uc.Register(context.Background(), "alice01", "hunter22")
	require.NoError(t, err)

	_, token, err := uc.Login(context.Background(), "alice01", "hunter22")
	require.NoError(t, err)

	// Shrink the remaining window, then resolve: activity restores it.
	for id, session := range sessions.rows {
		session.ExpiresAt = time.Now().Add(time.Minute)
		sessions.rows[id] = session
	}

	_, err = uc.ResolveToken(context.Background(), token)
	require.NoError(t, err)

	for _, session := range sessions.rows {
		assert.True(t, session.ExpiresAt.After(time.Now().Add(30*time.Minute)))
	}
}

func TestResolveToken_Garbage(t *testing.T) {
	uc, _, _ := fixture(t)

	_, err := uc.ResolveToken(context.Background(), "not a jwt")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))
}

func TestResolveToken_ExpiredSession(t *testing.T) {
	uc, _, sessions := fixture(t)

	_, err := uc.Register(context.Background(), "alice01", "hunter22")
	require.NoError(t, err)

	_, token, err := uc.Login(context.Background(), "alice01", "hunter22")
	require.NoError(t, err)

	for id, session := range sessions.rows {
		session.ExpiresAt = time.Now().Add(-time.Minute)
		sessions.rows[id] = session
	}

	_, err = uc.ResolveToken(context.Background(), token)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))
	assert.Empty(t, sessions.rows)
}

func TestResolveToken_ForeignSecret(t *testing.T) {
	uc, users, sessions := fixture(t)

	_, err := uc.Register(context.Background(), "alice01", "hunter22")
	require.NoError(t, err)

	_, token, err := uc.Login(context.Background(), "alice01", "hunter22")
	require.NoError(t, err)

	other := auth.New(users, sessions, []byte("different-secret"), time.Hour, time.UTC, nil)
	_, err = other.ResolveToken(context.Background(), token)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))
}

func TestLogout(t *testing.T) {
	uc, _, sessions := fixture(t)

	_, err := uc.Register(context.Background(), "alice01", "hunter22")
	require.NoError(t, err)

	_, token, err := uc.Login(context.Background(), "alice01", "hunter22")
	require.NoError(t, err)
	require.Len(t, sessions.rows, 1)

	require.NoError(t, uc.Logout(context.Background(), token))
	assert.Empty(t, sessions.rows)

	// Revoking an unknown token is not an error.
	assert.NoError(t, uc.Logout(context.Background(), "junk"))
}
