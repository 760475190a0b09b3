package auth

import (
	"context"
	"testing"
	"time"

	"socialfeed/app/models"
	"socialfeed/app/repositories/mock"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func setupTokenManager(t *testing.T) (*TokenManager, *mock.UserRepository, *models.User) {
	users := mock.NewUserRepository()
	user := &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "hash"}
	require.NoError(t, users.Create(user))
	return NewTokenManager(testSecret, time.Hour, users), users, user
}

func TestTokenRoundTrip(t *testing.T) {
	tm, _, user := setupTokenManager(t)

	token, expires, err := tm.Issue(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	got, err := tm.Verify("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "alice", got.Username)
}

func TestTokenVerifyFailures(t *testing.T) {
	tm, users, user := setupTokenManager(t)
	valid, _, err := tm.Issue(user)
	require.NoError(t, err)

	otherKey, _, err := NewTokenManager("another-secret", time.Hour, users).Issue(user)
	require.NoError(t, err)

	expiredManager := NewTokenManager(testSecret, time.Hour, users)
	expiredManager.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := expiredManager.Issue(user)
	require.NoError(t, err)

	ghost := &models.User{ID: uuid.New(), Username: "ghost"}
	unknown, _, err := tm.Issue(ghost)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: user.ID.String(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "not-a-uuid",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   error
	}{
		{name: "empty header", header: "", want: ErrMissingCredential},
		{name: "no bearer prefix", header: valid, want: ErrMissingCredential},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", want: ErrMissingCredential},
		{name: "bearer without token", header: "Bearer ", want: ErrMissingCredential},
		{name: "garbled token", header: "Bearer not.a.token", want: ErrInvalidCredential},
		{name: "wrong signing key", header: "Bearer " + otherKey, want: ErrInvalidCredential},
		{name: "missing expiry", header: "Bearer " + noExpiry, want: ErrInvalidCredential},
		{name: "subject is not an id", header: "Bearer " + badSubject, want: ErrInvalidCredential},
		{name: "expired", header: "Bearer " + expired, want: ErrExpiredCredential},
		{name: "deleted user", header: "Bearer " + unknown, want: ErrUnknownSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := tm.Verify(tt.header)
			assert.Nil(t, user)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrAuth)
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)

	assert.NoError(t, CheckPassword(hash, "s3cret!"))
	assert.ErrorIs(t, CheckPassword(hash, "wrong"), ErrPasswordMismatch)
}

func TestUserContext(t *testing.T) {
	user := &models.User{ID: uuid.New(), Username: "alice"}

	ctx := WithUser(context.Background(), user)
	got, ok := UserFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, user, got)

	_, ok = UserFromContext(context.Background())
	assert.False(t, ok)
}
