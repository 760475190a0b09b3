package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"socialfeed/app/models"
	"socialfeed/app/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const bearerPrefix = "Bearer "

var (
	// ErrAuth is matched by every credential failure.
	ErrAuth = errors.New("authentication failed")

	ErrMissingCredential = fmt.Errorf("%w: no bearer token provided", ErrAuth)
	ErrInvalidCredential = fmt.Errorf("%w: invalid token", ErrAuth)
	ErrExpiredCredential = fmt.Errorf("%w: token expired", ErrAuth)
	ErrUnknownSubject    = fmt.Errorf("%w: user belonging to this token no longer exists", ErrAuth)
)

// UserLookup is the part of the user store the verifier needs.
type UserLookup interface {
	GetByID(id uuid.UUID) (*models.User, error)
}

// Claims is the token payload. Subject carries the user id.
type Claims struct {
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 bearer tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	users  UserLookup
	now    func() time.Time
}

// NewTokenManager creates a TokenManager signing with secret.
func NewTokenManager(secret string, ttl time.Duration, users UserLookup) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		users:  users,
		now:    time.Now,
	}
}

// Issue signs a token for user, returning it with its expiry.
func (m *TokenManager) Issue(user *models.User) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.ttl)
	claims := Claims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expires, nil
}

// Verify resolves an Authorization header value to the user it was issued
// for. It never trusts anything but the signed subject.
func (m *TokenManager) Verify(header string) (*models.User, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return nil, ErrMissingCredential
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if raw == "" {
		return nil, ErrMissingCredential
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredCredential
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidCredential)
	}

	user, err := m.users.GetByID(id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUnknownSubject
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load token subject: %w", err)
	}
	return user, nil
}
