package services

import (
	"errors"
	"fmt"
	"time"

	"socialfeed/app/auth"
	"socialfeed/app/models"
	"socialfeed/app/repositories"
)

// TokenIssuer signs credentials for a user.
type TokenIssuer interface {
	Issue(user *models.User) (string, time.Time, error)
}

// SignupRequest is the body of a signup call.
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30,username"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest is the body of a login call.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is a freshly issued credential and the account it belongs to.
type Session struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	User      models.Profile `json:"user"`
}

// AuthService handles account creation and login
type AuthService struct {
	userRepo repositories.UserRepository
	tokens   TokenIssuer
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repositories.UserRepository, tokens TokenIssuer) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// Signup creates an account and logs it in
func (s *AuthService) Signup(req SignupRequest) (*Session, error) {
	if err := models.ValidateStruct(&req); err != nil {
		return nil, asValidationError(err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("%w: username or email already in use", ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %w", asValidationError(err))
	}

	return s.session(user)
}

// Login checks an email and password pair and issues a token
func (s *AuthService) Login(req LoginRequest) (*Session, error) {
	if err := models.ValidateStruct(&req); err != nil {
		return nil, asValidationError(err)
	}

	user, err := s.userRepo.GetByEmail(req.Email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	err = auth.CheckPassword(user.PasswordHash, req.Password)
	if errors.Is(err, auth.ErrPasswordMismatch) {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check password: %w", err)
	}

	return s.session(user)
}

func (s *AuthService) session(user *models.User) (*Session, error) {
	token, expires, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expires, User: user.Profile()}, nil
}
