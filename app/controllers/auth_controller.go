package controllers

import (
	"encoding/json"
	"net/http"

	"socialfeed/app/auth"
	"socialfeed/app/response"
	"socialfeed/app/services"

	"github.com/sirupsen/logrus"
)

// AuthController handles signup, login and the current-user lookup
type AuthController struct {
	authService *services.AuthService
	logger      *logrus.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, logger *logrus.Logger) *AuthController {
	return &AuthController{authService: authService, logger: logger}
}

// Signup creates an account and returns a token for it
func (ac *AuthController) Signup(w http.ResponseWriter, r *http.Request) {
	var req services.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	session, err := ac.authService.Signup(req)
	if err != nil {
		sendError(w, r, ac.logger, err, "Server error during signup")
		return
	}

	ac.logger.WithField("user_id", session.User.ID).Info("User signed up")
	response.Success(w, http.StatusCreated, "User registered successfully", response.Fields{
		"token":     session.Token,
		"expiresAt": session.ExpiresAt,
		"user":      session.User,
	})
}

// Login exchanges an email and password for a token
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	session, err := ac.authService.Login(req)
	if err != nil {
		sendError(w, r, ac.logger, err, "Server error during login")
		return
	}

	response.Success(w, http.StatusOK, "Login successful", response.Fields{
		"token":     session.Token,
		"expiresAt": session.ExpiresAt,
		"user":      session.User,
	})
}

// Me returns the account behind the bearer token
func (ac *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	response.Success(w, http.StatusOK, "", response.Fields{"user": user.Profile()})
}
