package controllers

import (
	"errors"
	"net/http"
	"strings"

	"socialfeed/app/response"
	"socialfeed/app/services"

	"github.com/sirupsen/logrus"
)

// statusFor maps a domain error to its HTTP status and a message that is
// safe to show. ok is false for unexpected errors.
func statusFor(err error) (status int, message string, ok bool) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, capitalize(verr.Message), true
	case errors.Is(err, ErrImageTooLarge),
		errors.Is(err, ErrNotAnImage),
		errors.Is(err, ErrBadUpload):
		return http.StatusBadRequest, rootMessage(err), true
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, "Post not found", true
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, "Not authorized to delete this post", true
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict, "Username or email already in use", true
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized, "Invalid credentials", true
	default:
		return http.StatusInternalServerError, "", false
	}
}

func rootMessage(err error) string {
	for _, known := range []error{ErrImageTooLarge, ErrNotAnImage, ErrBadUpload} {
		if errors.Is(err, known) {
			return capitalize(known.Error())
		}
	}
	return err.Error()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// sendError writes the error envelope for err. Unexpected errors are logged
// and reported with fallback so no internal detail leaks.
func sendError(w http.ResponseWriter, r *http.Request, logger *logrus.Logger, err error, fallback string) {
	status, message, ok := statusFor(err)
	if !ok {
		logger.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error(fallback)
		message = fallback
	}
	response.Error(w, status, message)
}
