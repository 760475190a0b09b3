package middleware

import (
	"errors"
	"net/http"

	"socialfeed/app/auth"
	"socialfeed/app/metrics"
	"socialfeed/app/models"
	"socialfeed/app/response"

	"github.com/sirupsen/logrus"
)

// Verifier resolves an Authorization header to a user.
type Verifier interface {
	Verify(header string) (*models.User, error)
}

// RequireAuth rejects requests without a valid bearer token before they
// reach next. The resolved user is available through auth.UserFromContext.
// Callers only ever see a generic 401; the reason is logged.
func RequireAuth(verifier Verifier, logger *logrus.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := verifier.Verify(r.Header.Get("Authorization"))
			if err != nil {
				if !errors.Is(err, auth.ErrAuth) {
					logger.WithError(err).WithField("path", r.URL.Path).Error("Token verification failed")
					response.Error(w, http.StatusInternalServerError, "Authentication failed")
					return
				}

				reason := failureReason(err)
				if m != nil {
					m.AuthFailures.WithLabelValues(reason).Inc()
				}
				logger.WithFields(logrus.Fields{
					"path":   r.URL.Path,
					"reason": reason,
					"error":  err.Error(),
				}).Info("Rejected credential")
				response.Error(w, http.StatusUnauthorized, "Not authorized")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingCredential):
		return "missing"
	case errors.Is(err, auth.ErrExpiredCredential):
		return "expired"
	case errors.Is(err, auth.ErrUnknownSubject):
		return "unknown_subject"
	default:
		return "invalid"
	}
}
