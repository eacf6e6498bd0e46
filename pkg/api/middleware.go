package api

import (
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// requestLogger logs incoming HTTP requests.
func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		s.log.WithField("method", r.Method).
			WithField("path", r.URL.Path).
			WithField("remote", r.RemoteAddr).
			WithField("duration", time.Since(start)).
			Debug("Request handled")
	})
}

// requireAuth checks basic auth credentials against the configured
// users. Applied to mutating routes only when auth is enabled.
func (s *server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="ptdash"`)
			writeJSON(w, http.StatusUnauthorized,
				errorResponse{"authentication required"})

			return
		}

		for _, u := range s.cfg.Auth.Users {
			if u.Username != username {
				continue
			}

			if bcrypt.CompareHashAndPassword(
				[]byte(u.PasswordHash), []byte(password),
			) == nil {
				next.ServeHTTP(w, r)

				return
			}

			break
		}

		writeJSON(w, http.StatusUnauthorized,
			errorResponse{"invalid credentials"})
	})
}
