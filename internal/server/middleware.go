package server

import (
	"net/http"
	"strings"
)

// requireBearerToken enforces the optional static bearer token. An empty
// configured token disables the check entirely, which keeps local development
// friction-free but is insecure for anything public-facing.
func (s *Server) requireBearerToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.AuthToken == "" {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			respondJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Missing or malformed Authorization header"})
			return
		}

		if strings.TrimPrefix(authHeader, "Bearer ") != s.cfg.AuthToken {
			respondJSON(w, http.StatusForbidden, map[string]any{"detail": "Invalid token"})
			return
		}

		next.ServeHTTP(w, r)
	})
}
