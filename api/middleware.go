/*
middleware.go - Session-token middleware

PURPOSE:
  Every authenticated route requires a bearer token in the X-Auth-Token
  header. The middleware verifies it, resolves the owning user id and
  stashes it in the request context; handlers read it back with
  userID(r). Missing or invalid tokens are 401 before any handler runs.
*/
package api

import (
	"context"
	"net/http"
)

type userIDKey struct{}

// RequireAuth verifies the session token and injects the user id.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("X-Auth-Token")
		if token == "" {
			h.writeError(w, http.StatusUnauthorized, "no token, authorization denied", nil)
			return
		}

		uid, err := h.Tokens.Verify(token)
		if err != nil {
			h.writeError(w, http.StatusUnauthorized, "token is not valid", err)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey{}, uid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userID returns the authenticated user id set by RequireAuth.
func userID(r *http.Request) string {
	uid, _ := r.Context().Value(userIDKey{}).(string)
	return uid
}
