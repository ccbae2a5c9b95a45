package middleware

import (
	"context"
	"net/http"
	"strings"

	"flowstate-server/services"
	"flowstate-server/utils/errors"
)

// SessionMiddleware resolves the bearer session token against the session
// store and puts the user id on the request context. Requests without a
// valid session are rejected.
func SessionMiddleware(sessions services.Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				WriteError(w, errors.ErrUnauthorized)
				return
			}
			userID, err := sessions.Resolve(r.Context(), token)
			if err != nil {
				WriteError(w, err)
				return
			}
			ctx := context.WithValue(r.Context(), "userID", userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalSessionMiddleware populates the user id when a valid session is
// presented and passes the request through untouched otherwise. Used for
// endpoints like whoami that answer for anonymous callers too.
func OptionalSessionMiddleware(sessions services.Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token != "" {
				if userID, err := sessions.Resolve(r.Context(), token); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), "userID", userID))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(authHeader, "Bearer ")
}

// SessionToken extracts the raw bearer token, for logout.
func SessionToken(r *http.Request) string {
	return bearerToken(r)
}
