package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/asmi/skincare-advisor-backend/internal/accounts"
)

// RequireAuth validates the bearer session token and injects the user_id
// into the request context. A missing credential is 401; a token that
// fails verification is 400, matching the account error taxonomy.
func RequireAuth(svc *accounts.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := svc.ValidateSession(accounts.BearerToken(r))
			if err != nil {
				if errors.Is(err, accounts.ErrUnauthorized) {
					http.Error(w, `{"error":"access denied"}`, http.StatusUnauthorized)
					return
				}
				http.Error(w, `{"error":"invalid token"}`, http.StatusBadRequest)
				return
			}

			ctx := context.WithValue(r.Context(), "user_id", userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
