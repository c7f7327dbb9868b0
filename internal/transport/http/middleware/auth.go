package middleware

import (
	"context"
	"net/http"
	"strings"

	"emsspace/internal/domain/auth"
	"emsspace/internal/transport/http/api"
)

type ctxKey string

const ctxKeyUser ctxKey = "user"

// Auth attaches the authenticated user to the context when a valid bearer
// token is present. Missing or invalid tokens fall through; route guards
// decide whether anonymous access is acceptable.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyUser, auth.UserContext{
				UserID:       claims.UserID,
				Role:         auth.Role(claims.Role),
				CompanyID:    claims.CompanyID,
				DepartmentID: claims.DepartmentID,
				EmployeeID:   claims.EmployeeID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUser(ctx context.Context) (auth.UserContext, bool) {
	user, ok := ctx.Value(ctxKeyUser).(auth.UserContext)
	return user, ok
}

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireRole(roles ...auth.Role) func(http.Handler) http.Handler {
	allowed := make(map[auth.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
				return
			}
			if _, ok := allowed[user.Role]; !ok {
				api.Fail(w, http.StatusForbidden, "forbidden", "insufficient role", GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
