package middleware

import (
	"errors"
	"net/http"
	"strings"

	"provenance-backend/pkg/auth"
	"provenance-backend/pkg/common"
	pkgerrors "provenance-backend/pkg/errors"
)

// Authenticate validates bearer tokens with validator. A nil validator
// disables authentication and every request passes through.
func Authenticate(validator *auth.JWTValidator, errs *pkgerrors.ErrorHandler) func(next http.Handler) http.Handler {
	if validator == nil {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				errs.Handle(w, r, err)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				errs.Handle(w, r, unauthorized(err))
				return
			}

			ctx := auth.WithClaims(r.Context(), claims)
			ctx = common.WithUserID(ctx, claims.UserID())
			ctx = common.WithUserRoles(ctx, claims.Roles)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects callers whose token does not carry role. An empty
// role disables the check.
func RequireRole(role string, errs *pkgerrors.ErrorHandler) func(next http.Handler) http.Handler {
	if role == "" {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !common.HasRole(r.Context(), role) {
				errs.Handle(w, r, pkgerrors.NewForbiddenError(role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", pkgerrors.NewUnauthorizedError("missing authorization header")
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", pkgerrors.NewUnauthorizedError("invalid authorization header format")
	}
	return strings.TrimSpace(token), nil
}

func unauthorized(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return pkgerrors.NewUnauthorizedError("token has expired")
	case errors.Is(err, auth.ErrInvalidSignature):
		return pkgerrors.NewUnauthorizedError("invalid token signature")
	default:
		return pkgerrors.NewUnauthorizedError("invalid token").WithCause(err)
	}
}
