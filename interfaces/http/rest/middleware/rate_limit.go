package middleware

import (
	"net"
	"net/http"
	"strconv"

	"provenance-backend/pkg/auth"
	"provenance-backend/pkg/common"
	pkgerrors "provenance-backend/pkg/errors"

	"go.uber.org/zap"
)

// RateLimit rejects callers that exceed perMinute requests with 429.
// Callers are keyed by user id when authenticated and by client IP otherwise.
func RateLimit(limiter auth.RateLimiter, perMinute int, errs *pkgerrors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)
			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				// Fail open.
				logger.Warn("Rate limiter unavailable", zap.Error(err), zap.String("key", key))
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(60/max(perMinute, 1)+1))
				errs.Handle(w, r, pkgerrors.NewRateLimitError(perMinute, "minute"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	if userID, ok := common.GetUserID(r.Context()); ok && userID != "" {
		return "user:" + userID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
