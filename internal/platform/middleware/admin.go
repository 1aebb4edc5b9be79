package middleware

import (
	"log/slog"
	"net/http"

	"organmatch/pkg/requestcontext"
	"organmatch/pkg/secrets"
)

// RequireAdminToken gates the admin surface behind a shared token. Only the
// bcrypt hash of the token is configured; the plaintext never leaves the
// operator's hands.
func RequireAdminToken(tokenHash string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-Admin-Token")
			if err := secrets.Verify(token, tokenHash); err != nil {
				ctx := r.Context()
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"admin token required"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
