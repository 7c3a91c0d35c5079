package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	h "eventledger/internal/delivery/http/helpers"
	"eventledger/internal/domain"
)

type contextKey string

const identityKey contextKey = "identity"

// SetIdentity returns a context carrying who.
func SetIdentity(ctx context.Context, who domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, who)
}

// IdentityFromContext returns the caller resolved by Identity. ok is false
// when no user id is known.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	who, ok := ctx.Value(identityKey).(domain.Identity)
	return who, ok && who.UserID != ""
}

// Identity resolves the caller of each request. A bearer token is verified
// when verifier is set; a bad token is rejected with 401. Requests without a
// token fall back to the userId and userName query parameters. Handlers
// decide whether an identity is required.
func Identity(verifier domain.TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth != "" && verifier != nil {
				const prefix = "Bearer "
				if !strings.HasPrefix(auth, prefix) {
					h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid authorization format")
					return
				}
				token := strings.TrimSpace(auth[len(prefix):])
				if token == "" {
					h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing token")
					return
				}
				who, err := verifier.Verify(token)
				if err != nil {
					logger.DebugContext(r.Context(), "bearer token rejected", "err", err)
					h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
					return
				}
				next.ServeHTTP(w, r.WithContext(SetIdentity(r.Context(), who)))
				return
			}

			q := r.URL.Query()
			who := domain.Identity{
				UserID:   strings.TrimSpace(q.Get("userId")),
				UserName: strings.TrimSpace(q.Get("userName")),
			}
			next.ServeHTTP(w, r.WithContext(SetIdentity(r.Context(), who)))
		})
	}
}
