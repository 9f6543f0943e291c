package auth

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskpad/pkg/respond"
)

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok && id.UserID != ""
}

// OwnerFrom returns the authenticated owner id, or "" outside an authenticated request.
func OwnerFrom(ctx context.Context) string {
	id, _ := IdentityFrom(ctx)
	return id.UserID
}

// Middleware rejects requests without a valid bearer token and stores the
// caller identity in the request context.
func Middleware(tokens *TokenManager, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearer(r.Header.Get("Authorization"))
			if !ok {
				respond.Error(w, r, http.StatusUnauthorized, "missing bearer token")
				return
			}

			id, err := tokens.Validate(raw)
			if err != nil {
				logger.Debug("rejected token", zap.Error(err))
				respond.Error(w, r, http.StatusUnauthorized, err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func bearer(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
