package handler

import (
	"context"
	"hrms-api/common"
	"hrms-api/logger"
	"hrms-api/model"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

type contextKey string

const identityKey contextKey = "identity"

// TokenVerifier turns a bearer token into a verified identity.
type TokenVerifier interface {
	Verify(token string) (*model.Identity, error)
}

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity *model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the identity stored by AuthMiddleware.
func IdentityFromContext(ctx context.Context) (*model.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*model.Identity)
	return identity, ok && identity != nil
}

// AuthMiddleware rejects requests without a valid bearer access token and
// stores the verified identity in the request context.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				err := common.NewAppError(http.StatusUnauthorized, "Authorization header is required", nil)
				err.Send(w)
				return
			}

			scheme, tokenString, found := strings.Cut(strings.TrimSpace(authHeader), " ")
			tokenString = strings.TrimSpace(tokenString)
			if !found || !strings.EqualFold(scheme, "bearer") || tokenString == "" {
				err := common.NewAppError(http.StatusUnauthorized, "Invalid authorization header format", nil)
				err.Send(w)
				return
			}

			identity, err := verifier.Verify(tokenString)
			if err != nil {
				appErr := common.NewAppError(http.StatusUnauthorized, "Invalid or expired token", nil)
				appErr.Send(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireRoles permits the request when the caller holds at least one of
// roles. It must run after AuthMiddleware.
func RequireRoles(roles ...model.Role) func(http.Handler) http.Handler {
	allowed := model.NewRoleSet(roles...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				err := common.NewAppError(http.StatusUnauthorized, "Authentication required", nil)
				err.Send(w)
				return
			}

			if !identity.Roles.Intersects(allowed) {
				logger.Log.WithFields(logrus.Fields{
					"user_id": identity.Subject,
					"roles":   identity.RoleNames(),
					"path":    r.URL.Path,
				}).Warn("Access denied")
				err := common.NewAppError(http.StatusForbidden, "Access denied. Insufficient role.", nil)
				err.Send(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
