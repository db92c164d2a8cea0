package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"quoteme-backend/pkg/auth"
	"quoteme-backend/pkg/common"
)

// Limiter throttles requests by key. In-memory limiters serve the local
// server; Lambda deployments use the DynamoDB-backed limiter because
// container instances do not share memory.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Authenticator guards routes that need a signed-in user. When the service
// runs behind the API Gateway JWT authorizer the token arrives already
// validated and user identity travels in headers; locally the validator
// checks the token itself.
type Authenticator struct {
	validator   *auth.JWTValidator
	gatewayAuth bool
	ipLimiter   Limiter
	userLimiter Limiter
	logger      *zap.Logger
}

// NewAuthenticator creates authentication middleware
func NewAuthenticator(validator *auth.JWTValidator, gatewayAuth bool, ipLimiter, userLimiter Limiter, logger *zap.Logger) *Authenticator {
	return &Authenticator{
		validator:   validator,
		gatewayAuth: gatewayAuth,
		ipLimiter:   ipLimiter,
		userLimiter: userLimiter,
		logger:      logger,
	}
}

// Require rejects requests without a valid user identity
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := a.resolveUser(r)
		if user == nil {
			common.RespondError(w, http.StatusUnauthorized, common.StandardErrorCodes.Unauthorized, "Authentication required")
			return
		}

		if allowed, _ := a.userLimiter.Allow(r.Context(), user.UserID); !allowed {
			common.RespondError(w, http.StatusTooManyRequests, common.StandardErrorCodes.TooManyRequests, "Rate limit exceeded")
			return
		}

		ctx := auth.SetUserInContext(r.Context(), user)
		ctx = common.WithUserID(ctx, user.UserID)
		ctx = common.WithUserEmail(ctx, user.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects requests whose user is not in the admins group
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return a.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := auth.GetUserFromContext(r.Context())
		if err != nil || !user.IsAdmin() {
			a.logger.Warn("Admin access denied",
				zap.String("path", r.URL.Path),
				zap.String("userID", userIDOrEmpty(user)),
			)
			common.RespondError(w, http.StatusForbidden, common.StandardErrorCodes.Forbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// RateLimitIP throttles anonymous traffic per client IP. Public routes use
// this without requiring authentication.
func (a *Authenticator) RateLimitIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if allowed, _ := a.ipLimiter.Allow(r.Context(), clientIP(r)); !allowed {
			common.RespondError(w, http.StatusTooManyRequests, common.StandardErrorCodes.TooManyRequests, "Rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// resolveUser extracts the caller's identity, or nil when anonymous
func (a *Authenticator) resolveUser(r *http.Request) *auth.UserContext {
	if a.gatewayAuth && r.Header.Get("X-API-Gateway-Authorized") == "true" {
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			return nil
		}
		var groups []string
		if raw := r.Header.Get("X-User-Groups"); raw != "" {
			groups = strings.Split(raw, ",")
		}
		return &auth.UserContext{
			UserID: userID,
			Email:  r.Header.Get("X-User-Email"),
			Groups: groups,
		}
	}

	token := extractToken(r)
	if token == "" || a.validator == nil {
		return nil
	}

	claims, err := a.validator.ValidateToken(token)
	if err != nil {
		a.logger.Debug("Token rejected",
			zap.Error(err),
			zap.String("path", r.URL.Path),
		)
		return nil
	}
	return auth.UserFromClaims(claims)
}

// extractToken pulls the bearer token from the Authorization header
func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

// clientIP extracts the client IP address
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}

func userIDOrEmpty(user *auth.UserContext) string {
	if user == nil {
		return ""
	}
	return user.UserID
}
