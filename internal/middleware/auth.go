// Package middleware holds the gin guards that run before the handlers.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/gin-gonic/gin"
)

// UserIDKey is the gin context key AuthMiddleware stores the caller under.
const UserIDKey = "userID"

// TokenValidator turns a bearer token into a user ID.
type TokenValidator interface {
	ValidateToken(token string) (int64, error)
}

// StaffChecker answers whether a user may use the admin endpoints.
type StaffChecker interface {
	IsStaff(ctx context.Context, userID int64) (bool, error)
}

func abort(c *gin.Context, kind apperr.Kind, detail string) {
	c.AbortWithStatusJSON(kind.Status(), gin.H{"code": kind, "error": detail})
}

// AuthMiddleware requires an `Authorization: Bearer <token>` header. The
// `Token <token>` scheme is accepted as well.
func AuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. --- Get Authorization Header ---
		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, apperr.Unauthenticated, "Authorization header required")
			return
		}

		scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
		if !ok || (scheme != "Bearer" && scheme != "Token") || strings.TrimSpace(token) == "" {
			abort(c, apperr.Unauthenticated, "Invalid token format (must be Bearer)")
			return
		}

		// 2. --- Validate Token ---
		userID, err := tokens.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			abort(c, apperr.Unauthenticated, "Invalid or expired token")
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// AdminMiddleware must run after AuthMiddleware; it lets only staff through.
func AdminMiddleware(staff StaffChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetInt64(UserIDKey)
		if userID == 0 {
			abort(c, apperr.Unauthenticated, "Authentication required")
			return
		}

		ok, err := staff.IsStaff(c.Request.Context(), userID)
		if err != nil {
			c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"code": apperr.Internal, "error": "Database error checking role"})
			return
		}
		if !ok {
			abort(c, apperr.PermissionDenied, "Access denied: admin role required")
			return
		}
		c.Next()
	}
}
