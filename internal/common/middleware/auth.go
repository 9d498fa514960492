package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/open-builders/gws-backend/internal/common/errors"
	"github.com/open-builders/gws-backend/internal/domain/user"
)

const claimsKey = "claims"

// Claims are issued by the account service.
type Claims struct {
	ID       string `json:"id"`
	Role     string `json:"role"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the token carries the admin role.
func (c *Claims) IsAdmin() bool { return c.Role == user.RoleAdmin }

// RequireAuth validates the bearer token. A missing token is 401, an invalid one 403.
func RequireAuth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !found || token == "" {
			RespondError(c, apperrors.NewUnauthorizedError("Access denied"))
			return
		}

		claims := &Claims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return key, nil
		})
		if err != nil || !parsed.Valid || claims.ID == "" {
			RespondError(c, apperrors.NewForbiddenError("Invalid token"))
			return
		}

		c.Set(claimsKey, claims)
		c.Set("user_id", claims.ID)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			RespondError(c, apperrors.NewUnauthorizedError("Access denied"))
			return
		}
		if !claims.IsAdmin() {
			RespondError(c, apperrors.NewForbiddenError("Admin access required"))
			return
		}
		c.Next()
	}
}

// CurrentClaims returns the claims stored by RequireAuth.
func CurrentClaims(c *gin.Context) (*Claims, bool) {
	v, exists := c.Get(claimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}
