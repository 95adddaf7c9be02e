package middleware

import (
	"net/http"
	"strings"

	"github.com/catelog/catetube-backend/internal/auth"
	"github.com/labstack/echo/v4"
)

type AuthMiddleware struct {
	secretKey []byte
}

func NewAuthMiddleware(secretKey []byte) *AuthMiddleware {
	return &AuthMiddleware{secretKey: secretKey}
}

// RequireAuth verifies the bearer token and stores the authenticated user
// id under the "uid" context key.
func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authz := c.Request().Header.Get("Authorization")
		if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}
		tokenStr := strings.TrimPrefix(authz, "Bearer ")
		uid, err := auth.GetUserIDFromToken(tokenStr, m.secretKey)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid_token"})
		}
		c.Set("uid", uid)
		return next(c)
	}
}
