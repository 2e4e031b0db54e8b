package middleware

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	autherrors "github.com/SebastienDelgado/detachements-backend/internal/auth/errors"
	"github.com/SebastienDelgado/detachements-backend/internal/shared/contextutil"
	"github.com/SebastienDelgado/detachements-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		authHeader := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentification requise.", nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(os.Getenv("JWT_SECRET")), nil
		})

		if err != nil || !token.Valid {
			errObj := autherrors.ErrInvalidToken
			if err != nil && strings.Contains(err.Error(), "expired") {
				errObj = autherrors.ErrTokenExpired
			}
			response.Error(c, errObj.HTTPStatus, errObj.Code, errObj.Message, nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Error(c, autherrors.ErrInvalidToken.HTTPStatus, autherrors.ErrInvalidToken.Code, autherrors.ErrInvalidToken.Message, nil)
			c.Abort()
			return
		}

		adminID, ok := claims["admin_id"].(string)
		if !ok || adminID == "" {
			response.Error(c, autherrors.ErrInvalidToken.HTTPStatus, autherrors.ErrInvalidToken.Code, autherrors.ErrInvalidToken.Message, nil)
			c.Abort()
			return
		}

		name, _ := claims["name"].(string)
		email, _ := claims["email"].(string)
		role, _ := claims["role"].(string)

		c.Set("admin_id", adminID)
		c.Set("admin_name", name)
		c.Set("admin_email", email)
		c.Set("role", role)

		ctx := contextutil.WithAdminID(c.Request.Context(), adminID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func RoleMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get("role")
		if !exists {
			response.Error(c, autherrors.ErrForbidden.HTTPStatus, autherrors.ErrForbidden.Code, autherrors.ErrForbidden.Message, nil)
			c.Abort()
			return
		}

		isAllowed := false
		for _, role := range allowedRoles {
			if userRole == role {
				isAllowed = true
				break
			}
		}

		if !isAllowed {
			response.Error(c, autherrors.ErrForbidden.HTTPStatus, autherrors.ErrForbidden.Code, autherrors.ErrForbidden.Message, nil)
			c.Abort()
			return
		}

		c.Next()
	}
}
