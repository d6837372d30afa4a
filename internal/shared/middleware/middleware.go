package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"turfbook/internal/shared/config"
	"turfbook/internal/shared/identity"
	"turfbook/internal/shared/utils/response"
	"turfbook/internal/users"
	"turfbook/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger assigns a request id and logs every request once it completes
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		logger.GetDefault().WithRequestID(requestID).LogHTTPRequest(c, time.Since(start))
	}
}

// JWTAuthWithConfig creates a JWT authentication middleware with config
func JWTAuthWithConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "Authorization header is required", nil, nil)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "authorization header format must be Bearer {token}", nil, nil)
			c.Abort()
			return
		}

		id, err := parseAccessToken(parts[1], cfg.JWT.Secret)
		if err != nil {
			logger.GetDefault().LogAuthFailure(c.Request.Context(), err.Error(), c.ClientIP())
			response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid or expired token", nil, nil)
			c.Abort()
			return
		}

		setIdentity(c, id)
		c.Next()
	}
}

// parseAccessToken validates an HMAC-signed access token and extracts the caller
func parseAccessToken(tokenString, secret string) (identity.Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return identity.Identity{}, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return identity.Identity{}, fmt.Errorf("invalid claims")
	}
	if tokenType, ok := claims["type"]; !ok || tokenType != "access" {
		return identity.Identity{}, fmt.Errorf("invalid token type")
	}

	userID, err := claimInt64(claims["user_id"])
	if err != nil {
		return identity.Identity{}, err
	}
	role, _ := claims["role"].(string)
	email, _ := claims["email"].(string)

	id := identity.Identity{UserID: userID, Email: email, Role: users.Role(role)}
	if !id.Valid() {
		return identity.Identity{}, fmt.Errorf("invalid subject")
	}
	return id, nil
}

func claimInt64(v interface{}) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, fmt.Errorf("invalid user_id claim")
	}
}

func setIdentity(c *gin.Context, id identity.Identity) {
	c.Set("user_id", id.UserID)
	c.Set("user_email", id.Email)
	c.Set("user_role", string(id.Role))
	c.Request = c.Request.WithContext(identity.WithIdentity(c.Request.Context(), id))
}

// CurrentIdentity returns the caller stored by JWTAuth
func CurrentIdentity(c *gin.Context) (identity.Identity, bool) {
	return identity.FromContext(c.Request.Context())
}

// RequireRole middleware checks if user has required role
func RequireRole(requiredRole users.Role) gin.HandlerFunc {
	return RequireRoles(requiredRole)
}

// RequireAdmin middleware that requires admin role
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(users.RoleAdmin)
}

// RequireRoles middleware checks if user has any of the required roles
func RequireRoles(requiredRoles ...users.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, exists := CurrentIdentity(c)
		if !exists {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "user role not found in context", nil, nil)
			c.Abort()
			return
		}

		if err := id.RequireRole(requiredRoles...); err != nil {
			response.RespondJSON(c, "error", http.StatusForbidden, "Insufficient permissions", nil, nil)
			c.Abort()
			return
		}

		c.Next()
	}
}
