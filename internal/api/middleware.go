package api

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"cvos/coach-app/internal/access"
	"cvos/coach-app/internal/domain"
	"cvos/coach-app/internal/repository"
	"cvos/coach-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Constants for context keys
const (
	ContextUserIDKey   = "userID"
	ContextUserRoleKey = "userRole"
)

type authError struct {
	code    int
	message string
}

// authenticate validates the bearer token and resolves the user's current
// role from the profile. The token's role claim is used only without a resolver.
func authenticate(c *gin.Context, jwtSecret string, roles *access.RoleResolver) (primitive.ObjectID, domain.Role, *authError) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return primitive.NilObjectID, "", &authError{http.StatusUnauthorized, "Authorization header is missing"}
	}

	// Expecting "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return primitive.NilObjectID, "", &authError{http.StatusUnauthorized, "Authorization header format must be Bearer {token}"}
	}

	claims := &service.TokenClaims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return primitive.NilObjectID, "", &authError{http.StatusUnauthorized, "Token has expired"}
		}
		return primitive.NilObjectID, "", &authError{http.StatusUnauthorized, fmt.Sprintf("Invalid token: %v", err)}
	}
	if !token.Valid || claims.UserID == "" {
		return primitive.NilObjectID, "", &authError{http.StatusUnauthorized, "Invalid token or missing claims"}
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(time.Now()) {
		return primitive.NilObjectID, "", &authError{http.StatusUnauthorized, "Token has expired (claim check)"}
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, "", &authError{http.StatusUnauthorized, "Invalid user ID in token"}
	}

	role := claims.Role
	if roles != nil {
		role, err = roles.Role(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return primitive.NilObjectID, "", &authError{http.StatusUnauthorized, "Account no longer exists"}
			}
			return primitive.NilObjectID, "", &authError{http.StatusInternalServerError, "Could not resolve user role"}
		}
	}
	return userID, role, nil
}

// AuthMiddleware creates a Gin middleware for JWT authentication.
func AuthMiddleware(jwtSecret string, roles *access.RoleResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, role, aerr := authenticate(c, jwtSecret, roles)
		if aerr != nil {
			abortWithError(c, aerr.code, aerr.message)
			return
		}
		c.Set(ContextUserIDKey, userID.Hex())
		c.Set(ContextUserRoleKey, role)
		c.Next()
	}
}

// OptionalAuthMiddleware identifies the user when a valid token is sent and
// lets anonymous requests through otherwise.
func OptionalAuthMiddleware(jwtSecret string, roles *access.RoleResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			if userID, role, aerr := authenticate(c, jwtSecret, roles); aerr == nil {
				c.Set(ContextUserIDKey, userID.Hex())
				c.Set(ContextUserRoleKey, role)
			}
		}
		c.Next()
	}
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// RoleMiddleware creates middleware to check if user has the required role(s).
// Admins pass every check. Must run AFTER AuthMiddleware.
func RoleMiddleware(allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, err := getUserRoleFromContext(c)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, err.Error())
			return
		}
		if userRole == domain.RoleNone {
			abortWithError(c, http.StatusForbidden, "Complete onboarding first")
			return
		}
		if userRole != domain.RoleAdmin && !slices.Contains(allowedRoles, userRole) {
			abortWithError(c, http.StatusForbidden, fmt.Sprintf("Access denied: Role '%s' does not have permission", userRole))
			return
		}
		c.Next()
	}
}

// RequestLogger logs one line per request.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if id, err := getUserIDFromContext(c); err == nil {
			fields = append(fields, zap.String("user_id", id))
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			log.Error("request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

// Helper function to get User ID from context (used by handlers)
func getUserIDFromContext(c *gin.Context) (string, error) {
	idRaw, exists := c.Get(ContextUserIDKey)
	if !exists {
		return "", errors.New("user ID not found in context")
	}
	idStr, ok := idRaw.(string)
	if !ok {
		return "", errors.New("invalid user ID type in context")
	}
	return idStr, nil
}

// Helper function to get User Role from context (used by handlers)
func getUserRoleFromContext(c *gin.Context) (domain.Role, error) {
	roleRaw, exists := c.Get(ContextUserRoleKey)
	if !exists {
		return "", errors.New("user role not found in context")
	}
	role, ok := roleRaw.(domain.Role)
	if !ok {
		return "", errors.New("invalid user role type in context")
	}
	return role, nil
}

// currentUserID aborts with 401 when the request carries no usable user ID.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format in token.")
		return primitive.NilObjectID, false
	}
	return id, true
}

// objectIDParam parses a path parameter, aborting with 400 when malformed.
func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s format", name))
		return primitive.NilObjectID, false
	}
	return id, true
}
