package middleware

import (
	"errors"
	"strings"

	"github.com/classhall/core/internal/models"
	"github.com/classhall/core/internal/pkg/jwt"
	"github.com/classhall/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	ContextKeyUserID = "user_id"
	ContextKeyRole   = "user_role"
)

// Auth returns a middleware that enforces JWT authentication. The caller's
// current role is re-read from the user row so role changes apply at once.
func Auth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := resolveUser(db, extractToken(c))
		if err != nil {
			response.Unauthorized(c)
			return
		}
		c.Set(ContextKeyUserID, user.ID)
		c.Set(ContextKeyRole, user.Role)
		c.Next()
	}
}

// OptionalAuth resolves the caller's identity when a token is present but
// never rejects. Lets rate limiting distinguish signed-in callers on routes
// that allow anonymous access.
func OptionalAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, err := resolveUser(db, extractToken(c)); err == nil {
			c.Set(ContextKeyUserID, user.ID)
			c.Set(ContextKeyRole, user.Role)
		}
		c.Next()
	}
}

// RequireModerator rejects callers whose role carries no moderation rights.
// Must run after Auth.
func RequireModerator() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentRole(c).IsModerator() {
			response.Forbidden(c)
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects callers who are not admins. Must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentRole(c) != models.RoleAdmin {
			response.Forbidden(c)
			return
		}
		c.Next()
	}
}

// ValidateToken validates a raw token and returns the authenticated user id.
// Used by transports that cannot carry gin middleware state.
func ValidateToken(db *gorm.DB, rawToken string) (string, error) {
	user, err := resolveUser(db, rawToken)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

func resolveUser(db *gorm.DB, rawToken string) (*models.UserModel, error) {
	token := NormalizeToken(rawToken)
	if token == "" {
		return nil, errors.New("token is required")
	}

	claims, err := jwt.Parse(token)
	if err != nil {
		return nil, err
	}

	var user models.UserModel
	if err := db.First(&user, "id = ?", claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user no longer exists")
		}
		return nil, err
	}
	return &user, nil
}

// CurrentUserID extracts the authenticated user ID from context.
func CurrentUserID(c *gin.Context) string {
	v, _ := c.Get(ContextKeyUserID)
	id, _ := v.(string)
	return id
}

// CurrentRole extracts the authenticated user's role from context.
func CurrentRole(c *gin.Context) models.UserRole {
	v, _ := c.Get(ContextKeyRole)
	role, _ := v.(models.UserRole)
	return role
}

// IsAuthenticated returns true if the request has a valid auth token.
func IsAuthenticated(c *gin.Context) bool {
	return CurrentUserID(c) != ""
}

func extractToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if auth != "" {
		return NormalizeToken(auth)
	}
	// EventSource cannot set headers, so the live stream passes ?token=.
	return NormalizeToken(c.Query("token"))
}

// NormalizeToken trims spaces and strips optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
