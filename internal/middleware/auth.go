package middleware

import (
	"net/http"
	"strings"

	"crimewatch/internal/models"
	"crimewatch/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const CheckUserKey = "user"

// Auth requires a valid bearer token resolving to an existing user.
func Auth(ts *services.TokenService, conn *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, detail := resolveUser(c, ts, conn)
		if user == nil {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": detail})
			return
		}
		c.Set(CheckUserKey, user)
		c.Next()
	}
}

// AuthOptional resolves an identity when a valid token is present and
// continues anonymously otherwise. It never rejects the request.
func AuthOptional(ts *services.TokenService, conn *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, _ := resolveUser(c, ts, conn); user != nil {
			c.Set(CheckUserKey, user)
		}
		c.Next()
	}
}

// RequireAdmin must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || user.Role != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "Admins only"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user set by Auth/AuthOptional, or nil.
func CurrentUser(c *gin.Context) *models.User {
	u, exists := c.Get(CheckUserKey)
	if !exists {
		return nil
	}
	user, ok := u.(*models.User)
	if !ok {
		return nil
	}
	return user
}

func resolveUser(c *gin.Context, ts *services.TokenService, conn *gorm.DB) (*models.User, string) {
	token := extractBearer(c)
	if token == "" {
		return nil, "Not authenticated"
	}

	subject, err := ts.Verify(token)
	if err != nil {
		if err == services.ErrMissingSubject {
			return nil, "Token payload missing username"
		}
		return nil, "Could not validate credentials"
	}

	var user models.User
	if err := conn.Where("username = ?", subject).First(&user).Error; err != nil {
		return nil, "User not found"
	}
	return &user, ""
}

func extractBearer(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
