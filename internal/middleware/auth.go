package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hadracha/guides-portal/internal/model"
	"github.com/hadracha/guides-portal/internal/repository"
)

const actingUserKey = "acting_user"

type AuthMiddleware struct {
	userRepo repository.UserRepository
	secret   string
}

func NewAuthMiddleware(userRepo repository.UserRepository, secret string) *AuthMiddleware {
	return &AuthMiddleware{
		userRepo: userRepo,
		secret:   secret,
	}
}

// RequireAuth validates the bearer token and resolves the acting user once
// per request. Role and active state are read fresh from the database, so a
// deactivated user is locked out on their next request, token or not.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")

		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "יש להתחבר מחדש"})
			c.Abort()
			return
		}

		token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(m.secret), nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "יש להתחבר מחדש"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(*jwt.RegisteredClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "יש להתחבר מחדש"})
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "יש להתחבר מחדש"})
			c.Abort()
			return
		}

		user, err := m.userRepo.FindByID(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "יש להתחבר מחדש"})
			c.Abort()
			return
		}
		if !user.Active {
			c.JSON(http.StatusForbidden, gin.H{"error": "החשבון ממתין לאישור מנהל"})
			c.Abort()
			return
		}

		c.Set(actingUserKey, model.ActingUser{ID: user.ID, Role: user.Role})
		c.Next()
	}
}

// RequireModerator gates the moderation surface to admins and training
// managers.
func (m *AuthMiddleware) RequireModerator() gin.HandlerFunc {
	return func(c *gin.Context) {
		acting, ok := GetActingUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "יש להתחבר מחדש"})
			c.Abort()
			return
		}
		if !acting.IsModerator() {
			c.JSON(http.StatusForbidden, gin.H{"error": "אין לך הרשאה לבצע פעולה זו"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		acting, ok := GetActingUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "יש להתחבר מחדש"})
			c.Abort()
			return
		}
		if !acting.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "אין לך הרשאה לבצע פעולה זו"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetActingUser returns the identity resolved by RequireAuth.
func GetActingUser(c *gin.Context) (model.ActingUser, bool) {
	value, exists := c.Get(actingUserKey)
	if !exists {
		return model.ActingUser{}, false
	}
	acting, ok := value.(model.ActingUser)
	return acting, ok
}
