package routes

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"task-tracker/internal/apperrors"
	"task-tracker/internal/handlers"
	"task-tracker/internal/services"
)

const requestIDHeader = "X-Request-ID"

// AuthMiddleware はJWTトークンを検証し、ユーザー情報をコンテキストに設定するミドルウェアです。
func AuthMiddleware(jwtService *services.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}
		// "Bearer " プレフィックスを削除
		if !strings.HasPrefix(tokenString, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			return
		}
		tokenString = tokenString[len("Bearer "):]

		claims, err := jwtService.ValidateToken(c.Request.Context(), tokenString)
		if err != nil {
			if errors.Is(err, apperrors.ErrTokenRevoked) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has been revoked"})
				return
			}
			log.Printf("[%s] JWT validation error: %v", c.GetString(handlers.RequestIDKey), err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(handlers.ClaimsKey, claims)
		c.Next()
	}
}

// RequestID はリクエストIDを採番 (またはクライアントの値を引き継ぎ) し、レスポンスヘッダーに付けます。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Request.Header.Set(requestIDHeader, id)
		c.Set(handlers.RequestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}
