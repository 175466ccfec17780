package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"task-tracker/internal/apperrors"
	"task-tracker/internal/models"
)

// gin.Context に保存するキー
const (
	ClaimsKey    = "jwt_claims"
	RequestIDKey = "request_id"
)

// tokenClaims は認証ミドルウェアが設定したクレームを返します。未認証なら nil です。
func tokenClaims(c *gin.Context) *models.JWTClaims {
	v, exists := c.Get(ClaimsKey)
	if !exists {
		return nil
	}
	claims, ok := v.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// currentUser はリクエストの主体を返します。未認証なら nil で、サービス側が ErrUnauthenticated を返します。
func currentUser(c *gin.Context) *models.CurrentUser {
	claims := tokenClaims(c)
	if claims == nil {
		return nil
	}
	return &models.CurrentUser{ID: claims.UserID, Username: claims.Username}
}

func parseTaskID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return 0, false
	}
	return id, true
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
}

// respondError はエラーをHTTPレスポンスに変換します。想定外のエラーは詳細を返さずログに残します。
func respondError(c *gin.Context, err error, failureMessage string) {
	status := apperrors.StatusCode(err)
	if status == http.StatusInternalServerError {
		log.Printf("[%s] %s: %v", c.GetString(RequestIDKey), failureMessage, err)
		c.JSON(status, gin.H{"error": failureMessage})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
