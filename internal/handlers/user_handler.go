package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"task-tracker/internal/apperrors"
	"task-tracker/internal/models"
	"task-tracker/internal/services"
)

// UserHandler はユーザー関連のハンドラーを管理します。
type UserHandler struct {
	userService *services.UserService
	jwtService  *services.JWTService
}

// NewUserHandler は新しいUserHandlerを作成します。
func NewUserHandler(userService *services.UserService, jwtService *services.JWTService) *UserHandler {
	return &UserHandler{userService: userService, jwtService: jwtService}
}

// RegisterHandler はユーザー登録を処理し、そのままログインした状態のトークンを返します。
func (h *UserHandler) RegisterHandler(c *gin.Context) {
	var req models.UserRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.userService.RegisterUser(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to register user")
		return
	}

	token, err := h.jwtService.GenerateToken(user)
	if err != nil {
		respondError(c, err, "Failed to generate token")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

// LoginHandler はユーザーログインを処理します。
func (h *UserHandler) LoginHandler(c *gin.Context) {
	var req models.UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.userService.AuthenticateUser(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to authenticate user")
		return
	}

	token, err := h.jwtService.GenerateToken(user)
	if err != nil {
		respondError(c, err, "Failed to generate token")
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user_id": user.ID, "username": user.Username})
}

// LogoutHandler は提示されたトークンを失効させます。
func (h *UserHandler) LogoutHandler(c *gin.Context) {
	claims := tokenClaims(c)
	if claims == nil {
		respondError(c, apperrors.ErrUnauthenticated, "Failed to log out")
		return
	}

	if err := h.jwtService.RevokeToken(c.Request.Context(), claims); err != nil {
		respondError(c, err, "Failed to log out")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// MeHandler は現在のユーザー情報を返します。
func (h *UserHandler) MeHandler(c *gin.Context) {
	user, err := h.userService.GetCurrentUser(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err, "Failed to fetch user")
		return
	}
	c.JSON(http.StatusOK, user)
}
