package models

import "time"

// User はユーザーのデータベース構造体を表します。
type User struct {
	ID           int       `json:"id,omitempty"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"` // JSONに出さない
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type UserRegisterRequest struct {
	Username             string `json:"username" binding:"required,max=150"`
	Email                string `json:"email" binding:"omitempty,email"`
	Password             string `json:"password" binding:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
}

type UserLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CurrentUser は認証済みのリクエスト主体です。各サービス操作に明示的に渡します。
type CurrentUser struct {
	ID       int
	Username string
}

// JWTClaims はトークンから取り出した情報です。
type JWTClaims struct {
	UserID    int
	Username  string
	TokenID   string
	ExpiresAt time.Time
}
