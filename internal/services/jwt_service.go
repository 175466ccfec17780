package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"task-tracker/internal/apperrors"
	"task-tracker/internal/models"
	"task-tracker/internal/revocation"
)

// Claims はJWTクレームの構造体です。
type Claims struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTService はJWTトークンの生成・検証・失効を扱います。
type JWTService struct {
	secret   []byte
	ttl      time.Duration
	denylist revocation.Denylist
}

// NewJWTService は新しいJWTServiceを作成します。
func NewJWTService(secret string, ttl time.Duration, denylist revocation.Denylist) *JWTService {
	return &JWTService{secret: []byte(secret), ttl: ttl, denylist: denylist}
}

// GenerateToken はユーザーのJWTトークンを生成します。トークンごとに一意のID (jti) を付けます。
func (s *JWTService) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken はJWTトークンを検証し、クレームを返します。失効済みなら ErrTokenRevoked です。
func (s *JWTService) ValidateToken(ctx context.Context, tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == "" || claims.ExpiresAt == nil {
		return nil, errors.New("invalid token claims")
	}

	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, apperrors.ErrTokenRevoked
	}

	return &models.JWTClaims{
		UserID:    claims.UserID,
		Username:  claims.Username,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// RevokeToken はトークンを残りの有効期間だけ失効リストに登録します。
func (s *JWTService) RevokeToken(ctx context.Context, claims *models.JWTClaims) error {
	if err := s.denylist.Revoke(ctx, claims.TokenID, time.Until(claims.ExpiresAt)); err != nil {
		log.Printf("Failed to revoke token %s: %v", claims.TokenID, err)
		return err
	}
	return nil
}
