package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"task-tracker/internal/apperrors"
	"task-tracker/internal/models"
	"task-tracker/internal/repositories"
)

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

// bcryptはこれより長いパスワードを扱えない
const maxPasswordBytes = 72

// UserService はユーザー関連のビジネスロジックを扱います。
type UserService struct {
	userRepo   *repositories.UserRepository
	bcryptCost int
}

// NewUserService は新しいUserServiceを作成します。
func NewUserService(userRepo *repositories.UserRepository, bcryptCost int) *UserService {
	return &UserService{userRepo: userRepo, bcryptCost: bcryptCost}
}

// RegisterUser はユーザーを登録します。
func (s *UserService) RegisterUser(ctx context.Context, req models.UserRegisterRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	if err := validateRegistration(username, req); err != nil {
		return nil, err
	}

	hashedPassword, err := repositories.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		return nil, err
	}

	newUser := &models.User{
		Username:     username,
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hashedPassword,
	}
	createdUser, err := s.userRepo.Create(ctx, newUser)
	if err != nil {
		return nil, err
	}
	createdUser.PasswordHash = "" // レスポンスにパスワードを含めない
	return createdUser, nil
}

func validateRegistration(username string, req models.UserRegisterRequest) error {
	switch {
	case username == "":
		return fmt.Errorf("%w: username is required", apperrors.ErrValidationFailed)
	case !usernamePattern.MatchString(username):
		return fmt.Errorf("%w: username may contain only letters, numbers, and @/./+/-/_ characters", apperrors.ErrValidationFailed)
	case len([]rune(req.Password)) < 8:
		return fmt.Errorf("%w: password must be at least 8 characters", apperrors.ErrValidationFailed)
	case len(req.Password) > maxPasswordBytes:
		return fmt.Errorf("%w: password must be at most %d bytes", apperrors.ErrValidationFailed, maxPasswordBytes)
	case isNumeric(req.Password):
		return fmt.Errorf("%w: password is entirely numeric", apperrors.ErrValidationFailed)
	case req.Password != req.PasswordConfirmation:
		return fmt.Errorf("%w: the two password fields didn't match", apperrors.ErrValidationFailed)
	}
	return nil
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// AuthenticateUser はユーザーを認証し、成功したらユーザーを返します。
func (s *UserService) AuthenticateUser(ctx context.Context, req models.UserLoginRequest) (*models.User, error) {
	foundUser, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := repositories.VerifyPassword(foundUser.PasswordHash, req.Password); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	foundUser.PasswordHash = "" // レスポンスにパスワードを含めない
	return foundUser, nil
}

// GetCurrentUser は現在のユーザーの情報を返します。
func (s *UserService) GetCurrentUser(ctx context.Context, current *models.CurrentUser) (*models.User, error) {
	if current == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	u, err := s.userRepo.FindByID(ctx, current.ID)
	if err != nil {
		// トークン発行後にユーザーが消えた場合は未認証として扱う
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUnauthenticated
		}
		return nil, err
	}
	u.PasswordHash = ""
	return u, nil
}
