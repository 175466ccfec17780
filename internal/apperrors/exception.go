// Package apperrors はアプリケーション全体で使うエラーとHTTPステータスの対応を定義します。
package apperrors

import (
	"errors"
	"net/http"
)

// Exception はHTTPステータスコードを持つアプリケーションエラーです。
// 値そのものをセンチネルとして使い、詳細は fmt.Errorf("%w: ...") でラップします。
type Exception struct {
	Message    string
	StatusCode int
}

func (e *Exception) Error() string {
	return e.Message
}

var (
	// ErrUnauthenticated は現在のユーザーが存在しない場合のエラーです。
	ErrUnauthenticated = &Exception{
		Message:    "authentication required",
		StatusCode: http.StatusUnauthorized,
	}

	// ErrTaskNotFound はタスクが存在しない、または他人のタスクである場合のエラーです。
	// 存在を漏らさないため、両者を区別しません。
	ErrTaskNotFound = &Exception{
		Message:    "task not found",
		StatusCode: http.StatusNotFound,
	}

	// ErrValidationFailed は入力値が不正な場合のエラーです。
	ErrValidationFailed = &Exception{
		Message:    "validation failed",
		StatusCode: http.StatusBadRequest,
	}

	ErrDuplicateUser = &Exception{
		Message:    "username already exists",
		StatusCode: http.StatusConflict,
	}

	ErrUserNotFound = &Exception{
		Message:    "user not found",
		StatusCode: http.StatusNotFound,
	}

	ErrInvalidCredentials = &Exception{
		Message:    "invalid credentials",
		StatusCode: http.StatusUnauthorized,
	}

	// ErrTokenRevoked はログアウト済みのトークンが提示された場合のエラーです。
	ErrTokenRevoked = &Exception{
		Message:    "token has been revoked",
		StatusCode: http.StatusUnauthorized,
	}
)

// StatusCode はエラーに対応するHTTPステータスコードを返します。
// Exception を含まないエラーは500として扱います。
func StatusCode(err error) int {
	var appErr *Exception
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
