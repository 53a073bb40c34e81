// Package entities содержит сущности сервиса вычислений.
package entities

import (
	"errors"
	"time"
)

// Ошибки домена пользователя.
var (
	ErrEmptyUserID           = errors.New("user ID cannot be empty")
	ErrInvalidEmail          = errors.New("invalid email format")
	ErrEmptyUsername         = errors.New("username cannot be empty")
	ErrInvalidUsername       = errors.New("username must be between 3 and 50 characters")
	ErrPasswordTooShort      = errors.New("password must be at least 8 characters")
	ErrPasswordTooWeak       = errors.New("password must contain at least one letter and one digit")
	ErrUserNotFound          = errors.New("user not found")
	ErrEmailAlreadyExists    = errors.New("email already registered")
	ErrUsernameAlreadyExists = errors.New("username already taken")
)

// Ограничения на имя пользователя.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 50
)

// User - владелец вычислений. Пароль хранится только в виде хэша.
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
