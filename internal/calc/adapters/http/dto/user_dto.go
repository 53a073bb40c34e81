package dto

import (
	"time"

	"gocalc/internal/calc/domain/entities"
	"gocalc/internal/calc/domain/services"
)

// RegisterRequest представляет запрос на регистрацию.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest представляет запрос на вход.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest представляет запрос на обновление токенов или выход.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// UserResponse представляет профиль пользователя без хэша пароля.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUserResponse создает ответ из сущности.
func NewUserResponse(u *entities.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// TokenResponse представляет пару токенов.
type TokenResponse struct {
	Message      string    `json:"message,omitempty"`
	UserID       string    `json:"user_id"`
	Username     string    `json:"username,omitempty"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// NewTokenResponse создает ответ из пары токенов.
func NewTokenResponse(p *services.TokenPair, message string) TokenResponse {
	return TokenResponse{
		Message:      message,
		UserID:       p.UserID,
		Username:     p.Username,
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    p.ExpiresAt,
	}
}
