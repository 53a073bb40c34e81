// Package gormstore реализует порты хранилища поверх GORM (PostgreSQL или SQLite).
package gormstore

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"gocalc/internal/calc/domain/entities"
	"gocalc/internal/calc/domain/operations"
	"gocalc/internal/calc/domain/services"
)

// User - строка таблицы users.
type User struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Username     string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// RefreshToken - строка таблицы refresh_tokens.
type RefreshToken struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `gorm:"type:varchar(36);index;not null"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Token     string    `gorm:"type:text;uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	IsRevoked bool      `gorm:"not null;default:false"`
}

// Calculation - строка таблицы calculations. UserID == nil для анонимных вычислений.
type Calculation struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	UserID    *string   `gorm:"type:varchar(36);index:idx_calculations_owner"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	A         float64   `gorm:"not null"`
	B         float64   `gorm:"not null"`
	Type      string    `gorm:"type:varchar(64);not null"`
	Result    float64   `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;index:idx_calculations_owner"`
	UpdatedAt time.Time `gorm:"not null"`
}

// Models возвращает модели в порядке зависимостей для AutoMigrate.
func Models() []any {
	return []any{&User{}, &RefreshToken{}, &Calculation{}}
}

func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// BeforeCreate назначает UUID.
func (u *User) BeforeCreate(*gorm.DB) error {
	newID(&u.ID)
	return nil
}

// BeforeCreate назначает UUID.
func (t *RefreshToken) BeforeCreate(*gorm.DB) error {
	newID(&t.ID)
	return nil
}

// BeforeCreate назначает UUID.
func (c *Calculation) BeforeCreate(*gorm.DB) error {
	newID(&c.ID)
	return nil
}

func userFromEntity(u *entities.User) *User {
	return &User{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
	}
}

func (u *User) toEntity() *entities.User {
	return &entities.User{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (t *RefreshToken) toEntity() *services.RefreshToken {
	return &services.RefreshToken{
		ID:        t.ID,
		UserID:    t.UserID,
		Token:     t.Token,
		ExpiresAt: t.ExpiresAt,
		CreatedAt: t.CreatedAt,
		IsRevoked: t.IsRevoked,
	}
}

func calculationFromEntity(c *entities.Calculation) *Calculation {
	return &Calculation{
		ID:     c.ID,
		UserID: c.OwnerID,
		A:      c.A,
		B:      c.B,
		Type:   string(c.Kind),
		Result: c.Result,
	}
}

func (c *Calculation) toEntity() *entities.Calculation {
	return &entities.Calculation{
		ID:        c.ID,
		OwnerID:   c.UserID,
		A:         c.A,
		B:         c.B,
		Kind:      operations.Kind(c.Type),
		Result:    c.Result,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
