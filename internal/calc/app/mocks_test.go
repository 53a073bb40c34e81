package app_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"gocalc/internal/calc/domain/entities"
	"gocalc/internal/calc/domain/services"
	"gocalc/internal/calc/ports/events"
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) user(args mock.Arguments) (*entities.User, error) {
	if u, ok := args.Get(0).(*entities.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	return m.user(m.Called(ctx, user))
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	return m.user(m.Called(ctx, email))
}

func (m *mockUserRepository) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	return m.user(m.Called(ctx, username))
}

func (m *mockUserRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockTokenRepository struct {
	mock.Mock
}

func (m *mockTokenRepository) StoreRefreshToken(ctx context.Context, token *services.RefreshToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockTokenRepository) FindByToken(ctx context.Context, token string) (*services.RefreshToken, error) {
	args := m.Called(ctx, token)
	if t, ok := args.Get(0).(*services.RefreshToken); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTokenRepository) RevokeToken(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockTokenRepository) RevokeAllUserTokens(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockTokenRepository) CleanupExpiredTokens(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockPasswordService struct {
	mock.Mock
}

func (m *mockPasswordService) Hash(ctx context.Context, password string) (string, error) {
	args := m.Called(ctx, password)
	return args.String(0), args.Error(1)
}

func (m *mockPasswordService) Verify(ctx context.Context, password, hash string) (bool, error) {
	args := m.Called(ctx, password, hash)
	return args.Bool(0), args.Error(1)
}

type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) GenerateAccessToken(ctx context.Context, userID, username string) (string, time.Time, error) {
	args := m.Called(ctx, userID, username)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *mockTokenService) GenerateRefreshToken(ctx context.Context, userID string) (string, time.Time, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *mockTokenService) ValidateAccessToken(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

type mockCalculationRepository struct {
	mock.Mock
}

func (m *mockCalculationRepository) calc(args mock.Arguments) (*entities.Calculation, error) {
	if c, ok := args.Get(0).(*entities.Calculation); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCalculationRepository) Create(ctx context.Context, calc *entities.Calculation) (*entities.Calculation, error) {
	return m.calc(m.Called(ctx, calc))
}

func (m *mockCalculationRepository) FindByID(ctx context.Context, id string) (*entities.Calculation, error) {
	return m.calc(m.Called(ctx, id))
}

func (m *mockCalculationRepository) List(ctx context.Context, ownerID *string, offset, limit int) ([]*entities.Calculation, int, error) {
	args := m.Called(ctx, ownerID, offset, limit)
	items, _ := args.Get(0).([]*entities.Calculation)
	return items, args.Int(1), args.Error(2)
}

func (m *mockCalculationRepository) Update(ctx context.Context, calc *entities.Calculation) (*entities.Calculation, error) {
	return m.calc(m.Called(ctx, calc))
}

func (m *mockCalculationRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCalculationRepository) ListIDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	args := m.Called(ctx, ownerID)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *mockCache) Delete(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

func (m *mockCache) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockCache) Close() error {
	return m.Called().Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event events.CalculationEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockPublisher) Close() error {
	return m.Called().Error(0)
}

func strPtr(s string) *string { return &s }
