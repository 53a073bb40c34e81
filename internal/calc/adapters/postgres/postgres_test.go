package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocalc/internal/calc/adapters/postgres"
	"gocalc/internal/calc/domain/entities"
	"gocalc/internal/calc/domain/operations"
	"gocalc/internal/calc/domain/services"
	"gocalc/pkg/logger"
)

var errDatabaseConnection = errors.New("database connection error")

var (
	userCols  = []string{"id", "email", "username", "password_hash", "created_at", "updated_at"}
	calcCols  = []string{"id", "user_id", "a", "b", "type", "result", "created_at", "updated_at"}
	tokenCols = []string{"id", "user_id", "token", "expires_at", "created_at", "is_revoked"}
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	testLogger, err := logger.NewLogger(logger.Development, "debug")
	require.NoError(t, err)
	return logger.NewContext(context.Background(), testLogger)
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func TestRepositoryFactory(t *testing.T) {
	mock := newMock(t)
	factory := postgres.NewRepositoryFactory(mock)

	assert.Same(t, factory.UserRepository(), factory.UserRepository())
	assert.IsType(t, &postgres.TokenRepository{}, factory.TokenRepository())
	assert.IsType(t, &postgres.CalculationRepository{}, factory.CalculationRepository())

	mock.ExpectPing()
	require.NoError(t, factory.Ping(context.Background()))
}

func TestUserRepository_Create(t *testing.T) {
	ctx := testContext(t)
	now := time.Now().UTC().Truncate(time.Microsecond)
	input := &entities.User{Email: "calc@example.com", Username: "calcuser", PasswordHash: "hash"}

	tests := []struct {
		name        string
		dbErr       error
		expectedErr error
	}{
		{name: "created"},
		{
			name:        "duplicate email",
			dbErr:       &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"},
			expectedErr: entities.ErrEmailAlreadyExists,
		},
		{
			name:        "duplicate username",
			dbErr:       &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"},
			expectedErr: entities.ErrUsernameAlreadyExists,
		},
		{name: "database error", dbErr: errDatabaseConnection, expectedErr: errDatabaseConnection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			exp := mock.ExpectQuery("INSERT INTO users").WithArgs(input.Email, input.Username, input.PasswordHash)
			if tt.dbErr != nil {
				exp.WillReturnError(tt.dbErr)
			} else {
				exp.WillReturnRows(pgxmock.NewRows(userCols).
					AddRow("u1", input.Email, input.Username, input.PasswordHash, now, now))
			}

			user, err := postgres.NewUserRepository(mock).Create(ctx, input)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "u1", user.ID)
			assert.Equal(t, now, user.CreatedAt)
		})
	}
}

func TestUserRepository_Find(t *testing.T) {
	ctx := testContext(t)
	now := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("by username", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("SELECT id, email, username, password_hash, created_at, updated_at FROM users WHERE username").
			WithArgs("calcuser").
			WillReturnRows(pgxmock.NewRows(userCols).AddRow("u1", "calc@example.com", "calcuser", "hash", now, now))

		user, err := postgres.NewUserRepository(mock).FindByUsername(ctx, "calcuser")
		require.NoError(t, err)
		assert.Equal(t, "calc@example.com", user.Email)
	})

	t.Run("by email not found", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("FROM users WHERE email").WithArgs("none@example.com").WillReturnError(pgx.ErrNoRows)

		_, err := postgres.NewUserRepository(mock).FindByEmail(ctx, "none@example.com")
		require.ErrorIs(t, err, entities.ErrUserNotFound)
	})

	t.Run("by id database error", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("FROM users WHERE id").WithArgs("u1").WillReturnError(errDatabaseConnection)

		_, err := postgres.NewUserRepository(mock).FindByID(ctx, "u1")
		require.ErrorIs(t, err, errDatabaseConnection)
		assert.Contains(t, err.Error(), "error querying user by id")
	})
}

func TestUserRepository_Delete(t *testing.T) {
	ctx := testContext(t)

	t.Run("deleted", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec("DELETE FROM users").WithArgs("u1").WillReturnResult(pgxmock.NewResult("DELETE", 1))
		require.NoError(t, postgres.NewUserRepository(mock).Delete(ctx, "u1"))
	})

	t.Run("missing", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec("DELETE FROM users").WithArgs("u1").WillReturnResult(pgxmock.NewResult("DELETE", 0))
		require.ErrorIs(t, postgres.NewUserRepository(mock).Delete(ctx, "u1"), entities.ErrUserNotFound)
	})
}

func TestTokenRepository(t *testing.T) {
	ctx := testContext(t)
	now := time.Now().UTC().Truncate(time.Microsecond)
	token := &services.RefreshToken{UserID: "u1", Token: "rt", ExpiresAt: now.Add(time.Hour)}

	t.Run("store", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec("INSERT INTO refresh_tokens").
			WithArgs(token.UserID, token.Token, token.ExpiresAt, false).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		require.NoError(t, postgres.NewTokenRepository(mock).StoreRefreshToken(ctx, token))
	})

	t.Run("find", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("SELECT id, user_id, token, expires_at, created_at, is_revoked").
			WithArgs("rt").
			WillReturnRows(pgxmock.NewRows(tokenCols).AddRow("t1", "u1", "rt", token.ExpiresAt, now, true))

		found, err := postgres.NewTokenRepository(mock).FindByToken(ctx, "rt")
		require.NoError(t, err)
		assert.Equal(t, "t1", found.ID)
		assert.True(t, found.IsRevoked)
	})

	t.Run("find missing", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("FROM refresh_tokens").WithArgs("rt").WillReturnError(pgx.ErrNoRows)

		_, err := postgres.NewTokenRepository(mock).FindByToken(ctx, "rt")
		require.ErrorIs(t, err, services.ErrInvalidRefreshToken)
	})

	t.Run("revoke missing", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec("UPDATE refresh_tokens").WithArgs("rt").WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		require.ErrorIs(t, postgres.NewTokenRepository(mock).RevokeToken(ctx, "rt"), services.ErrInvalidRefreshToken)
	})

	t.Run("revoke all", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec("UPDATE refresh_tokens").WithArgs("u1").WillReturnResult(pgxmock.NewResult("UPDATE", 3))
		require.NoError(t, postgres.NewTokenRepository(mock).RevokeAllUserTokens(ctx, "u1"))
	})

	t.Run("cleanup error", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec("DELETE FROM refresh_tokens").WillReturnError(errDatabaseConnection)

		err := postgres.NewTokenRepository(mock).CleanupExpiredTokens(ctx)
		require.ErrorIs(t, err, errDatabaseConnection)
		assert.Contains(t, err.Error(), "error cleaning up expired tokens")
	})
}

func TestCalculationRepository_Create(t *testing.T) {
	ctx := testContext(t)
	now := time.Now().UTC().Truncate(time.Microsecond)
	owner := "u1"
	calc := &entities.Calculation{OwnerID: &owner, A: 6, B: 3, Kind: operations.Divide, Result: 2}

	t.Run("created", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("INSERT INTO calculations").
			WithArgs(&owner, 6.0, 3.0, "Divide", 2.0).
			WillReturnRows(pgxmock.NewRows(calcCols).AddRow("c1", &owner, 6.0, 3.0, "Divide", 2.0, now, now))

		created, err := postgres.NewCalculationRepository(mock).Create(ctx, calc)
		require.NoError(t, err)
		assert.Equal(t, "c1", created.ID)
		assert.Equal(t, operations.Divide, created.Kind)
		require.NotNil(t, created.OwnerID)
		assert.Equal(t, owner, *created.OwnerID)
	})

	t.Run("anonymous", func(t *testing.T) {
		mock := newMock(t)
		anon := &entities.Calculation{A: 1, B: 2, Kind: operations.Add, Result: 3}
		mock.ExpectQuery("INSERT INTO calculations").
			WithArgs((*string)(nil), 1.0, 2.0, "Add", 3.0).
			WillReturnRows(pgxmock.NewRows(calcCols).AddRow("c2", (*string)(nil), 1.0, 2.0, "Add", 3.0, now, now))

		created, err := postgres.NewCalculationRepository(mock).Create(ctx, anon)
		require.NoError(t, err)
		assert.Nil(t, created.OwnerID)
	})

	t.Run("owner vanished", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("INSERT INTO calculations").
			WithArgs(&owner, 6.0, 3.0, "Divide", 2.0).
			WillReturnError(&pgconn.PgError{Code: "23503"})

		_, err := postgres.NewCalculationRepository(mock).Create(ctx, calc)
		require.ErrorIs(t, err, entities.ErrOwnerNotFound)
	})
}

func TestCalculationRepository_FindUpdateDelete(t *testing.T) {
	ctx := testContext(t)
	now := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("find missing", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("FROM calculations WHERE id").WithArgs("c1").WillReturnError(pgx.ErrNoRows)

		_, err := postgres.NewCalculationRepository(mock).FindByID(ctx, "c1")
		require.ErrorIs(t, err, entities.ErrCalculationNotFound)
	})

	t.Run("update", func(t *testing.T) {
		mock := newMock(t)
		calc := &entities.Calculation{ID: "c1", A: 2, B: 5, Kind: operations.Multiply, Result: 10}
		mock.ExpectQuery("UPDATE calculations").
			WithArgs("c1", 2.0, 5.0, "Multiply", 10.0).
			WillReturnRows(pgxmock.NewRows(calcCols).
				AddRow("c1", (*string)(nil), 2.0, 5.0, "Multiply", 10.0, now, now.Add(time.Second)))

		updated, err := postgres.NewCalculationRepository(mock).Update(ctx, calc)
		require.NoError(t, err)
		assert.InDelta(t, 10.0, updated.Result, 0)
		assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))
	})

	t.Run("update missing", func(t *testing.T) {
		mock := newMock(t)
		calc := &entities.Calculation{ID: "c1", A: 1, B: 2, Kind: operations.Add, Result: 3}
		mock.ExpectQuery("UPDATE calculations").
			WithArgs(calc.ID, calc.A, calc.B, string(calc.Kind), calc.Result).
			WillReturnError(pgx.ErrNoRows)

		_, err := postgres.NewCalculationRepository(mock).Update(ctx, calc)
		require.ErrorIs(t, err, entities.ErrCalculationNotFound)
	})

	t.Run("update failure", func(t *testing.T) {
		mock := newMock(t)
		calc := &entities.Calculation{ID: "c1", A: 1, B: 2, Kind: operations.Add, Result: 3}
		mock.ExpectQuery("UPDATE calculations").
			WithArgs(calc.ID, calc.A, calc.B, string(calc.Kind), calc.Result).
			WillReturnError(errDatabaseConnection)

		_, err := postgres.NewCalculationRepository(mock).Update(ctx, calc)
		require.ErrorIs(t, err, errDatabaseConnection)
		assert.NotErrorIs(t, err, entities.ErrCalculationNotFound)
	})

	t.Run("delete missing", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec("DELETE FROM calculations").WithArgs("c1").WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err := postgres.NewCalculationRepository(mock).Delete(ctx, "c1")
		require.ErrorIs(t, err, entities.ErrCalculationNotFound)
	})
}

func TestCalculationRepository_List(t *testing.T) {
	ctx := testContext(t)
	now := time.Now().UTC().Truncate(time.Microsecond)
	owner := "u1"

	t.Run("owner page", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM calculations WHERE user_id = `).
			WithArgs(owner).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))
		mock.ExpectQuery("SELECT id, user_id, a, b, type, result, created_at, updated_at FROM calculations WHERE user_id = ").
			WithArgs(owner, 2, 1).
			WillReturnRows(pgxmock.NewRows(calcCols).
				AddRow("c2", &owner, 1.0, 1.0, "Add", 2.0, now, now).
				AddRow("c3", &owner, 3.0, 1.0, "Subtract", 2.0, now, now))

		items, total, err := postgres.NewCalculationRepository(mock).List(ctx, &owner, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, items, 2)
		assert.Equal(t, "c2", items[0].ID)
		assert.Equal(t, operations.Subtract, items[1].Kind)
	})

	t.Run("anonymous empty", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`COUNT\(\*\) FROM calculations WHERE user_id IS NULL`).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))
		mock.ExpectQuery("FROM calculations WHERE user_id IS NULL").
			WithArgs(100, 0).
			WillReturnRows(pgxmock.NewRows(calcCols))

		items, total, err := postgres.NewCalculationRepository(mock).List(ctx, nil, 0, 100)
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, items)
	})

	t.Run("count error", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("COUNT").WillReturnError(errDatabaseConnection)

		_, _, err := postgres.NewCalculationRepository(mock).List(ctx, nil, 0, 10)
		require.ErrorIs(t, err, errDatabaseConnection)
	})
}

func TestCalculationRepository_ListIDsByOwner(t *testing.T) {
	ctx := testContext(t)
	mock := newMock(t)
	mock.ExpectQuery("SELECT id FROM calculations WHERE user_id").
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("c1").AddRow("c2"))

	ids, err := postgres.NewCalculationRepository(mock).ListIDsByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, ids)
}

func TestMalformedIDIsNotFound(t *testing.T) {
	ctx := testContext(t)
	mock := newMock(t)
	mock.ExpectQuery("FROM calculations WHERE id").
		WithArgs("not-a-uuid").
		WillReturnError(&pgconn.PgError{Code: "22P02"})

	_, err := postgres.NewCalculationRepository(mock).FindByID(ctx, "not-a-uuid")
	require.ErrorIs(t, err, entities.ErrCalculationNotFound)
}
