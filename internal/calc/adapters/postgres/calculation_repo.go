package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"gocalc/internal/calc/domain/entities"
	"gocalc/internal/calc/domain/operations"
	"gocalc/internal/calc/ports/repositories"
	"gocalc/pkg/logger"
)

const calculationColumns = "id, user_id, a, b, type, result, created_at, updated_at"

// CalculationRepository реализует интерфейс repositories.CalculationRepository для работы с Postgres.
type CalculationRepository struct {
	pool PgxPoolInterface
}

// NewCalculationRepository создает новый экземпляр репозитория вычислений.
func NewCalculationRepository(pool PgxPoolInterface) repositories.CalculationRepository {
	return &CalculationRepository{pool: pool}
}

func scanCalculation(row pgx.Row) (*entities.Calculation, error) {
	var (
		calc entities.Calculation
		kind string
	)
	err := row.Scan(
		&calc.ID,
		&calc.OwnerID,
		&calc.A,
		&calc.B,
		&kind,
		&calc.Result,
		&calc.CreatedAt,
		&calc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	calc.Kind = operations.Kind(kind)
	return &calc, nil
}

// Create сохраняет вычисление.
func (r *CalculationRepository) Create(ctx context.Context, calc *entities.Calculation) (*entities.Calculation, error) {
	log := logger.Log(ctx).With(zap.String("repository", "calculation"), zap.String("method", "Create"))

	query := `
        INSERT INTO calculations (user_id, a, b, type, result)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + calculationColumns

	created, err := scanCalculation(r.pool.QueryRow(ctx, query,
		calc.OwnerID,
		calc.A,
		calc.B,
		string(calc.Kind),
		calc.Result,
	))
	if err != nil {
		if pgErr, ok := pgError(err); ok && pgErr.Code == pgCodeForeignKeyViolation {
			log.Debug(ctx, "owner not found")
			return nil, entities.ErrOwnerNotFound
		}
		log.Error(ctx, "error creating calculation", zap.Error(err))
		return nil, fmt.Errorf("error creating calculation: %w", err)
	}

	return created, nil
}

// FindByID находит вычисление по ID.
func (r *CalculationRepository) FindByID(ctx context.Context, id string) (*entities.Calculation, error) {
	log := logger.Log(ctx).With(zap.String("repository", "calculation"), zap.String("method", "FindByID"))

	query := `SELECT ` + calculationColumns + ` FROM calculations WHERE id = $1`

	calc, err := scanCalculation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if notFound(err) {
			log.Debug(ctx, "calculation not found", zap.String("id", id))
			return nil, entities.ErrCalculationNotFound
		}
		log.Error(ctx, "error finding calculation", zap.Error(err))
		return nil, fmt.Errorf("error querying calculation by id: %w", err)
	}

	return calc, nil
}

// List возвращает страницу вычислений владельца в порядке создания и их общее количество.
func (r *CalculationRepository) List(
	ctx context.Context,
	ownerID *string,
	offset, limit int,
) ([]*entities.Calculation, int, error) {
	log := logger.Log(ctx).With(zap.String("repository", "calculation"), zap.String("method", "List"))

	where := `user_id IS NULL`
	args := []any{}
	if ownerID != nil {
		where = `user_id = $1`
		args = append(args, *ownerID)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM calculations WHERE `+where, args...).Scan(&total); err != nil {
		log.Error(ctx, "error counting calculations", zap.Error(err))
		return nil, 0, fmt.Errorf("error counting calculations: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM calculations WHERE %s ORDER BY created_at, id LIMIT $%d OFFSET $%d`,
		calculationColumns, where, len(args)+1, len(args)+2)

	rows, err := r.pool.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		log.Error(ctx, "error listing calculations", zap.Error(err))
		return nil, 0, fmt.Errorf("error listing calculations: %w", err)
	}
	defer rows.Close()

	items := make([]*entities.Calculation, 0, limit)
	for rows.Next() {
		calc, err := scanCalculation(rows)
		if err != nil {
			log.Error(ctx, "error scanning calculation row", zap.Error(err))
			return nil, 0, fmt.Errorf("error scanning calculation row: %w", err)
		}
		items = append(items, calc)
	}

	if err = rows.Err(); err != nil {
		log.Error(ctx, "error iterating calculation rows", zap.Error(err))
		return nil, 0, fmt.Errorf("error iterating calculation rows: %w", err)
	}

	return items, int(total), nil
}

// Update сохраняет новые операнды, вид операции и результат.
func (r *CalculationRepository) Update(ctx context.Context, calc *entities.Calculation) (*entities.Calculation, error) {
	log := logger.Log(ctx).With(zap.String("repository", "calculation"), zap.String("method", "Update"))

	query := `
        UPDATE calculations
        SET a = $2, b = $3, type = $4, result = $5, updated_at = NOW()
        WHERE id = $1
        RETURNING ` + calculationColumns

	updated, err := scanCalculation(r.pool.QueryRow(ctx, query,
		calc.ID,
		calc.A,
		calc.B,
		string(calc.Kind),
		calc.Result,
	))
	if err != nil {
		if notFound(err) {
			log.Debug(ctx, "calculation not found for update", zap.String("id", calc.ID))
			return nil, entities.ErrCalculationNotFound
		}
		log.Error(ctx, "error updating calculation", zap.Error(err))
		return nil, fmt.Errorf("error updating calculation: %w", err)
	}

	return updated, nil
}

// Delete удаляет вычисление по ID.
func (r *CalculationRepository) Delete(ctx context.Context, id string) error {
	log := logger.Log(ctx).With(zap.String("repository", "calculation"), zap.String("method", "Delete"))

	result, err := r.pool.Exec(ctx, `DELETE FROM calculations WHERE id = $1`, id)
	if err != nil {
		log.Error(ctx, "error deleting calculation", zap.Error(err))
		return fmt.Errorf("error deleting calculation: %w", err)
	}

	if result.RowsAffected() == 0 {
		log.Debug(ctx, "calculation not found for deletion", zap.String("id", id))
		return entities.ErrCalculationNotFound
	}

	return nil
}

// ListIDsByOwner возвращает ID всех вычислений пользователя.
func (r *CalculationRepository) ListIDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	log := logger.Log(ctx).With(zap.String("repository", "calculation"), zap.String("method", "ListIDsByOwner"))

	rows, err := r.pool.Query(ctx, `SELECT id FROM calculations WHERE user_id = $1`, ownerID)
	if err != nil {
		log.Error(ctx, "error listing calculation ids", zap.Error(err))
		return nil, fmt.Errorf("error listing calculation ids: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		log.Error(ctx, "error collecting calculation ids", zap.Error(err))
		return nil, fmt.Errorf("error collecting calculation ids: %w", err)
	}

	return ids, nil
}
