package repository

import (
	"context"
	"fmt"

	"bookery/background-worker-service/internal/app/background-worker/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type bookRatingRepository struct {
	pool *pgxpool.Pool
}

// NewBookRatingRepository создает PostgreSQL репозиторий сверки агрегатов
// Работает с БД Library Service (таблицы books и reviews)
func NewBookRatingRepository(pool *pgxpool.Pool) BookRatingRepository {
	return &bookRatingRepository{pool: pool}
}

// FindDrifted возвращает книги с расхождением агрегата
// Инкрементальный путь в Library Service держит агрегат точным,
// запрос находит последствия ручных правок БД или пропущенных транзакций
func (r *bookRatingRepository) FindDrifted(ctx context.Context) ([]entity.AggregateDrift, error) {
	query := `
		SELECT b.id, b.average_rating, b.rating_count,
		       COALESCE(AVG(r.rating), 0) AS actual_average,
		       COUNT(r.id) AS actual_count
		FROM books b
		LEFT JOIN reviews r ON r.book_id = b.id
		GROUP BY b.id, b.average_rating, b.rating_count
		HAVING COUNT(r.id) <> b.rating_count
		    OR ABS(COALESCE(AVG(r.rating), 0) - b.average_rating) > 0.0001`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query drifted aggregates: %w", err)
	}
	defer rows.Close()

	var drifts []entity.AggregateDrift
	for rows.Next() {
		var d entity.AggregateDrift
		if err := rows.Scan(
			&d.BookID,
			&d.StoredAverage,
			&d.StoredCount,
			&d.ActualAverage,
			&d.ActualCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan drifted aggregate: %w", err)
		}
		drifts = append(drifts, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate drifted aggregates: %w", err)
	}

	return drifts, nil
}

// Repair записывает фактический агрегат книги
func (r *bookRatingRepository) Repair(ctx context.Context, bookID uuid.UUID, average float64, count int) error {
	query := `UPDATE books SET average_rating = $2, rating_count = $3 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, bookID, average, count)
	if err != nil {
		return fmt.Errorf("failed to repair book aggregate: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("book %s not found for aggregate repair", bookID)
	}

	return nil
}
