package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookery/library-service/internal/app/library/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// txTimeout ограничивает время удержания блокировки книги.
// По истечении вызывающему возвращается ErrTxTimeout (повторяемый 409).
const txTimeout = 5 * time.Second

type reviewRepository struct {
	db *pgxpool.Pool
}

// NewReviewRepository создает новый репозиторий отзывов
func NewReviewRepository(db *pgxpool.Pool) ReviewRepository {
	return &reviewRepository{db: db}
}

// Submit создает отзыв и обновляет агрегат книги в одной транзакции.
// Порядок внутри транзакции:
//  1. SELECT ... FOR UPDATE строки книги - блокировка держится от проверки
//     до записи, конкурентные отправки по той же книге сериализуются
//  2. INSERT отзыва - UNIQUE(user_id, book_id) закрывает гонку между
//     проверкой существования и вставкой
//  3. UPDATE агрегата: new_avg = (avg*count + rating) / (count + 1)
//
// Либо фиксируются обе записи, либо ни одна.
func (r *reviewRepository) Submit(ctx context.Context, review *entity.Review) error {
	ctx, cancel := context.WithTimeout(ctx, txTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var avg float64
	var count int
	err = tx.QueryRow(ctx,
		`SELECT average_rating, rating_count FROM books WHERE id = $1 FOR UPDATE`,
		review.BookID,
	).Scan(&avg, &count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrBookNotFound
		}
		return r.wrapTxErr(ctx, "failed to lock book row", err)
	}

	now := time.Now()
	review.CreatedAt = now
	review.UpdatedAt = now

	_, err = tx.Exec(ctx,
		`INSERT INTO reviews (id, user_id, book_id, rating, comment, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		review.ID, review.UserID, review.BookID, review.Rating, review.Comment, review.CreatedAt, review.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return ErrDuplicateReview
		}
		return r.wrapTxErr(ctx, "failed to insert review", err)
	}

	newAvg := (avg*float64(count) + float64(review.Rating)) / float64(count+1)

	_, err = tx.Exec(ctx,
		`UPDATE books SET average_rating = $1, rating_count = $2 WHERE id = $3`,
		newAvg, count+1, review.BookID,
	)
	if err != nil {
		return r.wrapTxErr(ctx, "failed to update book aggregate", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return r.wrapTxErr(ctx, "failed to commit review", err)
	}

	return nil
}

// GetByID получает отзыв по ID
func (r *reviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	query := `
		SELECT id, user_id, book_id, rating, comment, created_at, updated_at
		FROM reviews WHERE id = $1
	`

	var review entity.Review
	var comment *string
	err := r.db.QueryRow(ctx, query, id).Scan(
		&review.ID,
		&review.UserID,
		&review.BookID,
		&review.Rating,
		&comment,
		&review.CreatedAt,
		&review.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	if comment != nil {
		review.Comment = *comment
	}

	return &review, nil
}

// GetByBookID получает все отзывы книги в порядке создания
func (r *reviewRepository) GetByBookID(ctx context.Context, bookID uuid.UUID) ([]entity.Review, error) {
	query := `
		SELECT id, user_id, book_id, rating, comment, created_at, updated_at
		FROM reviews WHERE book_id = $1
		ORDER BY created_at ASC, id ASC
	`
	return r.queryReviews(ctx, query, bookID)
}

// GetByUserID получает все отзывы пользователя в порядке создания
func (r *reviewRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]entity.Review, error) {
	query := `
		SELECT id, user_id, book_id, rating, comment, created_at, updated_at
		FROM reviews WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`
	return r.queryReviews(ctx, query, userID)
}

// Update обновляет отзыв; при смене оценки агрегат книги пересчитывается
// в той же транзакции: new_avg = (avg*count - old + new) / count.
// Блокировка книги берется первой - тот же порядок, что и в Submit/Delete,
// иначе возможен deadlock между конкурентными транзакциями.
func (r *reviewRepository) Update(ctx context.Context, review *entity.Review, oldRating int) error {
	ctx, cancel := context.WithTimeout(ctx, txTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if review.Rating != oldRating {
		var avg float64
		var count int
		err = tx.QueryRow(ctx,
			`SELECT average_rating, rating_count FROM books WHERE id = $1 FOR UPDATE`,
			review.BookID,
		).Scan(&avg, &count)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrBookNotFound
			}
			return r.wrapTxErr(ctx, "failed to lock book row", err)
		}

		if count > 0 {
			newAvg := (avg*float64(count) - float64(oldRating) + float64(review.Rating)) / float64(count)
			_, err = tx.Exec(ctx,
				`UPDATE books SET average_rating = $1 WHERE id = $2`,
				newAvg, review.BookID,
			)
			if err != nil {
				return r.wrapTxErr(ctx, "failed to update book aggregate", err)
			}
		}
	}

	review.UpdatedAt = time.Now()

	result, err := tx.Exec(ctx,
		`UPDATE reviews SET rating = $1, comment = $2, updated_at = $3 WHERE id = $4`,
		review.Rating, review.Comment, review.UpdatedAt, review.ID,
	)
	if err != nil {
		return r.wrapTxErr(ctx, "failed to update review", err)
	}
	if result.RowsAffected() == 0 {
		return ErrReviewNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return r.wrapTxErr(ctx, "failed to commit review update", err)
	}

	return nil
}

// Delete удаляет отзыв и вычитает его оценку из агрегата книги
// в одной транзакции; у последнего отзыва агрегат обнуляется.
func (r *reviewRepository) Delete(ctx context.Context, review *entity.Review) error {
	ctx, cancel := context.WithTimeout(ctx, txTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var avg float64
	var count int
	err = tx.QueryRow(ctx,
		`SELECT average_rating, rating_count FROM books WHERE id = $1 FOR UPDATE`,
		review.BookID,
	).Scan(&avg, &count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrBookNotFound
		}
		return r.wrapTxErr(ctx, "failed to lock book row", err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, review.ID)
	if err != nil {
		return r.wrapTxErr(ctx, "failed to delete review", err)
	}
	if result.RowsAffected() == 0 {
		return ErrReviewNotFound
	}

	newCount := count - 1
	newAvg := 0.0
	if newCount > 0 {
		newAvg = (avg*float64(count) - float64(review.Rating)) / float64(newCount)
	}

	_, err = tx.Exec(ctx,
		`UPDATE books SET average_rating = $1, rating_count = $2 WHERE id = $3`,
		newAvg, newCount, review.BookID,
	)
	if err != nil {
		return r.wrapTxErr(ctx, "failed to update book aggregate", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return r.wrapTxErr(ctx, "failed to commit review delete", err)
	}

	return nil
}

func (r *reviewRepository) queryReviews(ctx context.Context, query string, arg interface{}) ([]entity.Review, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to find reviews: %w", err)
	}
	defer rows.Close()

	var reviews []entity.Review
	for rows.Next() {
		var review entity.Review
		var comment *string
		if err := rows.Scan(
			&review.ID,
			&review.UserID,
			&review.BookID,
			&review.Rating,
			&comment,
			&review.CreatedAt,
			&review.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		if comment != nil {
			review.Comment = *comment
		}
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}

	return reviews, nil
}

// wrapTxErr различает истечение таймаута транзакции и прочие ошибки БД
func (r *reviewRepository) wrapTxErr(ctx context.Context, msg string, err error) error {
	if ctx.Err() != nil {
		return ErrTxTimeout
	}
	return fmt.Errorf("%s: %w", msg, err)
}
