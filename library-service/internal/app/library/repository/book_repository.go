package repository

import (
	"context"
	"errors"
	"fmt"

	"bookery/library-service/internal/app/library/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type bookRepository struct {
	db *pgxpool.Pool
}

// NewBookRepository создает новый репозиторий книг
func NewBookRepository(db *pgxpool.Pool) BookRepository {
	return &bookRepository{db: db}
}

// Create создает новую книгу
// Агрегат рейтинга у новой книги нулевой
func (r *bookRepository) Create(ctx context.Context, book *entity.Book) error {
	query := `
		INSERT INTO books (id, user_id, name, description, category_id, author_id, average_rating, rating_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, 0, $7)
	`

	_, err := r.db.Exec(ctx, query,
		book.ID, book.UserID, book.Name, book.Description, book.CategoryID, book.AuthorID, book.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}

	return nil
}

// GetByID получает книгу по ID
func (r *bookRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Book, error) {
	query := `
		SELECT id, user_id, name, description, category_id, author_id, average_rating, rating_count, created_at
		FROM books WHERE id = $1
	`

	var book entity.Book
	err := r.db.QueryRow(ctx, query, id).Scan(
		&book.ID,
		&book.UserID,
		&book.Name,
		&book.Description,
		&book.CategoryID,
		&book.AuthorID,
		&book.AverageRating,
		&book.RatingCount,
		&book.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book by id: %w", err)
	}

	return &book, nil
}

// GetAll получает книги с опциональными фильтрами по категории и автору
func (r *bookRepository) GetAll(ctx context.Context, categoryID, authorID *uuid.UUID) ([]entity.Book, error) {
	query := `
		SELECT id, user_id, name, description, category_id, author_id, average_rating, rating_count, created_at
		FROM books WHERE 1=1
	`
	args := []interface{}{}

	if categoryID != nil {
		args = append(args, *categoryID)
		query += fmt.Sprintf(" AND category_id = $%d", len(args))
	}
	if authorID != nil {
		args = append(args, *authorID)
		query += fmt.Sprintf(" AND author_id = $%d", len(args))
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get books: %w", err)
	}
	defer rows.Close()

	var books []entity.Book
	for rows.Next() {
		var book entity.Book
		if err := rows.Scan(
			&book.ID,
			&book.UserID,
			&book.Name,
			&book.Description,
			&book.CategoryID,
			&book.AuthorID,
			&book.AverageRating,
			&book.RatingCount,
			&book.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating books: %w", err)
	}

	return books, nil
}

// Update обновляет книгу
// Поля агрегата намеренно не трогаем - их меняют только транзакции отзывов
func (r *bookRepository) Update(ctx context.Context, book *entity.Book) error {
	query := `
		UPDATE books
		SET name = $1, description = $2, category_id = $3, author_id = $4
		WHERE id = $5
	`

	result, err := r.db.Exec(ctx, query,
		book.Name, book.Description, book.CategoryID, book.AuthorID, book.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrBookNotFound
	}

	return nil
}

// Delete удаляет книгу
// Отзывы книги удаляются каскадом на уровне БД
func (r *bookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM books WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrBookNotFound
	}

	return nil
}
