package repository

import (
	"context"
	"errors"

	"bookery/library-service/internal/app/library/entity"

	"github.com/google/uuid"
)

var (
	// Стандартные ошибки репозитория для обработки в service layer
	ErrAuthorNotFound   = errors.New("author not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrBookNotFound     = errors.New("book not found")
	ErrReviewNotFound   = errors.New("review not found")
	// ErrDuplicateReview - нарушение UNIQUE(user_id, book_id)
	ErrDuplicateReview = errors.New("review already exists for this user and book")
	// ErrTxTimeout - транзакция не уложилась в таймаут, запрос можно повторить
	ErrTxTimeout = errors.New("transaction timed out")
)

type AuthorRepository interface {
	Create(ctx context.Context, author *entity.Author) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Author, error)
	GetAll(ctx context.Context) ([]entity.Author, error)
	Update(ctx context.Context, author *entity.Author) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	GetAll(ctx context.Context) ([]entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type BookRepository interface {
	Create(ctx context.Context, book *entity.Book) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Book, error)
	GetAll(ctx context.Context, categoryID, authorID *uuid.UUID) ([]entity.Book, error)
	Update(ctx context.Context, book *entity.Book) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ReviewRepository определяет методы для работы с отзывами в PostgreSQL.
// Submit, Update и Delete выполняются как одна транзакция вместе с
// обновлением агрегата книги (average_rating, rating_count).
type ReviewRepository interface {
	Submit(ctx context.Context, review *entity.Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Review, error)
	GetByBookID(ctx context.Context, bookID uuid.UUID) ([]entity.Review, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]entity.Review, error)
	Update(ctx context.Context, review *entity.Review, oldRating int) error
	Delete(ctx context.Context, review *entity.Review) error
}
