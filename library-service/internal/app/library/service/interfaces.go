package service

import (
	"context"

	"bookery/library-service/internal/app/library/entity"

	"github.com/google/uuid"
)

type ReviewServiceInterface interface {
	SubmitReview(ctx context.Context, userID, bookID uuid.UUID, req *entity.CreateReviewRequest) (*entity.Review, error)
	GetReviewsByBook(ctx context.Context, bookID uuid.UUID) ([]entity.Review, error)
	GetReview(ctx context.Context, reviewID uuid.UUID) (*entity.Review, error)
	UpdateReview(ctx context.Context, reviewID, callerID uuid.UUID, req *entity.UpdateReviewRequest) (*entity.Review, error)
	DeleteReview(ctx context.Context, reviewID, callerID uuid.UUID) error
	GetUserReviews(ctx context.Context, userID uuid.UUID) ([]entity.Review, error)
}

type CatalogServiceInterface interface {
	CreateAuthor(ctx context.Context, userID uuid.UUID, req *entity.CreateAuthorRequest) (*entity.Author, error)
	GetAuthor(ctx context.Context, id uuid.UUID) (*entity.Author, error)
	GetAllAuthors(ctx context.Context) ([]entity.Author, error)
	UpdateAuthor(ctx context.Context, id uuid.UUID, req *entity.UpdateAuthorRequest) (*entity.Author, error)
	DeleteAuthor(ctx context.Context, id uuid.UUID) error

	CreateCategory(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	GetAllCategories(ctx context.Context) ([]entity.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req *entity.UpdateCategoryRequest) (*entity.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	CreateBook(ctx context.Context, userID uuid.UUID, req *entity.CreateBookRequest) (*entity.Book, error)
	GetBook(ctx context.Context, id uuid.UUID) (*entity.Book, error)
	GetAllBooks(ctx context.Context, categoryID, authorID *uuid.UUID) ([]entity.Book, error)
	UpdateBook(ctx context.Context, id uuid.UUID, req *entity.UpdateBookRequest) (*entity.Book, error)
	DeleteBook(ctx context.Context, id uuid.UUID) error
}
