package entity

import (
	"time"

	"github.com/google/uuid"
)

type CreateAuthorRequest struct {
	Name        string     `json:"name" validate:"required,min=2,max=255"`
	DateOfBirth *time.Time `json:"date_of_birth" validate:"omitempty"`
	Country     string     `json:"country" validate:"omitempty,max=255"`
}

type UpdateAuthorRequest struct {
	Name        string     `json:"name" validate:"omitempty,min=2,max=255"`
	DateOfBirth *time.Time `json:"date_of_birth" validate:"omitempty"`
	Country     string     `json:"country" validate:"omitempty,max=255"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Description string `json:"description" validate:"omitempty,max=255"`
}

type UpdateCategoryRequest struct {
	Name        string `json:"name" validate:"omitempty,min=2,max=255"`
	Description string `json:"description" validate:"omitempty,max=255"`
}

type CreateBookRequest struct {
	Name        string     `json:"name" validate:"required,min=1,max=255"`
	Description string     `json:"description" validate:"omitempty,max=255"`
	CategoryID  *uuid.UUID `json:"category_id" validate:"omitempty"`
	AuthorID    uuid.UUID  `json:"author_id" validate:"required"`
}

type UpdateBookRequest struct {
	Name        string     `json:"name" validate:"omitempty,min=1,max=255"`
	Description string     `json:"description" validate:"omitempty,max=255"`
	CategoryID  *uuid.UUID `json:"category_id" validate:"omitempty"`
	AuthorID    *uuid.UUID `json:"author_id" validate:"omitempty"`
}

// CreateReviewRequest - запрос на создание отзыва
// Оценка обязательна и лежит в [1,5]; ноль отклоняется как отсутствующее поле
type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"omitempty,max=255"`
}

// UpdateReviewRequest - запрос на обновление отзыва (только rating и comment)
type UpdateReviewRequest struct {
	Rating  int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment string `json:"comment" validate:"omitempty,max=255"`
}

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse - стандартный ответ об успехе
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ReviewListResponse struct {
	Reviews []Review `json:"reviews"`
	Total   int      `json:"total"`
}

type BookListResponse struct {
	Books []Book `json:"books"`
	Total int    `json:"total"`
}

type CategoryListResponse struct {
	Categories []Category `json:"categories"`
	Total      int        `json:"total"`
}

type AuthorListResponse struct {
	Authors []Author `json:"authors"`
	Total   int      `json:"total"`
}
