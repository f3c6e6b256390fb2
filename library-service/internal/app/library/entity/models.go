package entity

import (
	"time"

	"github.com/google/uuid"
)

// Author представляет автора книг
type Author struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserID      uuid.UUID  `json:"user_id" db:"user_id"` // Пользователь, создавший запись
	Name        string     `json:"name" db:"name"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty" db:"date_of_birth"`
	Country     string     `json:"country" db:"country"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// Category представляет категорию книг
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Book представляет книгу в каталоге
// AverageRating и RatingCount - агрегат отзывов; изменяется только
// транзакциями отзывов и рекончилером, никогда напрямую через CRUD книг
type Book struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	UserID        uuid.UUID  `json:"user_id" db:"user_id"` // Пользователь, создавший запись
	Name          string     `json:"name" db:"name"`
	Description   string     `json:"description" db:"description"`
	CategoryID    *uuid.UUID `json:"category_id,omitempty" db:"category_id"`
	AuthorID      uuid.UUID  `json:"author_id" db:"author_id"`
	AverageRating float64    `json:"average_rating" db:"average_rating"` // 0 пока нет отзывов
	RatingCount   int        `json:"rating_count" db:"rating_count"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

// Review представляет отзыв пользователя на книгу
// Инвариант: не более одного отзыва на пару (user, book),
// закреплён UNIQUE constraint в PostgreSQL
type Review struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	BookID    uuid.UUID `json:"book_id" db:"book_id"`
	Rating    int       `json:"rating" db:"rating"` // Оценка от 1 до 5
	Comment   string    `json:"comment,omitempty" db:"comment"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ReviewEvent представляет событие изменения отзыва для Kafka
type ReviewEvent struct {
	EventType string    `json:"event_type"` // REVIEW_CREATED, REVIEW_UPDATED, REVIEW_DELETED
	ReviewID  string    `json:"review_id"`
	BookID    string    `json:"book_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	EventReviewCreated = "REVIEW_CREATED"
	EventReviewUpdated = "REVIEW_UPDATED"
	EventReviewDeleted = "REVIEW_DELETED"
)
