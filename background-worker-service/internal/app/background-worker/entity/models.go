package entity

import (
	"time"

	"github.com/google/uuid"
)

// Типы событий отзывов из топика review_events
const (
	EventReviewCreated = "REVIEW_CREATED"
	EventReviewUpdated = "REVIEW_UPDATED"
	EventReviewDeleted = "REVIEW_DELETED"
)

// ReviewEvent представляет событие изменения отзыва из Kafka
// Формат совпадает с producer'ом Library Service
type ReviewEvent struct {
	EventType string    `json:"event_type"`
	ReviewID  string    `json:"review_id"`
	BookID    string    `json:"book_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Timestamp time.Time `json:"timestamp"`
}

// ArchivedReviewEvent - документ архива событий в MongoDB
// Хранит полную историю изменений отзывов для аудита
type ArchivedReviewEvent struct {
	EventType  string    `bson:"event_type"`
	ReviewID   string    `bson:"review_id"`
	BookID     string    `bson:"book_id"`
	UserID     string    `bson:"user_id"`
	Rating     int       `bson:"rating"`
	OccurredAt time.Time `bson:"occurred_at"`
	ArchivedAt time.Time `bson:"archived_at"`
	Partition  int       `bson:"partition"`
	Offset     int64     `bson:"offset"`
}

// AggregateDrift - расхождение между хранимым и фактическим агрегатом книги
// Фактические значения пересчитываются из строк reviews
type AggregateDrift struct {
	BookID        uuid.UUID
	StoredAverage float64
	StoredCount   int
	ActualAverage float64
	ActualCount   int
}
