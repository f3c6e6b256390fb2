package service

import (
	"context"

	"bookery/background-worker-service/internal/app/background-worker/entity"
)

// EventArchiveServiceInterface определяет интерфейс обработки событий отзывов
type EventArchiveServiceInterface interface {
	// ProcessReviewEvent архивирует событие отзыва из Kafka
	ProcessReviewEvent(ctx context.Context, event *entity.ReviewEvent, partition int, offset int64) error
}

// ReconciliationServiceInterface определяет интерфейс сверки агрегатов
type ReconciliationServiceInterface interface {
	// ReconcileRatings пересчитывает и чинит агрегаты рейтинга книг
	ReconcileRatings(ctx context.Context) (int, error)
}
