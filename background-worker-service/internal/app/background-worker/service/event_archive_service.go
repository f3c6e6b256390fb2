package service

import (
	"context"
	"fmt"
	"time"

	"bookery/background-worker-service/internal/app/background-worker/entity"
	"bookery/background-worker-service/internal/app/background-worker/repository"
	"bookery/pkg/logger"
	"bookery/pkg/metrics"
)

// EventArchiveService архивирует события отзывов в MongoDB
type EventArchiveService struct {
	archiveRepo repository.EventArchiveRepository
}

// NewEventArchiveService создает новый сервис архива событий
func NewEventArchiveService(archiveRepo repository.EventArchiveRepository) *EventArchiveService {
	return &EventArchiveService{archiveRepo: archiveRepo}
}

// ProcessReviewEvent архивирует событие отзыва из Kafka
// Неизвестные типы событий пропускаются без ошибки, чтобы не блокировать топик
func (s *EventArchiveService) ProcessReviewEvent(ctx context.Context, event *entity.ReviewEvent, partition int, offset int64) error {
	switch event.EventType {
	case entity.EventReviewCreated, entity.EventReviewUpdated, entity.EventReviewDeleted:
	default:
		logger.Warn().
			Str("event_type", event.EventType).
			Str("review_id", event.ReviewID).
			Msg("Unknown review event type, skipping")
		return nil
	}

	archived := &entity.ArchivedReviewEvent{
		EventType:  event.EventType,
		ReviewID:   event.ReviewID,
		BookID:     event.BookID,
		UserID:     event.UserID,
		Rating:     event.Rating,
		OccurredAt: event.Timestamp,
		ArchivedAt: time.Now(),
		Partition:  partition,
		Offset:     offset,
	}

	if err := s.archiveRepo.Archive(ctx, archived); err != nil {
		metrics.WorkerEventsArchived.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to archive event %s for review %s: %w", event.EventType, event.ReviewID, err)
	}

	metrics.WorkerEventsArchived.WithLabelValues("success").Inc()
	logger.Info().
		Str("event_type", event.EventType).
		Str("review_id", event.ReviewID).
		Str("book_id", event.BookID).
		Msg("Review event archived")

	return nil
}
