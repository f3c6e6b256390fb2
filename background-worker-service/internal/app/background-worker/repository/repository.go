package repository

import (
	"context"

	"bookery/background-worker-service/internal/app/background-worker/entity"

	"github.com/google/uuid"
)

// EventArchiveRepository определяет методы архива событий отзывов
type EventArchiveRepository interface {
	// Archive сохраняет событие в архив
	Archive(ctx context.Context, event *entity.ArchivedReviewEvent) error
	// CountByBook возвращает количество архивированных событий книги
	CountByBook(ctx context.Context, bookID string) (int64, error)
}

// BookRatingRepository определяет методы сверки агрегатов рейтинга
type BookRatingRepository interface {
	// FindDrifted возвращает книги, у которых хранимый агрегат
	// расходится с фактическим по строкам reviews
	FindDrifted(ctx context.Context) ([]entity.AggregateDrift, error)
	// Repair записывает фактический агрегат книги
	Repair(ctx context.Context, bookID uuid.UUID, average float64, count int) error
}
