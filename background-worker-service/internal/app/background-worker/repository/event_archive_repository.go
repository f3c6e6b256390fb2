package repository

import (
	"context"
	"fmt"

	"bookery/background-worker-service/internal/app/background-worker/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type eventArchiveRepository struct {
	collection *mongo.Collection
}

// NewEventArchiveRepository создает MongoDB репозиторий архива событий отзывов
func NewEventArchiveRepository(collection *mongo.Collection) EventArchiveRepository {
	return &eventArchiveRepository{collection: collection}
}

// Archive сохраняет событие в коллекцию архива
func (r *eventArchiveRepository) Archive(ctx context.Context, event *entity.ArchivedReviewEvent) error {
	if _, err := r.collection.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to archive review event: %w", err)
	}

	return nil
}

// CountByBook возвращает количество архивированных событий книги
func (r *eventArchiveRepository) CountByBook(ctx context.Context, bookID string) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"book_id": bookID})
	if err != nil {
		return 0, fmt.Errorf("failed to count archived events: %w", err)
	}

	return count, nil
}
