package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookery/background-worker-service/internal/app/background-worker/entity"
	"bookery/background-worker-service/internal/app/background-worker/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestProcessReviewEvent_Success(t *testing.T) {
	archiveRepo := new(mocks.MockEventArchiveRepository)
	service := NewEventArchiveService(archiveRepo)

	ctx := context.Background()
	occurred := time.Now().Add(-time.Second)
	event := &entity.ReviewEvent{
		EventType: entity.EventReviewCreated,
		ReviewID:  uuid.NewString(),
		BookID:    uuid.NewString(),
		UserID:    uuid.NewString(),
		Rating:    4,
		Timestamp: occurred,
	}

	archiveRepo.On("Archive", ctx, mock.MatchedBy(func(a *entity.ArchivedReviewEvent) bool {
		return a.ReviewID == event.ReviewID &&
			a.EventType == entity.EventReviewCreated &&
			a.Rating == 4 &&
			a.OccurredAt.Equal(occurred) &&
			a.Partition == 1 &&
			a.Offset == 42
	})).Return(nil)

	err := service.ProcessReviewEvent(ctx, event, 1, 42)

	assert.NoError(t, err)
	archiveRepo.AssertExpectations(t)
}

func TestProcessReviewEvent_AllKnownTypes(t *testing.T) {
	archiveRepo := new(mocks.MockEventArchiveRepository)
	service := NewEventArchiveService(archiveRepo)

	ctx := context.Background()
	archiveRepo.On("Archive", ctx, mock.Anything).Return(nil)

	for _, eventType := range []string{
		entity.EventReviewCreated,
		entity.EventReviewUpdated,
		entity.EventReviewDeleted,
	} {
		event := &entity.ReviewEvent{
			EventType: eventType,
			ReviewID:  uuid.NewString(),
			Timestamp: time.Now(),
		}
		assert.NoError(t, service.ProcessReviewEvent(ctx, event, 0, 0))
	}

	archiveRepo.AssertNumberOfCalls(t, "Archive", 3)
}

func TestProcessReviewEvent_UnknownTypeSkipped(t *testing.T) {
	archiveRepo := new(mocks.MockEventArchiveRepository)
	service := NewEventArchiveService(archiveRepo)

	ctx := context.Background()
	event := &entity.ReviewEvent{
		EventType: "SOMETHING_ELSE",
		ReviewID:  uuid.NewString(),
	}

	err := service.ProcessReviewEvent(ctx, event, 0, 0)

	// Неизвестный тип не ошибка, иначе consumer зациклится на сообщении
	assert.NoError(t, err)
	archiveRepo.AssertNotCalled(t, "Archive", mock.Anything, mock.Anything)
}

func TestProcessReviewEvent_ArchiveError(t *testing.T) {
	archiveRepo := new(mocks.MockEventArchiveRepository)
	service := NewEventArchiveService(archiveRepo)

	ctx := context.Background()
	event := &entity.ReviewEvent{
		EventType: entity.EventReviewUpdated,
		ReviewID:  uuid.NewString(),
	}

	archiveRepo.On("Archive", ctx, mock.Anything).Return(errors.New("mongo unavailable"))

	err := service.ProcessReviewEvent(ctx, event, 0, 0)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to archive event")
}
