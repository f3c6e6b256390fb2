package processor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"bookery/background-worker-service/internal/app/background-worker/entity"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockEventArchiveService мок для EventArchiveServiceInterface
type MockEventArchiveService struct {
	mock.Mock
}

func (m *MockEventArchiveService) ProcessReviewEvent(ctx context.Context, event *entity.ReviewEvent, partition int, offset int64) error {
	args := m.Called(ctx, event, partition, offset)
	return args.Error(0)
}

func TestNewKafkaConsumer(t *testing.T) {
	archiveSvc := new(MockEventArchiveService)

	consumer := NewKafkaConsumer([]string{"localhost:9092"}, "review_events", "test-group", 1, 10e6, archiveSvc)

	assert.NotNil(t, consumer)
	assert.NotNil(t, consumer.reader)
	assert.NotNil(t, consumer.archiveSvc)
	assert.NotNil(t, consumer.stopChan)
	assert.NotNil(t, consumer.doneChan)

	consumer.reader.Close()
}

func TestKafkaConsumer_ProcessMessage_Success(t *testing.T) {
	archiveSvc := new(MockEventArchiveService)
	consumer := &KafkaConsumer{
		archiveSvc: archiveSvc,
		topic:      "review_events",
		groupID:    "test-group",
	}

	ctx := context.Background()
	reviewID := uuid.NewString()

	event := entity.ReviewEvent{
		EventType: entity.EventReviewCreated,
		ReviewID:  reviewID,
		BookID:    uuid.NewString(),
		UserID:    uuid.NewString(),
		Rating:    5,
		Timestamp: time.Now(),
	}
	eventJSON, _ := json.Marshal(event)

	message := kafka.Message{
		Topic:     "review_events",
		Partition: 2,
		Offset:    41,
		Key:       []byte(event.BookID),
		Value:     eventJSON,
	}

	archiveSvc.On("ProcessReviewEvent", ctx, mock.MatchedBy(func(e *entity.ReviewEvent) bool {
		return e.ReviewID == reviewID && e.EventType == entity.EventReviewCreated
	}), 2, int64(41)).Return(nil)

	err := consumer.processMessage(ctx, message)

	assert.NoError(t, err)
	archiveSvc.AssertExpectations(t)
}

func TestKafkaConsumer_ProcessMessage_InvalidJSON(t *testing.T) {
	archiveSvc := new(MockEventArchiveService)
	consumer := &KafkaConsumer{
		archiveSvc: archiveSvc,
		topic:      "review_events",
		groupID:    "test-group",
	}

	ctx := context.Background()
	message := kafka.Message{Value: []byte("invalid json {{{")}

	err := consumer.processMessage(ctx, message)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal")
	archiveSvc.AssertNotCalled(t, "ProcessReviewEvent")
}

func TestKafkaConsumer_ProcessMessage_ServiceError(t *testing.T) {
	archiveSvc := new(MockEventArchiveService)
	consumer := &KafkaConsumer{
		archiveSvc: archiveSvc,
		topic:      "review_events",
		groupID:    "test-group",
	}

	ctx := context.Background()

	event := entity.ReviewEvent{
		EventType: entity.EventReviewDeleted,
		ReviewID:  uuid.NewString(),
	}
	eventJSON, _ := json.Marshal(event)

	message := kafka.Message{Value: eventJSON}

	archiveSvc.On("ProcessReviewEvent", ctx, mock.Anything, 0, int64(0)).Return(errors.New("mongo unavailable"))

	err := consumer.processMessage(ctx, message)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to process review event")
}

func TestKafkaConsumer_ProcessMessage_EmptyMessage(t *testing.T) {
	archiveSvc := new(MockEventArchiveService)
	consumer := &KafkaConsumer{
		archiveSvc: archiveSvc,
		topic:      "review_events",
		groupID:    "test-group",
	}

	ctx := context.Background()
	message := kafka.Message{Value: []byte{}}

	err := consumer.processMessage(ctx, message)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal")
}
