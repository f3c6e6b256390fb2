package mocks

import (
	"context"

	"bookery/background-worker-service/internal/app/background-worker/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockEventArchiveRepository мок для EventArchiveRepository
type MockEventArchiveRepository struct {
	mock.Mock
}

func (m *MockEventArchiveRepository) Archive(ctx context.Context, event *entity.ArchivedReviewEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventArchiveRepository) CountByBook(ctx context.Context, bookID string) (int64, error) {
	args := m.Called(ctx, bookID)
	return args.Get(0).(int64), args.Error(1)
}

// MockBookRatingRepository мок для BookRatingRepository
type MockBookRatingRepository struct {
	mock.Mock
}

func (m *MockBookRatingRepository) FindDrifted(ctx context.Context) ([]entity.AggregateDrift, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.AggregateDrift), args.Error(1)
}

func (m *MockBookRatingRepository) Repair(ctx context.Context, bookID uuid.UUID, average float64, count int) error {
	args := m.Called(ctx, bookID, average, count)
	return args.Error(0)
}
