package service

import (
	"context"
	"errors"
	"testing"

	"bookery/background-worker-service/internal/app/background-worker/entity"
	"bookery/background-worker-service/internal/app/background-worker/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestReconcileRatings_NoDrift(t *testing.T) {
	ratingRepo := new(mocks.MockBookRatingRepository)
	service := NewReconciliationService(ratingRepo)

	ctx := context.Background()
	ratingRepo.On("FindDrifted", ctx).Return([]entity.AggregateDrift{}, nil)

	repaired, err := service.ReconcileRatings(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 0, repaired)
	ratingRepo.AssertNotCalled(t, "Repair", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcileRatings_RepairsDriftedBooks(t *testing.T) {
	ratingRepo := new(mocks.MockBookRatingRepository)
	service := NewReconciliationService(ratingRepo)

	ctx := context.Background()
	firstID := uuid.New()
	secondID := uuid.New()

	drifts := []entity.AggregateDrift{
		{BookID: firstID, StoredAverage: 4.0, StoredCount: 3, ActualAverage: 3.5, ActualCount: 4},
		{BookID: secondID, StoredAverage: 0, StoredCount: 1, ActualAverage: 0, ActualCount: 0},
	}

	ratingRepo.On("FindDrifted", ctx).Return(drifts, nil)
	ratingRepo.On("Repair", ctx, firstID, 3.5, 4).Return(nil)
	ratingRepo.On("Repair", ctx, secondID, 0.0, 0).Return(nil)

	repaired, err := service.ReconcileRatings(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 2, repaired)
	ratingRepo.AssertExpectations(t)
}

func TestReconcileRatings_RepairFailureDoesNotStopPass(t *testing.T) {
	ratingRepo := new(mocks.MockBookRatingRepository)
	service := NewReconciliationService(ratingRepo)

	ctx := context.Background()
	failingID := uuid.New()
	okID := uuid.New()

	drifts := []entity.AggregateDrift{
		{BookID: failingID, ActualAverage: 2.0, ActualCount: 1},
		{BookID: okID, ActualAverage: 5.0, ActualCount: 2},
	}

	ratingRepo.On("FindDrifted", ctx).Return(drifts, nil)
	ratingRepo.On("Repair", ctx, failingID, 2.0, 1).Return(errors.New("update failed"))
	ratingRepo.On("Repair", ctx, okID, 5.0, 2).Return(nil)

	repaired, err := service.ReconcileRatings(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 1, repaired)
	ratingRepo.AssertExpectations(t)
}

func TestReconcileRatings_QueryError(t *testing.T) {
	ratingRepo := new(mocks.MockBookRatingRepository)
	service := NewReconciliationService(ratingRepo)

	ctx := context.Background()
	ratingRepo.On("FindDrifted", ctx).Return(nil, errors.New("db unavailable"))

	repaired, err := service.ReconcileRatings(ctx)

	assert.Error(t, err)
	assert.Equal(t, 0, repaired)
	assert.Contains(t, err.Error(), "failed to find drifted aggregates")
}
