package service

import (
	"context"
	"fmt"
	"time"

	"bookery/background-worker-service/internal/app/background-worker/repository"
	"bookery/pkg/logger"
	"bookery/pkg/metrics"
)

// ReconciliationService сверяет агрегаты рейтинга книг с фактическими
// значениями по строкам reviews и чинит расхождения
type ReconciliationService struct {
	ratingRepo repository.BookRatingRepository
}

// NewReconciliationService создает новый сервис сверки агрегатов
func NewReconciliationService(ratingRepo repository.BookRatingRepository) *ReconciliationService {
	return &ReconciliationService{ratingRepo: ratingRepo}
}

// ReconcileRatings выполняет один проход сверки
// Возвращает количество починенных книг
func (s *ReconciliationService) ReconcileRatings(ctx context.Context) (int, error) {
	started := time.Now()
	defer func() {
		metrics.WorkerReconcileDuration.Observe(time.Since(started).Seconds())
	}()

	drifts, err := s.ratingRepo.FindDrifted(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to find drifted aggregates: %w", err)
	}

	if len(drifts) == 0 {
		logger.Info().Msg("Rating reconciliation pass: no drift found")
		return 0, nil
	}

	repaired := 0
	for _, drift := range drifts {
		if err := s.ratingRepo.Repair(ctx, drift.BookID, drift.ActualAverage, drift.ActualCount); err != nil {
			// Одна неудавшаяся починка не должна останавливать проход
			logger.Error().
				Err(err).
				Str("book_id", drift.BookID.String()).
				Msg("Failed to repair book aggregate")
			continue
		}

		metrics.WorkerAggregatesRepaired.Inc()
		repaired++

		logger.Warn().
			Str("book_id", drift.BookID.String()).
			Float64("stored_average", drift.StoredAverage).
			Int("stored_count", drift.StoredCount).
			Float64("actual_average", drift.ActualAverage).
			Int("actual_count", drift.ActualCount).
			Msg("Repaired drifted book aggregate")
	}

	logger.Info().
		Int("drifted", len(drifts)).
		Int("repaired", repaired).
		Msg("Rating reconciliation pass completed")

	return repaired, nil
}
