package processor

import (
	"context"

	"bookery/background-worker-service/internal/app/background-worker/service"
	"bookery/pkg/logger"

	"github.com/robfig/cron/v3"
)

// CronScheduler запускает периодическую сверку агрегатов рейтинга
type CronScheduler struct {
	cron         *cron.Cron
	reconcileSvc service.ReconciliationServiceInterface
}

func NewCronScheduler(reconcileSvc service.ReconciliationServiceInterface) *CronScheduler {
	// Шестипольный формат с секундами, как в расписании по умолчанию
	c := cron.New(cron.WithSeconds())

	return &CronScheduler{
		cron:         c,
		reconcileSvc: reconcileSvc,
	}
}

// Start регистрирует задачу сверки и запускает планировщик
// Первый проход выполняется сразу, не дожидаясь расписания
func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("Starting cron scheduler")

	_, err := s.cron.AddFunc(schedule, func() {
		logger.Info().Msg("Cron job triggered: reconciling book rating aggregates")

		if _, err := s.reconcileSvc.ReconcileRatings(ctx); err != nil {
			logger.Error().Err(err).Msg("Failed to reconcile rating aggregates")
		}
	})

	if err != nil {
		return err
	}

	s.cron.Start()

	logger.Info().Msg("Performing initial rating reconciliation...")
	if _, err := s.reconcileSvc.ReconcileRatings(ctx); err != nil {
		logger.Warn().Err(err).Msg("Initial rating reconciliation failed")
	}

	return nil
}

// Stop останавливает планировщик и дожидается завершения текущих задач
func (s *CronScheduler) Stop() {
	logger.Info().Msg("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Cron scheduler stopped")
}

// GetEntries возвращает зарегистрированные cron задачи
func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}
