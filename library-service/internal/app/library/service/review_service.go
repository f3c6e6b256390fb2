package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bookery/library-service/internal/app/library/entity"
	"bookery/library-service/internal/app/library/repository"
	"bookery/library-service/internal/app/library/util"
	"bookery/pkg/logger"
	"bookery/pkg/metrics"

	"github.com/google/uuid"
)

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrBookNotFound    = errors.New("book not found")
	ErrReviewNotFound  = errors.New("review not found")
	ErrAlreadyReviewed = errors.New("already reviewed")
	ErrNotOwner        = errors.New("not the owner of the review")
	// ErrTimeout - транзакция не уложилась в таймаут; клиент может повторить
	ErrTimeout = errors.New("review operation timed out, retry")
)

// ReviewService обрабатывает бизнес-логику отзывов.
// Само правило "один отзыв на пару (user, book)" и атомарность обновления
// агрегата обеспечивает репозиторий транзакцией; сервис переводит ошибки
// хранилища в ошибки бизнес-логики и публикует события в Kafka.
type ReviewService struct {
	reviewRepo    repository.ReviewRepository
	kafkaProducer util.MessagePublisher
}

// NewReviewService создает новый сервис отзывов с внедрением зависимостей
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	kafkaProducer util.MessagePublisher,
) *ReviewService {
	return &ReviewService{
		reviewRepo:    reviewRepo,
		kafkaProducer: kafkaProducer,
	}
}

// SubmitReview создает отзыв на книгу
// 1. Репозиторий атомарно: проверяет книгу, вставляет отзыв, обновляет агрегат
// 2. Отправляет событие REVIEW_CREATED в Kafka (не критично при сбое)
func (s *ReviewService) SubmitReview(ctx context.Context, userID, bookID uuid.UUID, req *entity.CreateReviewRequest) (*entity.Review, error) {
	review := &entity.Review{
		ID:      uuid.New(),
		UserID:  userID,
		BookID:  bookID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}

	if err := s.reviewRepo.Submit(ctx, review); err != nil {
		switch {
		case errors.Is(err, repository.ErrBookNotFound):
			metrics.ReviewsRejected.WithLabelValues("book_not_found").Inc()
			return nil, ErrBookNotFound
		case errors.Is(err, repository.ErrDuplicateReview):
			metrics.ReviewsRejected.WithLabelValues("duplicate").Inc()
			return nil, ErrAlreadyReviewed
		case errors.Is(err, repository.ErrTxTimeout):
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("failed to submit review: %w", err)
	}

	metrics.ReviewsCreated.Inc()
	metrics.ReviewsRating.Observe(float64(review.Rating))

	s.publishReviewEvent(ctx, entity.EventReviewCreated, review)

	return review, nil
}

// GetReviewsByBook получает все отзывы книги в порядке создания
func (s *ReviewService) GetReviewsByBook(ctx context.Context, bookID uuid.UUID) ([]entity.Review, error) {
	reviews, err := s.reviewRepo.GetByBookID(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}

	return reviews, nil
}

// GetReview получает отзыв по ID
func (s *ReviewService) GetReview(ctx context.Context, reviewID uuid.UUID) (*entity.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	return review, nil
}

// UpdateReview обновляет отзыв с проверкой прав доступа.
// Менять отзыв может только его автор; изменение оценки пересчитывает
// агрегат книги в той же транзакции.
func (s *ReviewService) UpdateReview(ctx context.Context, reviewID, callerID uuid.UUID, req *entity.UpdateReviewRequest) (*entity.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	if review.UserID != callerID {
		return nil, ErrNotOwner
	}

	oldRating := review.Rating

	// Обновляем только переданные поля
	if req.Rating > 0 {
		review.Rating = req.Rating
	}
	if req.Comment != "" {
		review.Comment = req.Comment
	}

	if err := s.reviewRepo.Update(ctx, review, oldRating); err != nil {
		switch {
		case errors.Is(err, repository.ErrReviewNotFound):
			return nil, ErrReviewNotFound
		case errors.Is(err, repository.ErrTxTimeout):
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	s.publishReviewEvent(ctx, entity.EventReviewUpdated, review)

	return review, nil
}

// DeleteReview удаляет отзыв с проверкой прав доступа.
// Оценка удаленного отзыва вычитается из агрегата книги в той же транзакции.
func (s *ReviewService) DeleteReview(ctx context.Context, reviewID, callerID uuid.UUID) error {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to get review: %w", err)
	}

	if review.UserID != callerID {
		return ErrNotOwner
	}

	if err := s.reviewRepo.Delete(ctx, review); err != nil {
		switch {
		case errors.Is(err, repository.ErrReviewNotFound):
			return ErrReviewNotFound
		case errors.Is(err, repository.ErrTxTimeout):
			return ErrTimeout
		}
		return fmt.Errorf("failed to delete review: %w", err)
	}

	s.publishReviewEvent(ctx, entity.EventReviewDeleted, review)

	return nil
}

// GetUserReviews получает все отзывы пользователя
func (s *ReviewService) GetUserReviews(ctx context.Context, userID uuid.UUID) ([]entity.Review, error) {
	reviews, err := s.reviewRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user reviews: %w", err)
	}

	return reviews, nil
}

// publishReviewEvent отправляет событие об отзыве в Kafka
// Отзыв уже зафиксирован в БД, сбой продюсера не прерывает выполнение
func (s *ReviewService) publishReviewEvent(ctx context.Context, eventType string, review *entity.Review) {
	event := entity.ReviewEvent{
		EventType: eventType,
		ReviewID:  review.ID.String(),
		BookID:    review.BookID.String(),
		UserID:    review.UserID.String(),
		Rating:    review.Rating,
		Timestamp: time.Now(),
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("review_id", event.ReviewID).Msg("failed to marshal review event")
		return
	}

	// Ключ = BookID, события одной книги попадают в одну партицию
	if err := s.kafkaProducer.PublishMessage(ctx, event.BookID, eventData); err != nil {
		logger.Error().Err(err).
			Str("event_type", eventType).
			Str("review_id", event.ReviewID).
			Msg("failed to publish review event")
	}
}
