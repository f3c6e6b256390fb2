package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"bookery/library-service/internal/app/library/entity"
	"bookery/library-service/internal/app/library/repository"
	"bookery/library-service/internal/app/library/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestReviewService() (*ReviewService, *mocks.MockReviewRepository, *mocks.MockMessagePublisher) {
	reviewRepo := new(mocks.MockReviewRepository)
	kafkaProducer := &mocks.MockMessagePublisher{Messages: make([][]byte, 0)}
	return NewReviewService(reviewRepo, kafkaProducer), reviewRepo, kafkaProducer
}

func TestSubmitReview_Success(t *testing.T) {
	service, reviewRepo, kafkaProducer := newTestReviewService()

	ctx := context.Background()
	userID := uuid.New()
	bookID := uuid.New()
	req := &entity.CreateReviewRequest{Rating: 5, Comment: "Great book!"}

	reviewRepo.On("Submit", ctx, mock.AnythingOfType("*entity.Review")).Return(nil)
	kafkaProducer.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	result, err := service.SubmitReview(ctx, userID, bookID, req)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, userID, result.UserID)
	assert.Equal(t, bookID, result.BookID)
	assert.Equal(t, 5, result.Rating)
	assert.Len(t, kafkaProducer.Messages, 1)
}

func TestSubmitReview_BookNotFound(t *testing.T) {
	service, reviewRepo, _ := newTestReviewService()

	ctx := context.Background()
	req := &entity.CreateReviewRequest{Rating: 4, Comment: "Good read."}

	reviewRepo.On("Submit", ctx, mock.Anything).Return(repository.ErrBookNotFound)

	result, err := service.SubmitReview(ctx, uuid.New(), uuid.New(), req)

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestSubmitReview_Duplicate(t *testing.T) {
	service, reviewRepo, _ := newTestReviewService()

	ctx := context.Background()
	req := &entity.CreateReviewRequest{Rating: 3, Comment: "Again."}

	reviewRepo.On("Submit", ctx, mock.Anything).Return(repository.ErrDuplicateReview)

	result, err := service.SubmitReview(ctx, uuid.New(), uuid.New(), req)

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
}

func TestSubmitReview_TxTimeout(t *testing.T) {
	service, reviewRepo, _ := newTestReviewService()

	ctx := context.Background()
	req := &entity.CreateReviewRequest{Rating: 2, Comment: "Slow day."}

	reviewRepo.On("Submit", ctx, mock.Anything).Return(repository.ErrTxTimeout)

	result, err := service.SubmitReview(ctx, uuid.New(), uuid.New(), req)

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestSubmitReview_KafkaErrorIgnored(t *testing.T) {
	service, reviewRepo, kafkaProducer := newTestReviewService()

	ctx := context.Background()
	req := &entity.CreateReviewRequest{Rating: 4, Comment: "Solid."}

	reviewRepo.On("Submit", ctx, mock.Anything).Return(nil)
	kafkaProducer.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(errors.New("kafka error"))

	result, err := service.SubmitReview(ctx, uuid.New(), uuid.New(), req)

	assert.NoError(t, err)
	assert.NotNil(t, result)
}

func TestGetReviewsByBook_Success(t *testing.T) {
	service, reviewRepo, _ := newTestReviewService()

	ctx := context.Background()
	bookID := uuid.New()
	reviews := []entity.Review{
		{ID: uuid.New(), BookID: bookID, UserID: uuid.New(), Rating: 5},
		{ID: uuid.New(), BookID: bookID, UserID: uuid.New(), Rating: 4},
	}

	reviewRepo.On("GetByBookID", ctx, bookID).Return(reviews, nil)

	result, err := service.GetReviewsByBook(ctx, bookID)

	assert.NoError(t, err)
	assert.Len(t, result, 2)
}

func TestGetReviewsByBook_Empty(t *testing.T) {
	service, reviewRepo, _ := newTestReviewService()

	ctx := context.Background()
	bookID := uuid.New()
	reviewRepo.On("GetByBookID", ctx, bookID).Return([]entity.Review{}, nil)

	result, err := service.GetReviewsByBook(ctx, bookID)

	assert.NoError(t, err)
	assert.Empty(t, result)
}

func TestGetReview_NotFound(t *testing.T) {
	service, reviewRepo, _ := newTestReviewService()

	ctx := context.Background()
	reviewID := uuid.New()

	reviewRepo.On("GetByID", ctx, reviewID).Return(nil, repository.ErrReviewNotFound)

	result, err := service.GetReview(ctx, reviewID)

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestUpdateReview_Success(t *testing.T) {
	service, reviewRepo, kafkaProducer := newTestReviewService()

	ctx := context.Background()
	reviewID := uuid.New()
	userID := uuid.New()
	existing := &entity.Review{ID: reviewID, BookID: uuid.New(), UserID: userID, Rating: 3, Comment: "Old text"}
	req := &entity.UpdateReviewRequest{Rating: 5, Comment: "Updated text"}

	reviewRepo.On("GetByID", ctx, reviewID).Return(existing, nil)
	reviewRepo.On("Update", ctx, mock.AnythingOfType("*entity.Review"), 3).Return(nil)
	kafkaProducer.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	result, err := service.UpdateReview(ctx, reviewID, userID, req)

	assert.NoError(t, err)
	assert.Equal(t, 5, result.Rating)
	assert.Equal(t, "Updated text", result.Comment)
	// Старая оценка уходит в репозиторий для пересчета агрегата
	reviewRepo.AssertCalled(t, "Update", ctx, mock.Anything, 3)
}

func TestUpdateReview_NotFound(t *testing.T) {
	service, reviewRepo, _ := newTestReviewService()

	ctx := context.Background()
	reviewID := uuid.New()

	reviewRepo.On("GetByID", ctx, reviewID).Return(nil, repository.ErrReviewNotFound)

	result, err := service.UpdateReview(ctx, reviewID, uuid.New(), &entity.UpdateReviewRequest{Rating: 5})

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestUpdateReview_NotOwner(t *testing.T) {
	service, reviewRepo, _ := newTestReviewService()

	ctx := context.Background()
	reviewID := uuid.New()
	existing := &entity.Review{ID: reviewID, UserID: uuid.New(), Rating: 4}

	reviewRepo.On("GetByID", ctx, reviewID).Return(existing, nil)

	result, err := service.UpdateReview(ctx, reviewID, uuid.New(), &entity.UpdateReviewRequest{Rating: 1})

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestDeleteReview_Success(t *testing.T) {
	service, reviewRepo, kafkaProducer := newTestReviewService()

	ctx := context.Background()
	reviewID := uuid.New()
	userID := uuid.New()
	review := &entity.Review{ID: reviewID, BookID: uuid.New(), UserID: userID, Rating: 5}

	reviewRepo.On("GetByID", ctx, reviewID).Return(review, nil)
	reviewRepo.On("Delete", ctx, review).Return(nil)
	kafkaProducer.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	err := service.DeleteReview(ctx, reviewID, userID)

	assert.NoError(t, err)
}

func TestDeleteReview_NotOwner(t *testing.T) {
	service, reviewRepo, _ := newTestReviewService()

	ctx := context.Background()
	reviewID := uuid.New()
	review := &entity.Review{ID: reviewID, UserID: uuid.New()}

	reviewRepo.On("GetByID", ctx, reviewID).Return(review, nil)

	err := service.DeleteReview(ctx, reviewID, uuid.New())

	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestGetUserReviews_Success(t *testing.T) {
	service, reviewRepo, _ := newTestReviewService()

	ctx := context.Background()
	userID := uuid.New()
	reviews := []entity.Review{
		{ID: uuid.New(), UserID: userID, BookID: uuid.New(), Rating: 5},
		{ID: uuid.New(), UserID: userID, BookID: uuid.New(), Rating: 4},
	}

	reviewRepo.On("GetByUserID", ctx, userID).Return(reviews, nil)

	result, err := service.GetUserReviews(ctx, userID)

	assert.NoError(t, err)
	assert.Len(t, result, 2)
}

// fakeReviewRepository хранит отзывы в памяти и ведет агрегат книги
// с той же арифметикой, что и SQL-репозиторий. Позволяет проверять
// пересчет рейтинга и поведение под конкурентной нагрузкой без Postgres.
type fakeReviewRepository struct {
	mu      sync.Mutex
	book    *entity.Book
	reviews map[uuid.UUID]*entity.Review
	byPair  map[string]uuid.UUID
}

func newFakeReviewRepository(book *entity.Book) *fakeReviewRepository {
	return &fakeReviewRepository{
		book:    book,
		reviews: make(map[uuid.UUID]*entity.Review),
		byPair:  make(map[string]uuid.UUID),
	}
}

func pairKey(userID, bookID uuid.UUID) string {
	return userID.String() + ":" + bookID.String()
}

func (f *fakeReviewRepository) Submit(ctx context.Context, review *entity.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if review.BookID != f.book.ID {
		return repository.ErrBookNotFound
	}
	key := pairKey(review.UserID, review.BookID)
	if _, exists := f.byPair[key]; exists {
		return repository.ErrDuplicateReview
	}

	count := f.book.RatingCount
	f.book.AverageRating = (f.book.AverageRating*float64(count) + float64(review.Rating)) / float64(count+1)
	f.book.RatingCount = count + 1

	stored := *review
	f.reviews[review.ID] = &stored
	f.byPair[key] = review.ID
	return nil
}

func (f *fakeReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	review, ok := f.reviews[id]
	if !ok {
		return nil, repository.ErrReviewNotFound
	}
	copied := *review
	return &copied, nil
}

func (f *fakeReviewRepository) GetByBookID(ctx context.Context, bookID uuid.UUID) ([]entity.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []entity.Review
	for _, r := range f.reviews {
		if r.BookID == bookID {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (f *fakeReviewRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]entity.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []entity.Review
	for _, r := range f.reviews {
		if r.UserID == userID {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (f *fakeReviewRepository) Update(ctx context.Context, review *entity.Review, oldRating int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.reviews[review.ID]
	if !ok {
		return repository.ErrReviewNotFound
	}

	if review.Rating != oldRating {
		count := f.book.RatingCount
		f.book.AverageRating = (f.book.AverageRating*float64(count) - float64(oldRating) + float64(review.Rating)) / float64(count)
	}

	stored.Rating = review.Rating
	stored.Comment = review.Comment
	return nil
}

func (f *fakeReviewRepository) Delete(ctx context.Context, review *entity.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.reviews[review.ID]
	if !ok {
		return repository.ErrReviewNotFound
	}

	count := f.book.RatingCount
	newCount := count - 1
	if newCount == 0 {
		f.book.AverageRating = 0
	} else {
		f.book.AverageRating = (f.book.AverageRating*float64(count) - float64(stored.Rating)) / float64(newCount)
	}
	f.book.RatingCount = newCount

	delete(f.byPair, pairKey(stored.UserID, stored.BookID))
	delete(f.reviews, review.ID)
	return nil
}

func newAggregateTestService(book *entity.Book) (*ReviewService, *fakeReviewRepository) {
	repo := newFakeReviewRepository(book)
	kafkaProducer := &mocks.MockMessagePublisher{Messages: make([][]byte, 0)}
	kafkaProducer.On("PublishMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return NewReviewService(repo, kafkaProducer), repo
}

func TestSubmitReview_AggregateRunningAverage(t *testing.T) {
	book := &entity.Book{ID: uuid.New(), Name: "Test Book"}
	service, repo := newAggregateTestService(book)
	ctx := context.Background()

	// Первый отзыв с оценкой 4 дает среднее 4.0
	_, err := service.SubmitReview(ctx, uuid.New(), book.ID, &entity.CreateReviewRequest{Rating: 4})
	require.NoError(t, err)
	assert.InDelta(t, 4.0, repo.book.AverageRating, 1e-9)
	assert.Equal(t, 1, repo.book.RatingCount)

	// Второй отзыв с оценкой 2 дает среднее 3.0
	_, err = service.SubmitReview(ctx, uuid.New(), book.ID, &entity.CreateReviewRequest{Rating: 2})
	require.NoError(t, err)
	assert.InDelta(t, 3.0, repo.book.AverageRating, 1e-9)
	assert.Equal(t, 2, repo.book.RatingCount)
}

func TestSubmitReview_SecondReviewSameUserConflicts(t *testing.T) {
	book := &entity.Book{ID: uuid.New(), Name: "Test Book"}
	service, repo := newAggregateTestService(book)
	ctx := context.Background()
	userID := uuid.New()

	_, err := service.SubmitReview(ctx, userID, book.ID, &entity.CreateReviewRequest{Rating: 5})
	require.NoError(t, err)

	// Повторный отзыв того же пользователя отклоняется, агрегат не меняется
	_, err = service.SubmitReview(ctx, userID, book.ID, &entity.CreateReviewRequest{Rating: 1})
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
	assert.InDelta(t, 5.0, repo.book.AverageRating, 1e-9)
	assert.Equal(t, 1, repo.book.RatingCount)
}

func TestUpdateReview_AdjustsAggregate(t *testing.T) {
	book := &entity.Book{ID: uuid.New(), Name: "Test Book"}
	service, repo := newAggregateTestService(book)
	ctx := context.Background()
	userID := uuid.New()

	review, err := service.SubmitReview(ctx, userID, book.ID, &entity.CreateReviewRequest{Rating: 2})
	require.NoError(t, err)
	_, err = service.SubmitReview(ctx, uuid.New(), book.ID, &entity.CreateReviewRequest{Rating: 4})
	require.NoError(t, err)
	require.InDelta(t, 3.0, repo.book.AverageRating, 1e-9)

	// Изменение оценки 2 -> 5 поднимает среднее до (5+4)/2 = 4.5
	_, err = service.UpdateReview(ctx, review.ID, userID, &entity.UpdateReviewRequest{Rating: 5})
	require.NoError(t, err)
	assert.InDelta(t, 4.5, repo.book.AverageRating, 1e-9)
	assert.Equal(t, 2, repo.book.RatingCount)
}

func TestDeleteReview_AdjustsAggregate(t *testing.T) {
	book := &entity.Book{ID: uuid.New(), Name: "Test Book"}
	service, repo := newAggregateTestService(book)
	ctx := context.Background()
	userID := uuid.New()

	review, err := service.SubmitReview(ctx, userID, book.ID, &entity.CreateReviewRequest{Rating: 1})
	require.NoError(t, err)
	_, err = service.SubmitReview(ctx, uuid.New(), book.ID, &entity.CreateReviewRequest{Rating: 5})
	require.NoError(t, err)

	// Удаление единицы оставляет среднее 5.0 по одному отзыву
	err = service.DeleteReview(ctx, review.ID, userID)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, repo.book.AverageRating, 1e-9)
	assert.Equal(t, 1, repo.book.RatingCount)
}

func TestDeleteReview_LastReviewResetsAggregate(t *testing.T) {
	book := &entity.Book{ID: uuid.New(), Name: "Test Book"}
	service, repo := newAggregateTestService(book)
	ctx := context.Background()
	userID := uuid.New()

	review, err := service.SubmitReview(ctx, userID, book.ID, &entity.CreateReviewRequest{Rating: 3})
	require.NoError(t, err)

	err = service.DeleteReview(ctx, review.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, repo.book.RatingCount)
	assert.InDelta(t, 0.0, repo.book.AverageRating, 1e-9)
}

func TestSubmitReview_ConcurrentUsers(t *testing.T) {
	book := &entity.Book{ID: uuid.New(), Name: "Popular Book"}
	service, repo := newAggregateTestService(book)
	ctx := context.Background()

	const users = 100
	var wg sync.WaitGroup
	wg.Add(users)

	for i := 0; i < users; i++ {
		rating := i%5 + 1
		go func(rating int) {
			defer wg.Done()
			_, err := service.SubmitReview(ctx, uuid.New(), book.ID, &entity.CreateReviewRequest{Rating: rating})
			assert.NoError(t, err)
		}(rating)
	}
	wg.Wait()

	// 100 пользователей, оценки 1..5 поровну, среднее ровно 3.0
	assert.Equal(t, users, repo.book.RatingCount)
	assert.InDelta(t, 3.0, repo.book.AverageRating, 1e-6)
}

func TestSubmitReview_ConcurrentSameUserOnlyOneWins(t *testing.T) {
	book := &entity.Book{ID: uuid.New(), Name: "Popular Book"}
	service, repo := newAggregateTestService(book)
	ctx := context.Background()
	userID := uuid.New()

	const attempts = 20
	var wg sync.WaitGroup
	wg.Add(attempts)

	var successes, conflicts int64
	var mu sync.Mutex

	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			_, err := service.SubmitReview(ctx, userID, book.ID, &entity.CreateReviewRequest{Rating: 4})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if errors.Is(err, ErrAlreadyReviewed) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), successes)
	assert.Equal(t, int64(attempts-1), conflicts)
	assert.Equal(t, 1, repo.book.RatingCount)
}
