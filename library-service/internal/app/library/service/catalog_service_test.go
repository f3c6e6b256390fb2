package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookery/library-service/internal/app/library/entity"
	"bookery/library-service/internal/app/library/repository"
	"bookery/library-service/internal/app/library/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestCatalogService() (*CatalogService, *mocks.MockAuthorRepository, *mocks.MockCategoryRepository, *mocks.MockBookRepository, *mocks.MockCategoryCache) {
	authorRepo := new(mocks.MockAuthorRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	bookRepo := new(mocks.MockBookRepository)
	cache := new(mocks.MockCategoryCache)
	return NewCatalogService(authorRepo, categoryRepo, bookRepo, cache), authorRepo, categoryRepo, bookRepo, cache
}

func TestCreateAuthor_Success(t *testing.T) {
	service, authorRepo, _, _, _ := newTestCatalogService()

	ctx := context.Background()
	userID := uuid.New()
	req := &entity.CreateAuthorRequest{Name: "Leo Tolstoy", Country: "Russia"}

	authorRepo.On("Create", ctx, mock.AnythingOfType("*entity.Author")).Return(nil)

	result, err := service.CreateAuthor(ctx, userID, req)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, "Leo Tolstoy", result.Name)
	assert.Equal(t, userID, result.UserID)
}

func TestGetAuthor_NotFound(t *testing.T) {
	service, authorRepo, _, _, _ := newTestCatalogService()

	ctx := context.Background()
	authorID := uuid.New()

	authorRepo.On("GetByID", ctx, authorID).Return(nil, repository.ErrAuthorNotFound)

	result, err := service.GetAuthor(ctx, authorID)

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrAuthorNotFound)
}

func TestUpdateAuthor_PartialUpdate(t *testing.T) {
	service, authorRepo, _, _, _ := newTestCatalogService()

	ctx := context.Background()
	authorID := uuid.New()
	existing := &entity.Author{ID: authorID, Name: "Old Name", Country: "Russia"}

	authorRepo.On("GetByID", ctx, authorID).Return(existing, nil)
	authorRepo.On("Update", ctx, mock.AnythingOfType("*entity.Author")).Return(nil)

	result, err := service.UpdateAuthor(ctx, authorID, &entity.UpdateAuthorRequest{Name: "New Name"})

	assert.NoError(t, err)
	assert.Equal(t, "New Name", result.Name)
	// Не переданные поля сохраняют старые значения
	assert.Equal(t, "Russia", result.Country)
}

func TestDeleteAuthor_NotFound(t *testing.T) {
	service, authorRepo, _, _, _ := newTestCatalogService()

	ctx := context.Background()
	authorID := uuid.New()

	authorRepo.On("Delete", ctx, authorID).Return(repository.ErrAuthorNotFound)

	err := service.DeleteAuthor(ctx, authorID)

	assert.ErrorIs(t, err, ErrAuthorNotFound)
}

func TestCreateCategory_InvalidatesCache(t *testing.T) {
	service, _, categoryRepo, _, cache := newTestCatalogService()

	ctx := context.Background()
	req := &entity.CreateCategoryRequest{Name: "Fiction", Description: "Novels and stories"}

	categoryRepo.On("Create", ctx, mock.AnythingOfType("*entity.Category")).Return(nil)
	cache.On("DeleteCategories", ctx).Return(nil)

	result, err := service.CreateCategory(ctx, req)

	assert.NoError(t, err)
	assert.Equal(t, "Fiction", result.Name)
	cache.AssertCalled(t, "DeleteCategories", ctx)
}

func TestGetAllCategories_CacheHit(t *testing.T) {
	service, _, categoryRepo, _, cache := newTestCatalogService()

	ctx := context.Background()
	cached := []entity.Category{
		{ID: uuid.New(), Name: "Fiction"},
		{ID: uuid.New(), Name: "Science"},
	}

	cache.On("GetCategories", ctx).Return(cached, nil)

	result, err := service.GetAllCategories(ctx)

	assert.NoError(t, err)
	assert.Len(t, result, 2)
	// При попадании в кеш БД не трогаем
	categoryRepo.AssertNotCalled(t, "GetAll", ctx)
}

func TestGetAllCategories_CacheMissLoadsFromDB(t *testing.T) {
	service, _, categoryRepo, _, cache := newTestCatalogService()

	ctx := context.Background()
	fromDB := []entity.Category{{ID: uuid.New(), Name: "History"}}

	cache.On("GetCategories", ctx).Return(nil, nil)
	categoryRepo.On("GetAll", ctx).Return(fromDB, nil)
	cache.On("SetCategories", ctx, fromDB, mock.AnythingOfType("time.Duration")).Return(nil)

	result, err := service.GetAllCategories(ctx)

	assert.NoError(t, err)
	assert.Len(t, result, 1)
	cache.AssertCalled(t, "SetCategories", ctx, fromDB, mock.AnythingOfType("time.Duration"))
}

func TestGetAllCategories_CacheWriteFailureNonFatal(t *testing.T) {
	service, _, categoryRepo, _, cache := newTestCatalogService()

	ctx := context.Background()
	fromDB := []entity.Category{{ID: uuid.New(), Name: "History"}}

	cache.On("GetCategories", ctx).Return(nil, nil)
	categoryRepo.On("GetAll", ctx).Return(fromDB, nil)
	cache.On("SetCategories", ctx, fromDB, mock.AnythingOfType("time.Duration")).Return(errors.New("redis down"))

	result, err := service.GetAllCategories(ctx)

	assert.NoError(t, err)
	assert.Len(t, result, 1)
}

func TestUpdateCategory_InvalidatesCache(t *testing.T) {
	service, _, categoryRepo, _, cache := newTestCatalogService()

	ctx := context.Background()
	categoryID := uuid.New()
	existing := &entity.Category{ID: categoryID, Name: "Old", Description: "Old desc"}

	categoryRepo.On("GetByID", ctx, categoryID).Return(existing, nil)
	categoryRepo.On("Update", ctx, mock.AnythingOfType("*entity.Category")).Return(nil)
	cache.On("DeleteCategories", ctx).Return(nil)

	result, err := service.UpdateCategory(ctx, categoryID, &entity.UpdateCategoryRequest{Name: "New"})

	assert.NoError(t, err)
	assert.Equal(t, "New", result.Name)
	cache.AssertCalled(t, "DeleteCategories", ctx)
}

func TestDeleteCategory_NotFound(t *testing.T) {
	service, _, categoryRepo, _, _ := newTestCatalogService()

	ctx := context.Background()
	categoryID := uuid.New()

	categoryRepo.On("Delete", ctx, categoryID).Return(repository.ErrCategoryNotFound)

	err := service.DeleteCategory(ctx, categoryID)

	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCreateBook_Success(t *testing.T) {
	service, authorRepo, categoryRepo, bookRepo, _ := newTestCatalogService()

	ctx := context.Background()
	userID := uuid.New()
	authorID := uuid.New()
	categoryID := uuid.New()
	req := &entity.CreateBookRequest{
		Name:       "War and Peace",
		AuthorID:   authorID,
		CategoryID: &categoryID,
	}

	authorRepo.On("GetByID", ctx, authorID).Return(&entity.Author{ID: authorID}, nil)
	categoryRepo.On("GetByID", ctx, categoryID).Return(&entity.Category{ID: categoryID}, nil)
	bookRepo.On("Create", ctx, mock.AnythingOfType("*entity.Book")).Return(nil)

	result, err := service.CreateBook(ctx, userID, req)

	assert.NoError(t, err)
	assert.Equal(t, "War and Peace", result.Name)
	// Новая книга начинает без отзывов
	assert.Equal(t, 0.0, result.AverageRating)
	assert.Equal(t, 0, result.RatingCount)
}

func TestCreateBook_AuthorNotFound(t *testing.T) {
	service, authorRepo, _, _, _ := newTestCatalogService()

	ctx := context.Background()
	authorID := uuid.New()
	req := &entity.CreateBookRequest{Name: "Orphan Book", AuthorID: authorID}

	authorRepo.On("GetByID", ctx, authorID).Return(nil, repository.ErrAuthorNotFound)

	result, err := service.CreateBook(ctx, uuid.New(), req)

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrAuthorNotFound)
}

func TestCreateBook_CategoryNotFound(t *testing.T) {
	service, authorRepo, categoryRepo, _, _ := newTestCatalogService()

	ctx := context.Background()
	authorID := uuid.New()
	categoryID := uuid.New()
	req := &entity.CreateBookRequest{Name: "Book", AuthorID: authorID, CategoryID: &categoryID}

	authorRepo.On("GetByID", ctx, authorID).Return(&entity.Author{ID: authorID}, nil)
	categoryRepo.On("GetByID", ctx, categoryID).Return(nil, repository.ErrCategoryNotFound)

	result, err := service.CreateBook(ctx, uuid.New(), req)

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestGetAllBooks_WithFilters(t *testing.T) {
	service, _, _, bookRepo, _ := newTestCatalogService()

	ctx := context.Background()
	categoryID := uuid.New()
	books := []entity.Book{
		{ID: uuid.New(), Name: "Filtered Book", CategoryID: &categoryID},
	}

	bookRepo.On("GetAll", ctx, &categoryID, (*uuid.UUID)(nil)).Return(books, nil)

	result, err := service.GetAllBooks(ctx, &categoryID, nil)

	assert.NoError(t, err)
	assert.Len(t, result, 1)
}

func TestGetBook_NotFound(t *testing.T) {
	service, _, _, bookRepo, _ := newTestCatalogService()

	ctx := context.Background()
	bookID := uuid.New()

	bookRepo.On("GetByID", ctx, bookID).Return(nil, repository.ErrBookNotFound)

	result, err := service.GetBook(ctx, bookID)

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestUpdateBook_DoesNotTouchAggregate(t *testing.T) {
	service, _, _, bookRepo, _ := newTestCatalogService()

	ctx := context.Background()
	bookID := uuid.New()
	existing := &entity.Book{
		ID:            bookID,
		Name:          "Old Name",
		AverageRating: 4.5,
		RatingCount:   10,
		CreatedAt:     time.Now(),
	}

	bookRepo.On("GetByID", ctx, bookID).Return(existing, nil)
	bookRepo.On("Update", ctx, mock.AnythingOfType("*entity.Book")).Return(nil)

	result, err := service.UpdateBook(ctx, bookID, &entity.UpdateBookRequest{Name: "New Name"})

	assert.NoError(t, err)
	assert.Equal(t, "New Name", result.Name)
	// Агрегат рейтинга меняют только транзакции отзывов
	assert.Equal(t, 4.5, result.AverageRating)
	assert.Equal(t, 10, result.RatingCount)
}

func TestDeleteBook_NotFound(t *testing.T) {
	service, _, _, bookRepo, _ := newTestCatalogService()

	ctx := context.Background()
	bookID := uuid.New()

	bookRepo.On("Delete", ctx, bookID).Return(repository.ErrBookNotFound)

	err := service.DeleteBook(ctx, bookID)

	assert.ErrorIs(t, err, ErrBookNotFound)
}
