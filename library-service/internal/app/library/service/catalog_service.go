package service

import (
	"context"
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
	ErrAuthorNotFound   = errors.New("author not found")
	ErrCategoryNotFound = errors.New("category not found")
)

const categoriesCacheTTL = time.Hour

// CatalogService обрабатывает бизнес-логику каталога книг
// Координирует репозитории авторов, категорий, книг и Redis кеш
type CatalogService struct {
	authorRepo   repository.AuthorRepository
	categoryRepo repository.CategoryRepository
	bookRepo     repository.BookRepository
	cache        util.CategoryCache
}

// NewCatalogService создает новый сервис каталога с внедрением зависимостей
func NewCatalogService(
	authorRepo repository.AuthorRepository,
	categoryRepo repository.CategoryRepository,
	bookRepo repository.BookRepository,
	cache util.CategoryCache,
) *CatalogService {
	return &CatalogService{
		authorRepo:   authorRepo,
		categoryRepo: categoryRepo,
		bookRepo:     bookRepo,
		cache:        cache,
	}
}

// === AUTHORS ===

// CreateAuthor создает нового автора от имени пользователя
func (s *CatalogService) CreateAuthor(ctx context.Context, userID uuid.UUID, req *entity.CreateAuthorRequest) (*entity.Author, error) {
	author := &entity.Author{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        req.Name,
		DateOfBirth: req.DateOfBirth,
		Country:     req.Country,
		CreatedAt:   time.Now(),
	}

	if err := s.authorRepo.Create(ctx, author); err != nil {
		return nil, fmt.Errorf("failed to create author: %w", err)
	}

	return author, nil
}

// GetAuthor получает автора по ID
func (s *CatalogService) GetAuthor(ctx context.Context, id uuid.UUID) (*entity.Author, error) {
	author, err := s.authorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAuthorNotFound) {
			return nil, ErrAuthorNotFound
		}
		return nil, fmt.Errorf("failed to get author: %w", err)
	}

	return author, nil
}

// GetAllAuthors получает всех авторов
func (s *CatalogService) GetAllAuthors(ctx context.Context) ([]entity.Author, error) {
	authors, err := s.authorRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get authors: %w", err)
	}

	return authors, nil
}

// UpdateAuthor обновляет автора (частичное обновление)
func (s *CatalogService) UpdateAuthor(ctx context.Context, id uuid.UUID, req *entity.UpdateAuthorRequest) (*entity.Author, error) {
	author, err := s.authorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAuthorNotFound) {
			return nil, ErrAuthorNotFound
		}
		return nil, fmt.Errorf("failed to get author: %w", err)
	}

	if req.Name != "" {
		author.Name = req.Name
	}
	if req.DateOfBirth != nil {
		author.DateOfBirth = req.DateOfBirth
	}
	if req.Country != "" {
		author.Country = req.Country
	}

	if err := s.authorRepo.Update(ctx, author); err != nil {
		return nil, fmt.Errorf("failed to update author: %w", err)
	}

	return author, nil
}

// DeleteAuthor удаляет автора
func (s *CatalogService) DeleteAuthor(ctx context.Context, id uuid.UUID) error {
	if err := s.authorRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrAuthorNotFound) {
			return ErrAuthorNotFound
		}
		return fmt.Errorf("failed to delete author: %w", err)
	}

	return nil
}

// === CATEGORIES ===

// CreateCategory создает новую категорию и инвалидирует кеш
func (s *CatalogService) CreateCategory(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error) {
	category := &entity.Category{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   time.Now(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.invalidateCategoriesCache(ctx)

	return category, nil
}

// GetCategory получает категорию по ID
func (s *CatalogService) GetCategory(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return category, nil
}

// GetAllCategories получает все категории с кешированием в Redis
// Сначала проверяет кеш, при промахе загружает из БД и кеширует
func (s *CatalogService) GetAllCategories(ctx context.Context) ([]entity.Category, error) {
	categories, err := s.cache.GetCategories(ctx)
	if err == nil && len(categories) > 0 {
		return categories, nil
	}

	categories, err = s.categoryRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	// Данные уже получены из БД, сбой кеша не критичен
	if err := s.cache.SetCategories(ctx, categories, categoriesCacheTTL); err != nil {
		logger.Warn().Err(err).Msg("failed to cache categories")
	}

	return categories, nil
}

// UpdateCategory обновляет категорию и инвалидирует кеш
func (s *CatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, req *entity.UpdateCategoryRequest) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	if req.Name != "" {
		category.Name = req.Name
	}
	if req.Description != "" {
		category.Description = req.Description
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.invalidateCategoriesCache(ctx)

	return category, nil
}

// DeleteCategory удаляет категорию и инвалидирует кеш
func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.invalidateCategoriesCache(ctx)

	return nil
}

// === BOOKS ===

// CreateBook создает новую книгу
// Проверяет существование автора и категории перед созданием
func (s *CatalogService) CreateBook(ctx context.Context, userID uuid.UUID, req *entity.CreateBookRequest) (*entity.Book, error) {
	if _, err := s.authorRepo.GetByID(ctx, req.AuthorID); err != nil {
		if errors.Is(err, repository.ErrAuthorNotFound) {
			return nil, ErrAuthorNotFound
		}
		return nil, fmt.Errorf("failed to verify author: %w", err)
	}

	if req.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *req.CategoryID); err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("failed to verify category: %w", err)
		}
	}

	book := &entity.Book{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		AuthorID:    req.AuthorID,
		CreatedAt:   time.Now(),
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	metrics.BooksCreated.Inc()

	return book, nil
}

// GetBook получает книгу по ID вместе с текущим агрегатом рейтинга
func (s *CatalogService) GetBook(ctx context.Context, id uuid.UUID) (*entity.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	return book, nil
}

// GetAllBooks получает книги с опциональными фильтрами по категории и автору
func (s *CatalogService) GetAllBooks(ctx context.Context, categoryID, authorID *uuid.UUID) ([]entity.Book, error) {
	books, err := s.bookRepo.GetAll(ctx, categoryID, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get books: %w", err)
	}

	return books, nil
}

// UpdateBook обновляет книгу (частичное обновление)
// Агрегат рейтинга через эту операцию не меняется
func (s *CatalogService) UpdateBook(ctx context.Context, id uuid.UUID, req *entity.UpdateBookRequest) (*entity.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	if req.Name != "" {
		book.Name = req.Name
	}
	if req.Description != "" {
		book.Description = req.Description
	}
	if req.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *req.CategoryID); err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("failed to verify category: %w", err)
		}
		book.CategoryID = req.CategoryID
	}
	if req.AuthorID != nil {
		if _, err := s.authorRepo.GetByID(ctx, *req.AuthorID); err != nil {
			if errors.Is(err, repository.ErrAuthorNotFound) {
				return nil, ErrAuthorNotFound
			}
			return nil, fmt.Errorf("failed to verify author: %w", err)
		}
		book.AuthorID = *req.AuthorID
	}

	if err := s.bookRepo.Update(ctx, book); err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to update book: %w", err)
	}

	return book, nil
}

// DeleteBook удаляет книгу вместе с ее отзывами (каскад на уровне БД)
func (s *CatalogService) DeleteBook(ctx context.Context, id uuid.UUID) error {
	if err := s.bookRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return ErrBookNotFound
		}
		return fmt.Errorf("failed to delete book: %w", err)
	}

	return nil
}

func (s *CatalogService) invalidateCategoriesCache(ctx context.Context) {
	if err := s.cache.DeleteCategories(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to invalidate categories cache")
	}
}
