package repository

import (
	"context"
	"errors"

	"bookery/library-service/internal/app/library/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type authorRepository struct {
	db *gorm.DB
}

// NewAuthorRepository создает новый репозиторий авторов
func NewAuthorRepository(db *gorm.DB) AuthorRepository {
	return &authorRepository{db: db}
}

// Create создает нового автора
func (r *authorRepository) Create(ctx context.Context, author *entity.Author) error {
	result := r.db.WithContext(ctx).Create(author)
	return result.Error
}

// GetByID получает автора по ID
func (r *authorRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Author, error) {
	var author entity.Author
	result := r.db.WithContext(ctx).First(&author, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrAuthorNotFound
		}
		return nil, result.Error
	}

	return &author, nil
}

// GetAll получает всех авторов отсортированных по имени
func (r *authorRepository) GetAll(ctx context.Context) ([]entity.Author, error) {
	var authors []entity.Author
	result := r.db.WithContext(ctx).Order("name ASC").Find(&authors)

	if result.Error != nil {
		return nil, result.Error
	}

	return authors, nil
}

// Update обновляет автора
func (r *authorRepository) Update(ctx context.Context, author *entity.Author) error {
	result := r.db.WithContext(ctx).Model(author).Where("id = ?", author.ID).Updates(map[string]interface{}{
		"name":          author.Name,
		"date_of_birth": author.DateOfBirth,
		"country":       author.Country,
	})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrAuthorNotFound
	}

	return nil
}

// Delete удаляет автора
// Книги автора удаляются каскадом на уровне БД
func (r *authorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&entity.Author{}, "id = ?", id)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrAuthorNotFound
	}

	return nil
}
