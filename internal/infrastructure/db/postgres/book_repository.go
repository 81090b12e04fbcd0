package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bookly/bookly-api/internal/core/domain"
)

// BookRepository implements ports.BookRepository using GORM.
type BookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) *BookRepository {
	return &BookRepository{db: db}
}

func (r *BookRepository) List(ctx context.Context) ([]domain.Book, error) {
	var models []bookModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return booksToDomain(models), nil
}

func (r *BookRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Book, error) {
	var models []bookModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("list user books: %w", err)
	}
	return booksToDomain(models), nil
}

func (r *BookRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	m, err := r.load(r.db.WithContext(ctx).Preload("Reviews", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC")
	}), id)
	if err != nil {
		return nil, err
	}
	b := m.toDomain()
	return &b, nil
}

func (r *BookRepository) Create(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	m := bookFromDomain(book)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, fmt.Errorf("insert book: %w", err)
	}
	b := m.toDomain()
	return &b, nil
}

// Update applies the non-nil fields of update and returns the stored book.
func (r *BookRepository) Update(ctx context.Context, id uuid.UUID, update domain.BookUpdate) (*domain.Book, error) {
	var out *bookModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := r.load(tx, id)
		if err != nil {
			return err
		}

		changes := bookChanges(update)
		if len(changes) > 0 {
			if err := tx.Model(m).Updates(changes).Error; err != nil {
				return fmt.Errorf("update book: %w", err)
			}
		}
		out, err = r.load(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	b := out.toDomain()
	return &b, nil
}

// Delete removes the book together with its reviews.
func (r *BookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", id).Delete(&reviewModel{}).Error; err != nil {
			return fmt.Errorf("delete reviews: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&bookModel{})
		if res.Error != nil {
			return fmt.Errorf("delete book: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrBookNotFound
		}
		return nil
	})
}

func (r *BookRepository) load(db *gorm.DB, id uuid.UUID) (*bookModel, error) {
	var m bookModel
	if err := db.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookNotFound
		}
		return nil, fmt.Errorf("find book: %w", err)
	}
	return &m, nil
}

func bookChanges(u domain.BookUpdate) map[string]any {
	changes := make(map[string]any)
	if u.Title != nil {
		changes["title"] = *u.Title
	}
	if u.Author != nil {
		changes["author"] = *u.Author
	}
	if u.Publisher != nil {
		changes["publisher"] = *u.Publisher
	}
	if u.PublishedDate != nil {
		changes["published_date"] = *u.PublishedDate
	}
	if u.PageCount != nil {
		changes["page_count"] = *u.PageCount
	}
	if u.Language != nil {
		changes["language"] = *u.Language
	}
	return changes
}
