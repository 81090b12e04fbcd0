package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bookly/bookly-api/internal/core/domain"
)

// ReviewRepository implements ports.ReviewRepository using GORM.
type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// AddToBook resolves the author and the book and inserts the review in a
// single transaction; any failure rolls the whole unit back.
func (r *ReviewRepository) AddToBook(ctx context.Context, userEmail string, bookID uuid.UUID, review *domain.Review) (*domain.Review, error) {
	var m reviewModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user userModel
		if err := tx.Where("email = ?", userEmail).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrUserNotFound
			}
			return fmt.Errorf("find review author: %w", err)
		}

		var book bookModel
		if err := tx.Select("id").First(&book, "id = ?", bookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrBookNotFound
			}
			return fmt.Errorf("find reviewed book: %w", err)
		}

		m = reviewModel{
			ID:         review.ID,
			Rating:     review.Rating,
			ReviewText: review.ReviewText,
			UserID:     &user.ID,
			BookID:     &book.ID,
			CreatedAt:  review.CreatedAt,
			UpdatedAt:  review.UpdatedAt,
		}
		if err := tx.Create(&m).Error; err != nil {
			return fmt.Errorf("insert review: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := m.toDomain()
	return &out, nil
}
