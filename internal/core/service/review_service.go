package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bookly/bookly-api/internal/core/domain"
	"github.com/bookly/bookly-api/internal/core/ports"
)

type ReviewService struct {
	repo   ports.ReviewRepository
	logger zerolog.Logger
}

func NewReviewService(repo ports.ReviewRepository, logger zerolog.Logger) *ReviewService {
	return &ReviewService{repo: repo, logger: logger}
}

// AddReview attaches a review by the current user to a book.
func (s *ReviewService) AddReview(ctx context.Context, in ports.CreateReviewInput) (*domain.Review, error) {
	bookID, err := uuid.Parse(in.BookID)
	if err != nil {
		return nil, fmt.Errorf("%w: book id", domain.ErrInvalidInput)
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrInvalidInput)
	}

	now := time.Now().UTC()
	review, err := s.repo.AddToBook(ctx, in.UserEmail, bookID, &domain.Review{
		Rating:     in.Rating,
		ReviewText: in.ReviewText,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("review_id", review.ID.String()).Str("book_id", in.BookID).Msg("review added")
	return review, nil
}
