package ports

import (
	"context"
	"time"

	"github.com/bookly/bookly-api/internal/core/domain"
)

// CreateBookInput carries the fields of a new book.
type CreateBookInput struct {
	Title         string
	Author        string
	Publisher     string
	PublishedDate time.Time
	PageCount     int
	Language      string
	OwnerID       string
}

// BookService defines use-case operations for books.
type BookService interface {
	ListBooks(ctx context.Context) ([]domain.Book, error)
	ListUserBooks(ctx context.Context, userID string) ([]domain.Book, error)
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	CreateBook(ctx context.Context, in CreateBookInput) (*domain.Book, error)
	UpdateBook(ctx context.Context, id string, update domain.BookUpdate) (*domain.Book, error)
	DeleteBook(ctx context.Context, id string) error
}

// CreateReviewInput carries a new review.
type CreateReviewInput struct {
	UserEmail  string
	BookID     string
	Rating     int
	ReviewText string
}

// ReviewService defines use-case operations for reviews.
type ReviewService interface {
	AddReview(ctx context.Context, in CreateReviewInput) (*domain.Review, error)
}
