package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/bookly/bookly-api/internal/core/domain"
)

// BookRepository defines persistence operations for books.
type BookRepository interface {
	// List returns all books, newest first.
	List(ctx context.Context) ([]domain.Book, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Book, error)
	// Get returns the book with its reviews.
	Get(ctx context.Context, id uuid.UUID) (*domain.Book, error)
	Create(ctx context.Context, book *domain.Book) (*domain.Book, error)
	Update(ctx context.Context, id uuid.UUID, update domain.BookUpdate) (*domain.Book, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ReviewRepository defines persistence operations for reviews.
type ReviewRepository interface {
	// AddToBook stores review for bookID authored by the user with userEmail.
	// Both must exist; the lookup and insert share one transaction.
	AddToBook(ctx context.Context, userEmail string, bookID uuid.UUID, review *domain.Review) (*domain.Review, error)
}
