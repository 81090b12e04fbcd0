package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bookly/bookly-api/internal/core/domain"
	"github.com/bookly/bookly-api/internal/core/ports"
)

type BookService struct {
	repo   ports.BookRepository
	logger zerolog.Logger
}

func NewBookService(repo ports.BookRepository, logger zerolog.Logger) *BookService {
	return &BookService{repo: repo, logger: logger}
}

// ListBooks returns every book, newest first.
func (s *BookService) ListBooks(ctx context.Context) ([]domain.Book, error) {
	books, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// ListUserBooks returns the books created by userID.
func (s *BookService) ListUserBooks(ctx context.Context, userID string) ([]domain.Book, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user id", domain.ErrInvalidInput)
	}
	books, err := s.repo.ListByUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list user books: %w", err)
	}
	return books, nil
}

func (s *BookService) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	bookID, err := parseBookID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, bookID)
}

// CreateBook stores a new book owned by in.OwnerID.
func (s *BookService) CreateBook(ctx context.Context, in ports.CreateBookInput) (*domain.Book, error) {
	ownerID, err := uuid.Parse(in.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("%w: owner id", domain.ErrInvalidInput)
	}

	now := time.Now().UTC()
	book, err := s.repo.Create(ctx, &domain.Book{
		Title:         strings.TrimSpace(in.Title),
		Author:        strings.TrimSpace(in.Author),
		Publisher:     strings.TrimSpace(in.Publisher),
		PublishedDate: in.PublishedDate,
		PageCount:     in.PageCount,
		Language:      in.Language,
		UserID:        &ownerID,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create book")
		return nil, err
	}

	s.logger.Info().Str("book_id", book.ID.String()).Str("user_id", in.OwnerID).Msg("book created")
	return book, nil
}

func (s *BookService) UpdateBook(ctx context.Context, id string, update domain.BookUpdate) (*domain.Book, error) {
	bookID, err := parseBookID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, bookID, update)
}

func (s *BookService) DeleteBook(ctx context.Context, id string) error {
	bookID, err := parseBookID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, bookID); err != nil {
		return err
	}
	s.logger.Info().Str("book_id", id).Msg("book deleted")
	return nil
}

func parseBookID(id string) (uuid.UUID, error) {
	bookID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: book id", domain.ErrInvalidInput)
	}
	return bookID, nil
}
