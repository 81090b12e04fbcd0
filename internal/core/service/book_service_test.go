package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bookly/bookly-api/internal/core/domain"
	"github.com/bookly/bookly-api/internal/core/ports"
)

func newTestBookService() (*BookService, *stubBookRepo) {
	repo := newStubBookRepo()
	return NewBookService(repo, zerolog.Nop()), repo
}

func TestCreateBook_SetsOwner(t *testing.T) {
	svc, _ := newTestBookService()
	owner := uuid.New()

	b, err := svc.CreateBook(context.Background(), ports.CreateBookInput{
		Title:         "  Dune ",
		Author:        "Frank Herbert",
		Publisher:     "Chilton",
		PublishedDate: time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC),
		PageCount:     412,
		Language:      "en",
		OwnerID:       owner.String(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.Title != "Dune" {
		t.Fatalf("title not trimmed: %q", b.Title)
	}
	if b.UserID == nil || *b.UserID != owner {
		t.Fatalf("owner not set: %v", b.UserID)
	}

	mine, _ := svc.ListUserBooks(context.Background(), owner.String())
	if len(mine) != 1 {
		t.Fatalf("expected 1 book for owner, got %d", len(mine))
	}
}

func TestCreateBook_InvalidOwner(t *testing.T) {
	svc, _ := newTestBookService()

	_, err := svc.CreateBook(context.Background(), ports.CreateBookInput{Title: "x", OwnerID: "not-a-uuid"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestBookService_InvalidIDs(t *testing.T) {
	svc, _ := newTestBookService()
	ctx := context.Background()

	if _, err := svc.GetBook(ctx, "42"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("get: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.UpdateBook(ctx, "42", domain.BookUpdate{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("update: expected ErrInvalidInput, got %v", err)
	}
	if err := svc.DeleteBook(ctx, "42"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("delete: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.ListUserBooks(ctx, "42"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("list user: expected ErrInvalidInput, got %v", err)
	}
}

func TestBookService_NotFound(t *testing.T) {
	svc, _ := newTestBookService()
	ctx := context.Background()
	id := uuid.NewString()

	if _, err := svc.GetBook(ctx, id); !errors.Is(err, domain.ErrBookNotFound) {
		t.Fatalf("get: expected ErrBookNotFound, got %v", err)
	}
	if err := svc.DeleteBook(ctx, id); !errors.Is(err, domain.ErrBookNotFound) {
		t.Fatalf("delete: expected ErrBookNotFound, got %v", err)
	}
}

func TestUpdateBook_Partial(t *testing.T) {
	svc, _ := newTestBookService()
	ctx := context.Background()

	b, _ := svc.CreateBook(ctx, ports.CreateBookInput{Title: "Old", Author: "A", PageCount: 10, OwnerID: uuid.NewString()})

	title := "New"
	got, err := svc.UpdateBook(ctx, b.ID.String(), domain.BookUpdate{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Title != "New" || got.Author != "A" || got.PageCount != 10 {
		t.Fatalf("unexpected book: %+v", got)
	}
}

func TestDeleteBook(t *testing.T) {
	svc, repo := newTestBookService()
	ctx := context.Background()

	b, _ := svc.CreateBook(ctx, ports.CreateBookInput{Title: "Gone", OwnerID: uuid.NewString()})
	if err := svc.DeleteBook(ctx, b.ID.String()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(repo.books) != 0 {
		t.Fatal("book still stored")
	}
}
