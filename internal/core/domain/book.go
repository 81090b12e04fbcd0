package domain

import (
	"time"

	"github.com/google/uuid"
)

// Book is a catalog entry owned by the user that created it.
type Book struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Author        string     `json:"author"`
	Publisher     string     `json:"publisher"`
	PublishedDate time.Time  `json:"published_date"`
	PageCount     int        `json:"page_count"`
	Language      string     `json:"language"`
	UserID        *uuid.UUID `json:"user_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Reviews       []Review   `json:"reviews,omitempty"`
}

// BookUpdate carries a partial update; nil fields are left untouched.
type BookUpdate struct {
	Title         *string
	Author        *string
	Publisher     *string
	PublishedDate *time.Time
	PageCount     *int
	Language      *string
}

// Review is a rating left by a user on a book.
type Review struct {
	ID         uuid.UUID  `json:"id"`
	Rating     int        `json:"rating"`
	ReviewText string     `json:"review_text"`
	UserID     *uuid.UUID `json:"user_id"`
	BookID     *uuid.UUID `json:"book_id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
