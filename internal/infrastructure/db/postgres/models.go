package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bookly/bookly-api/internal/core/domain"
)

type userModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	FirstName    string
	LastName     string
	Role         string `gorm:"not null;default:user"`
	IsVerified   bool   `gorm:"not null;default:false"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Books   []bookModel   `gorm:"foreignKey:UserID"`
	Reviews []reviewModel `gorm:"foreignKey:UserID"`
}

func (userModel) TableName() string { return "users" }

func (m *userModel) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

type bookModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title         string    `gorm:"not null"`
	Author        string    `gorm:"not null"`
	Publisher     string
	PublishedDate time.Time
	PageCount     int
	Language      string
	UserID        *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Reviews []reviewModel `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE"`
}

func (bookModel) TableName() string { return "books" }

func (m *bookModel) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

type reviewModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Rating     int        `gorm:"not null;check:rating >= 1 AND rating <= 5"`
	ReviewText string     `gorm:"not null"`
	UserID     *uuid.UUID `gorm:"type:uuid;index"`
	BookID     *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (reviewModel) TableName() string { return "reviews" }

func (m *reviewModel) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (m *userModel) toDomain() *domain.User {
	return &domain.User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Role:         m.Role,
		IsVerified:   m.IsVerified,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func userFromDomain(u *domain.User) *userModel {
	return &userModel{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Role:         u.Role,
		IsVerified:   u.IsVerified,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (m *bookModel) toDomain() domain.Book {
	b := domain.Book{
		ID:            m.ID,
		Title:         m.Title,
		Author:        m.Author,
		Publisher:     m.Publisher,
		PublishedDate: m.PublishedDate,
		PageCount:     m.PageCount,
		Language:      m.Language,
		UserID:        m.UserID,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if len(m.Reviews) > 0 {
		b.Reviews = reviewsToDomain(m.Reviews)
	}
	return b
}

func bookFromDomain(b *domain.Book) *bookModel {
	return &bookModel{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		Publisher:     b.Publisher,
		PublishedDate: b.PublishedDate,
		PageCount:     b.PageCount,
		Language:      b.Language,
		UserID:        b.UserID,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func booksToDomain(models []bookModel) []domain.Book {
	out := make([]domain.Book, 0, len(models))
	for i := range models {
		out = append(out, models[i].toDomain())
	}
	return out
}

func (m *reviewModel) toDomain() domain.Review {
	return domain.Review{
		ID:         m.ID,
		Rating:     m.Rating,
		ReviewText: m.ReviewText,
		UserID:     m.UserID,
		BookID:     m.BookID,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func reviewsToDomain(models []reviewModel) []domain.Review {
	out := make([]domain.Review, 0, len(models))
	for i := range models {
		out = append(out, models[i].toDomain())
	}
	return out
}
