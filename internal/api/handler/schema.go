package handler

import (
	"fmt"
	"time"

	"github.com/bookly/bookly-api/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error      string `json:"error"`
	Reason     string `json:"reason,omitempty"`
	Resolution string `json:"resolution,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type signupRequest struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required,min=8,max=100"`
}

type passwordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type passwordResetConfirmRequest struct {
	NewPassword     string `json:"new_password"     validate:"required,password"`
	ConfirmPassword string `json:"confirm_password" validate:"required,password"`
}

type sendMailRequest struct {
	EmailAddresses []string `json:"email_addresses" validate:"required,min=1,dive,email"`
	Subject        string   `json:"subject"`
	Body           string   `json:"body"`
}

type userResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

type loginUser struct {
	Email   string `json:"email"`
	UserUID string `json:"user_uid"`
}

type loginResponse struct {
	Message     string    `json:"message"`
	AccessToken string    `json:"access_token"`
	User        loginUser `json:"user"`
}

type accessTokenResponse struct {
	AccessToken string `json:"access_token"`
}

// --- Books ---

type createBookRequest struct {
	Title         string `json:"title"          validate:"required,max=255"`
	Author        string `json:"author"         validate:"required,max=255"`
	Publisher     string `json:"publisher"      validate:"required,max=255"`
	PublishedDate string `json:"published_date" validate:"required"`
	PageCount     int    `json:"page_count"     validate:"gt=0"`
	Language      string `json:"language"       validate:"required,max=64"`
}

type updateBookRequest struct {
	Title         *string `json:"title"          validate:"omitempty,min=1,max=255"`
	Author        *string `json:"author"         validate:"omitempty,min=1,max=255"`
	Publisher     *string `json:"publisher"      validate:"omitempty,max=255"`
	PublishedDate *string `json:"published_date"`
	PageCount     *int    `json:"page_count"     validate:"omitempty,gt=0"`
	Language      *string `json:"language"       validate:"omitempty,max=64"`
}

func (r updateBookRequest) toDomain() (domain.BookUpdate, error) {
	u := domain.BookUpdate{
		Title:     r.Title,
		Author:    r.Author,
		Publisher: r.Publisher,
		PageCount: r.PageCount,
		Language:  r.Language,
	}
	if r.PublishedDate != nil {
		d, err := parseDate(*r.PublishedDate)
		if err != nil {
			return domain.BookUpdate{}, err
		}
		u.PublishedDate = &d
	}
	return u, nil
}

// --- Reviews ---

type createReviewRequest struct {
	Rating     int    `json:"rating"      validate:"min=1,max=5"`
	ReviewText string `json:"review_text" validate:"required"`
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// parseDate accepts RFC 3339 timestamps as well as plain dates.
func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: published_date must be a date (YYYY-MM-DD) or RFC 3339 timestamp", domain.ErrInvalidInput)
}
