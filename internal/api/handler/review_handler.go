package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/bookly/bookly-api/internal/api/metrics"
	"github.com/bookly/bookly-api/internal/core/ports"
)

// ReviewHandler handles HTTP requests for book reviews.
type ReviewHandler struct {
	service ports.ReviewService
}

func NewReviewHandler(service ports.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// AddToBook handles POST /api/v1/reviews/book/:id.
//
// @Summary      Review a book
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Book ID"
// @Param        body  body      createReviewRequest  true  "Review"
// @Success      201   {object}  domain.Review
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /reviews/book/{id} [post]
func (h *ReviewHandler) AddToBook(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req createReviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	review, err := h.service.AddReview(c.Request().Context(), ports.CreateReviewInput{
		UserEmail:  user.Email,
		BookID:     c.Param("id"),
		Rating:     req.Rating,
		ReviewText: req.ReviewText,
	})
	if err != nil {
		return err
	}
	metrics.ReviewsCreatedTotal.WithLabelValues(strconv.Itoa(review.Rating)).Inc()

	return c.JSON(http.StatusCreated, review)
}
