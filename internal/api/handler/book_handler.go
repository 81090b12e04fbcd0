package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bookly/bookly-api/internal/api/metrics"
	"github.com/bookly/bookly-api/internal/core/ports"
)

// BookHandler handles HTTP requests for the book catalog.
type BookHandler struct {
	service ports.BookService
}

func NewBookHandler(service ports.BookService) *BookHandler {
	return &BookHandler{service: service}
}

// List handles GET /api/v1/books.
//
// @Summary      List books
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Book
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /books [get]
func (h *BookHandler) List(c echo.Context) error {
	books, err := h.service.ListBooks(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, books)
}

// ListByUser handles GET /api/v1/books/user/:user_id.
//
// @Summary      List the books created by a user
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Param        user_id  path      string  true  "User ID"
// @Success      200      {array}   domain.Book
// @Failure      400      {object}  errorResponse
// @Failure      403      {object}  errorResponse
// @Router       /books/user/{user_id} [get]
func (h *BookHandler) ListByUser(c echo.Context) error {
	books, err := h.service.ListUserBooks(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, books)
}

// Create handles POST /api/v1/books. The book is owned by the caller.
//
// @Summary      Create a book
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createBookRequest  true  "Book details"
// @Success      201   {object}  domain.Book
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /books [post]
func (h *BookHandler) Create(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req createBookRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	published, err := parseDate(req.PublishedDate)
	if err != nil {
		return err
	}

	book, err := h.service.CreateBook(c.Request().Context(), ports.CreateBookInput{
		Title:         req.Title,
		Author:        req.Author,
		Publisher:     req.Publisher,
		PublishedDate: published,
		PageCount:     req.PageCount,
		Language:      req.Language,
		OwnerID:       p.Claims.User.UserUID,
	})
	if err != nil {
		return err
	}
	metrics.BooksCreatedTotal.Inc()

	c.Response().Header().Set(echo.HeaderLocation, "/api/v1/books/"+book.ID.String())
	return c.JSON(http.StatusCreated, book)
}

// Get handles GET /api/v1/books/:id.
//
// @Summary      Get a book with its reviews
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Book ID"
// @Success      200  {object}  domain.Book
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /books/{id} [get]
func (h *BookHandler) Get(c echo.Context) error {
	book, err := h.service.GetBook(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, book)
}

// Update handles PATCH /api/v1/books/:id. Absent fields are left unchanged.
//
// @Summary      Update a book
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Book ID"
// @Param        body  body      updateBookRequest  true  "Fields to change"
// @Success      200   {object}  domain.Book
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /books/{id} [patch]
func (h *BookHandler) Update(c echo.Context) error {
	var req updateBookRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	update, err := req.toDomain()
	if err != nil {
		return err
	}

	book, err := h.service.UpdateBook(c.Request().Context(), c.Param("id"), update)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, book)
}

// Delete handles DELETE /api/v1/books/:id. Admin only.
//
// @Summary      Delete a book
// @Tags         books
// @Security     BearerAuth
// @Param        id   path  string  true  "Book ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /books/{id} [delete]
func (h *BookHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteBook(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
