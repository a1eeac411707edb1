package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/greenfield-library/lending-system/internal/core/domain"
	"github.com/greenfield-library/lending-system/internal/core/ports"
)

// CatalogHandler handles HTTP requests for catalog operations.
type CatalogHandler struct {
	service ports.CatalogService
}

func NewCatalogHandler(service ports.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

type addBookRequest struct {
	Title    string `json:"title" validate:"required"`
	Author   string `json:"author" validate:"required"`
	Semester string `json:"semester"`
	Category string `json:"category"`
}

type setStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=available unavailable"`
}

type listBooksResponse struct {
	Books []*domain.Book `json:"books"`
	Total int            `json:"total"`
}

// Create handles POST /v1/books.
//
// @Summary      Add a book to the catalog
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      addBookRequest  true  "Book details"
// @Success      201   {object}  domain.Book
// @Failure      400   {object}  map[string]string
// @Router       /v1/books [post]
func (h *CatalogHandler) Create(c echo.Context) error {
	var req addBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	book, err := h.service.AddBook(c.Request().Context(), ports.AddBookInput{
		Title:    req.Title,
		Author:   req.Author,
		Semester: req.Semester,
		Category: req.Category,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, book)
}

// SetStatus handles PATCH /v1/books/:id/status, the admin escape hatch for
// withdrawing or re-supplying stock regardless of the request workflow.
//
// @Summary      Override a book's availability
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "Book id"
// @Param        body  body      setStatusRequest  true  "New status"
// @Success      200   {object}  domain.Book
// @Failure      404   {object}  map[string]string
// @Router       /v1/books/{id}/status [patch]
func (h *CatalogHandler) SetStatus(c echo.Context) error {
	var req setStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	book, err := h.service.SetAvailability(c.Request().Context(), c.Param("id"), domain.BookStatus(req.Status))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, book)
}

// List handles GET /v1/books?category=&status=&search=.
//
// @Summary      Browse the catalog
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Param        category  query     string  false  "Exact category match"
// @Param        status    query     string  false  "available or unavailable"
// @Param        search    query     string  false  "Substring match on title/author"
// @Success      200       {object}  listBooksResponse
// @Router       /v1/books [get]
func (h *CatalogHandler) List(c echo.Context) error {
	books, err := h.service.ListBooks(c.Request().Context(), ports.ListBooksInput{
		Category: c.QueryParam("category"),
		Status:   c.QueryParam("status"),
		Search:   c.QueryParam("search"),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listBooksResponse{Books: books, Total: len(books)})
}

// Categories handles GET /v1/books/categories.
//
// @Summary      List distinct catalog categories
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  string
// @Router       /v1/books/categories [get]
func (h *CatalogHandler) Categories(c echo.Context) error {
	cats, err := h.service.Categories(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string][]string{"categories": cats})
}
