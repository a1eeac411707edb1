package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/greenfield-library/lending-system/internal/core/domain"
	"github.com/greenfield-library/lending-system/internal/core/ports"
)

// RequestHandler handles HTTP requests for the borrow workflow.
type RequestHandler struct {
	service ports.RequestService
}

func NewRequestHandler(service ports.RequestService) *RequestHandler {
	return &RequestHandler{service: service}
}

type submitRequestRequest struct {
	BookID string `json:"book_id" validate:"required"`
}

type requestResponse struct {
	ID        string `json:"id"`
	BookID    string `json:"book_id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

type requestDetailResponse struct {
	ID        string `json:"id"`
	UserName  string `json:"name"`
	UserEmail string `json:"email"`
	BookTitle string `json:"title"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

type listRequestsResponse struct {
	Requests []requestDetailResponse `json:"requests"`
	Total    int                     `json:"total"`
}

func toRequestResponse(r *domain.Request) requestResponse {
	return requestResponse{
		ID:        r.ID,
		BookID:    r.BookID,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Submit handles POST /v1/requests.
//
// @Summary      Submit a borrow request
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      submitRequestRequest  true  "Requested book"
// @Success      201   {object}  requestResponse
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /v1/requests [post]
func (h *RequestHandler) Submit(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req submitRequestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	created, err := h.service.Submit(c.Request().Context(), ports.SubmitRequestInput{
		UserID:    caller.UserID,
		UserEmail: caller.Email,
		UserName:  caller.Name,
		BookID:    req.BookID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toRequestResponse(created))
}

// Approve handles POST /v1/requests/:id/approve.
//
// @Summary      Approve a pending request
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request id"
// @Success      200  {object}  requestResponse
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /v1/requests/{id}/approve [post]
func (h *RequestHandler) Approve(c echo.Context) error {
	approved, err := h.service.Approve(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRequestResponse(approved))
}

// List handles GET /v1/requests?user_id=&status=. Students only ever see
// their own records; the service enforces the scoping from the caller role.
//
// @Summary      List requests
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        user_id  query     string  false  "Filter by user (admin only)"
// @Param        status   query     string  false  "pending or approved"
// @Success      200      {object}  listRequestsResponse
// @Router       /v1/requests [get]
func (h *RequestHandler) List(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	details, err := h.service.List(c.Request().Context(), ports.ListRequestsInput{
		CallerRole: caller.Role,
		CallerID:   caller.UserID,
		UserID:     c.QueryParam("user_id"),
		Status:     c.QueryParam("status"),
	})
	if err != nil {
		return err
	}

	rows := make([]requestDetailResponse, 0, len(details))
	for _, d := range details {
		rows = append(rows, requestDetailResponse{
			ID:        d.ID,
			UserName:  d.UserName,
			UserEmail: d.UserEmail,
			BookTitle: d.BookTitle,
			Status:    d.Status,
			CreatedAt: d.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusOK, listRequestsResponse{Requests: rows, Total: len(rows)})
}

// MyBooks handles GET /v1/my-books, the books the student currently holds.
//
// @Summary      List the caller's approved books
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listBooksResponse
// @Router       /v1/my-books [get]
func (h *RequestHandler) MyBooks(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	books, err := h.service.MyBooks(c.Request().Context(), caller.UserID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listBooksResponse{Books: books, Total: len(books)})
}
