package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/greenfield-library/lending-system/internal/core/ports"
)

// AdminHandler handles the admin roster and dashboard views.
type AdminHandler struct {
	service ports.RequestService
}

func NewAdminHandler(service ports.RequestService) *AdminHandler {
	return &AdminHandler{service: service}
}

type studentRow struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	TotalRequests int    `json:"total_requests"`
	Approved      int    `json:"approved"`
	Pending       int    `json:"pending"`
}

type listStudentsResponse struct {
	Students []studentRow `json:"students"`
	Total    int          `json:"total"`
}

type studentRequestRow struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Category  string `json:"category"`
	CreatedAt string `json:"created_at"`
}

type studentDetailResponse struct {
	Student  studentRow          `json:"student"`
	Requests []studentRequestRow `json:"requests"`
}

type dashboardResponse struct {
	TotalBooks           int64 `json:"total_books"`
	ApprovedRequestCount int64 `json:"approved_requests"`
	BooksLentOut         int64 `json:"books_lent_out"`
	TotalRequestCount    int64 `json:"total_requests"`
}

// Students handles GET /v1/students?search=.
//
// @Summary      List students with request stats
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        search  query     string  false  "Substring match on name/email"
// @Success      200     {object}  listStudentsResponse
// @Router       /v1/students [get]
func (h *AdminHandler) Students(c echo.Context) error {
	summaries, err := h.service.ListStudents(c.Request().Context(), c.QueryParam("search"))
	if err != nil {
		return err
	}

	rows := make([]studentRow, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, studentRow{
			ID:            s.ID,
			Name:          s.Name,
			Email:         s.Email,
			TotalRequests: s.Stats.TotalRequests,
			Approved:      s.Stats.ApprovedCount,
			Pending:       s.Stats.PendingCount,
		})
	}

	return c.JSON(http.StatusOK, listStudentsResponse{Students: rows, Total: len(rows)})
}

// StudentDetail handles GET /v1/students/:id.
//
// @Summary      View a single student and their request history
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Student id"
// @Success      200  {object}  studentDetailResponse
// @Failure      404  {object}  map[string]string
// @Router       /v1/students/{id} [get]
func (h *AdminHandler) StudentDetail(c echo.Context) error {
	detail, err := h.service.StudentDetail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	rows := make([]studentRequestRow, 0, len(detail.Requests))
	for _, r := range detail.Requests {
		rows = append(rows, studentRequestRow{
			ID:        r.ID,
			Status:    r.Status,
			Title:     r.BookTitle,
			Author:    r.Author,
			Category:  r.Category,
			CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusOK, studentDetailResponse{
		Student: studentRow{
			ID:            detail.ID,
			Name:          detail.Name,
			Email:         detail.Email,
			TotalRequests: detail.Stats.TotalRequests,
			Approved:      detail.Stats.ApprovedCount,
			Pending:       detail.Stats.PendingCount,
		},
		Requests: rows,
	})
}

// Dashboard handles GET /v1/dashboard. Counters are recomputed from the
// store on every call; nothing is cached.
//
// @Summary      Admin dashboard counters
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dashboardResponse
// @Router       /v1/dashboard [get]
func (h *AdminHandler) Dashboard(c echo.Context) error {
	stats, err := h.service.DashboardStats(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dashboardResponse{
		TotalBooks:           stats.TotalBooks,
		ApprovedRequestCount: stats.ApprovedRequestCount,
		BooksLentOut:         stats.BooksLentOut,
		TotalRequestCount:    stats.TotalRequestCount,
	})
}
