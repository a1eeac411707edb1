package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/greenfield-library/lending-system/internal/core/domain"
	"github.com/greenfield-library/lending-system/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, name, email, password, role string) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (string, *domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, name, email, password, role string) (*domain.User, error) {
	return s.registerFn(ctx, name, email, password, role)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

type stubCatalogService struct {
	addFn        func(ctx context.Context, input ports.AddBookInput) (*domain.Book, error)
	setStatusFn  func(ctx context.Context, bookID string, status domain.BookStatus) (*domain.Book, error)
	listFn       func(ctx context.Context, input ports.ListBooksInput) ([]*domain.Book, error)
	categoriesFn func(ctx context.Context) ([]string, error)
}

func (s *stubCatalogService) AddBook(ctx context.Context, input ports.AddBookInput) (*domain.Book, error) {
	return s.addFn(ctx, input)
}

func (s *stubCatalogService) SetAvailability(ctx context.Context, bookID string, status domain.BookStatus) (*domain.Book, error) {
	return s.setStatusFn(ctx, bookID, status)
}

func (s *stubCatalogService) ListBooks(ctx context.Context, input ports.ListBooksInput) ([]*domain.Book, error) {
	return s.listFn(ctx, input)
}

func (s *stubCatalogService) Categories(ctx context.Context) ([]string, error) {
	return s.categoriesFn(ctx)
}

func (s *stubCatalogService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	panic("unexpected GetBook call")
}

type stubRequestService struct {
	submitFn    func(ctx context.Context, input ports.SubmitRequestInput) (*domain.Request, error)
	approveFn   func(ctx context.Context, requestID string) (*domain.Request, error)
	listFn      func(ctx context.Context, input ports.ListRequestsInput) ([]ports.RequestDetail, error)
	myBooksFn   func(ctx context.Context, userID string) ([]*domain.Book, error)
	studentsFn  func(ctx context.Context, search string) ([]ports.StudentSummary, error)
	detailFn    func(ctx context.Context, studentID string) (*ports.StudentDetail, error)
	dashboardFn func(ctx context.Context) (*ports.DashboardStats, error)
}

func (s *stubRequestService) Submit(ctx context.Context, input ports.SubmitRequestInput) (*domain.Request, error) {
	return s.submitFn(ctx, input)
}

func (s *stubRequestService) Approve(ctx context.Context, requestID string) (*domain.Request, error) {
	return s.approveFn(ctx, requestID)
}

func (s *stubRequestService) List(ctx context.Context, input ports.ListRequestsInput) ([]ports.RequestDetail, error) {
	return s.listFn(ctx, input)
}

func (s *stubRequestService) MyBooks(ctx context.Context, userID string) ([]*domain.Book, error) {
	return s.myBooksFn(ctx, userID)
}

func (s *stubRequestService) StudentStats(ctx context.Context, userID string) (*ports.StudentStats, error) {
	panic("unexpected StudentStats call")
}

func (s *stubRequestService) ListStudents(ctx context.Context, search string) ([]ports.StudentSummary, error) {
	return s.studentsFn(ctx, search)
}

func (s *stubRequestService) StudentDetail(ctx context.Context, studentID string) (*ports.StudentDetail, error) {
	return s.detailFn(ctx, studentID)
}

func (s *stubRequestService) DashboardStats(ctx context.Context) (*ports.DashboardStats, error) {
	return s.dashboardFn(ctx)
}

func (s *stubRequestService) ReconcileAvailability(ctx context.Context) (int, error) {
	panic("unexpected ReconcileAvailability call")
}

// newTestContext builds an echo context with the request validator wired in,
// the way the router configures the real instance.
func newTestContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// asCaller injects the identity claims the auth middleware would set.
func asCaller(c echo.Context, userID, email, name, role string) {
	c.Set("user_id", userID)
	c.Set("email", email)
	c.Set("name", name)
	c.Set("role", role)
}

func httpStatusOf(err error) int {
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return 0
}
