package ports

import (
	"context"
	"time"

	"github.com/greenfield-library/lending-system/internal/core/domain"
)

// SubmitRequestInput carries the data needed to submit a borrow request.
// Email and name are denormalized onto the request record for notifications
// and admin display.
type SubmitRequestInput struct {
	UserID    string
	UserEmail string
	UserName  string
	BookID    string
}

// ListRequestsInput carries the request listing filters. CallerRole and
// CallerID enforce scoping: students only ever see their own records.
type ListRequestsInput struct {
	CallerRole string
	CallerID   string
	UserID     string
	Status     string
}

// RequestDetail is a request enriched with the book title for display.
type RequestDetail struct {
	ID        string
	UserName  string
	UserEmail string
	BookID    string
	BookTitle string
	Status    string
	CreatedAt time.Time
}

// StudentStats are derived counters folded from the authoritative request
// set; nothing is stored.
type StudentStats struct {
	TotalRequests int
	ApprovedCount int
	PendingCount  int
}

// StudentSummary is a roster row: a student plus their request stats.
type StudentSummary struct {
	ID    string
	Name  string
	Email string
	Stats StudentStats
}

// StudentRequestDetail is one row of a student's request history.
type StudentRequestDetail struct {
	ID        string
	Status    string
	BookTitle string
	Author    string
	Category  string
	CreatedAt time.Time
}

// StudentDetail is the admin view of a single student.
type StudentDetail struct {
	ID       string
	Name     string
	Email    string
	Stats    StudentStats
	Requests []StudentRequestDetail
}

// DashboardStats are the admin dashboard counters. BooksLentOut counts books
// currently unavailable, which includes manual admin toggles on top of
// approval-driven flips.
type DashboardStats struct {
	TotalBooks           int64
	ApprovedRequestCount int64
	BooksLentOut         int64
	TotalRequestCount    int64
}

// RequestService defines the request-fulfillment workflow.
type RequestService interface {
	Submit(ctx context.Context, input SubmitRequestInput) (*domain.Request, error)
	Approve(ctx context.Context, requestID string) (*domain.Request, error)
	List(ctx context.Context, input ListRequestsInput) ([]RequestDetail, error)
	// MyBooks returns the books a student currently holds via approved
	// requests, sorted by title.
	MyBooks(ctx context.Context, userID string) ([]*domain.Book, error)
	StudentStats(ctx context.Context, userID string) (*StudentStats, error)
	ListStudents(ctx context.Context, search string) ([]StudentSummary, error)
	StudentDetail(ctx context.Context, studentID string) (*StudentDetail, error)
	DashboardStats(ctx context.Context) (*DashboardStats, error)
	// ReconcileAvailability repairs the derived availability flag: every
	// book referenced by an approved request must read unavailable. Returns
	// the number of books repaired.
	ReconcileAvailability(ctx context.Context) (int, error)
}
