package ports

import (
	"context"

	"github.com/greenfield-library/lending-system/internal/core/domain"
)

// RequestFilter narrows a request listing. An empty field means no filter.
type RequestFilter struct {
	UserID string
	Status domain.RequestStatus
}

// RequestRepository defines persistence operations for borrow requests.
type RequestRepository interface {
	// Insert persists a new request. The store enforces the at-most-one
	// unresolved request per (user, book) invariant with a conditional
	// write; a violation surfaces as domain.ErrDuplicateRequest.
	Insert(ctx context.Context, r *domain.Request) error
	FindByID(ctx context.Context, id string) (*domain.Request, error)
	// Approve flips the request to approved if and only if it is still
	// pending, and returns the updated request. A missing id yields
	// domain.ErrRequestNotFound; an already-approved request yields
	// domain.ErrAlreadyApproved.
	Approve(ctx context.Context, id string) (*domain.Request, error)
	List(ctx context.Context, filter RequestFilter) ([]*domain.Request, error)
	Count(ctx context.Context, filter RequestFilter) (int64, error)
	// BookIDsWithStatus returns the distinct book ids referenced by
	// requests in the given status.
	BookIDsWithStatus(ctx context.Context, status domain.RequestStatus) ([]string, error)
}
