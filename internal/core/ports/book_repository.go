package ports

import (
	"context"

	"github.com/greenfield-library/lending-system/internal/core/domain"
)

// BookFilter narrows a catalog listing. Category and Status are exact-match
// and served by indexes; free-text search over title/author is applied by
// the service on the result set.
type BookFilter struct {
	Category string
	Status   domain.BookStatus
}

// BookRepository defines persistence operations for the catalog.
type BookRepository interface {
	Insert(ctx context.Context, b *domain.Book) error
	FindByID(ctx context.Context, id string) (*domain.Book, error)
	// SetStatus overwrites the availability flag unconditionally (admin
	// escape hatch and approval side effect).
	SetStatus(ctx context.Context, id string, status domain.BookStatus) (*domain.Book, error)
	// MarkUnavailableIfAvailable is the conditional write used by the
	// reconciliation pass. It reports whether a flip happened.
	MarkUnavailableIfAvailable(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, filter BookFilter) ([]*domain.Book, error)
	// Categories returns the sorted distinct category values in the catalog.
	Categories(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status domain.BookStatus) (int64, error)
}
