package ports

import (
	"context"

	"github.com/greenfield-library/lending-system/internal/core/domain"
)

// AddBookInput carries the data needed to add a book to the catalog.
type AddBookInput struct {
	Title    string
	Author   string
	Semester string
	Category string
}

// ListBooksInput carries the catalog listing filters. All filters compose
// with logical AND; Search is a case-insensitive substring match over title
// and author.
type ListBooksInput struct {
	Category string
	Status   string
	Search   string
}

// CatalogService defines use-case operations on the catalog.
type CatalogService interface {
	AddBook(ctx context.Context, input AddBookInput) (*domain.Book, error)
	// SetAvailability directly overwrites the availability flag. This is the
	// admin escape hatch, distinct from the automatic flip on approval:
	// marking a book available again does not touch any request status.
	SetAvailability(ctx context.Context, bookID string, status domain.BookStatus) (*domain.Book, error)
	ListBooks(ctx context.Context, input ListBooksInput) ([]*domain.Book, error)
	Categories(ctx context.Context) ([]string, error)
	GetBook(ctx context.Context, bookID string) (*domain.Book, error)
}
