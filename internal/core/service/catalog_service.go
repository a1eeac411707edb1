package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/greenfield-library/lending-system/internal/core/domain"
	"github.com/greenfield-library/lending-system/internal/core/ports"
)

// CatalogService owns the book lifecycle: adding titles and toggling
// availability. The derived availability flip on approval lives in
// RequestService; SetAvailability here is the manual admin overwrite.
type CatalogService struct {
	books  ports.BookRepository
	events ports.EventSink
	logger zerolog.Logger
}

func NewCatalogService(books ports.BookRepository, events ports.EventSink, logger zerolog.Logger) *CatalogService {
	return &CatalogService{books: books, events: events, logger: logger}
}

// AddBook creates a new available book and announces it on the notification
// topic once persisted.
func (s *CatalogService) AddBook(ctx context.Context, input ports.AddBookInput) (*domain.Book, error) {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Author) == "" {
		return nil, fmt.Errorf("%w: title and author are required", domain.ErrValidation)
	}

	book := &domain.Book{
		ID:       uuid.NewString(),
		Title:    input.Title,
		Author:   input.Author,
		Semester: input.Semester,
		Category: input.Category,
		Status:   domain.StatusAvailable,
	}

	if err := s.books.Insert(ctx, book); err != nil {
		s.logger.Error().Err(err).Str("title", input.Title).Msg("failed to add book")
		return nil, err
	}

	s.logger.Info().Str("book_id", book.ID).Str("title", book.Title).Msg("book added")

	s.events.Emit(ports.Event{
		Kind:    ports.EventBookAdded,
		Subject: "New Book",
		Message: fmt.Sprintf("%s by %s", book.Title, book.Author),
		Key:     book.ID,
		At:      time.Now().UTC(),
	})

	return book, nil
}

// SetAvailability overwrites the availability flag. Marking a book available
// again does not retroactively change any request status.
func (s *CatalogService) SetAvailability(ctx context.Context, bookID string, status domain.BookStatus) (*domain.Book, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}

	book, err := s.books.SetStatus(ctx, bookID, status)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("book_id", bookID).Str("status", string(status)).Msg("availability overridden")
	return book, nil
}

// ListBooks returns books matching the filter. Category and status are
// served by the store's indexes; the search filter runs here, case
// insensitively over title and author, matching the browsing behavior.
func (s *CatalogService) ListBooks(ctx context.Context, input ports.ListBooksInput) ([]*domain.Book, error) {
	if input.Status != "" && !domain.BookStatus(input.Status).IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, input.Status)
	}

	books, err := s.books.List(ctx, ports.BookFilter{
		Category: input.Category,
		Status:   domain.BookStatus(input.Status),
	})
	if err != nil {
		return nil, err
	}

	if search := strings.ToLower(strings.TrimSpace(input.Search)); search != "" {
		matched := books[:0]
		for _, b := range books {
			if strings.Contains(strings.ToLower(b.Title), search) ||
				strings.Contains(strings.ToLower(b.Author), search) {
				matched = append(matched, b)
			}
		}
		books = matched
	}

	// Available books first, then by title, mirroring the browse view.
	sort.Slice(books, func(i, j int) bool {
		if (books[i].Status == domain.StatusAvailable) != (books[j].Status == domain.StatusAvailable) {
			return books[i].Status == domain.StatusAvailable
		}
		return books[i].Title < books[j].Title
	})

	return books, nil
}

// Categories returns the sorted distinct categories in the catalog.
func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	return s.books.Categories(ctx)
}

// GetBook fetches a single book by id.
func (s *CatalogService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	return s.books.FindByID(ctx, bookID)
}
