package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/greenfield-library/lending-system/internal/core/domain"
	"github.com/greenfield-library/lending-system/internal/core/ports"
)

// maxInsertAttempts bounds the internal retry on transient store failures
// during the conditional insert. Conflicts are never retried.
const maxInsertAttempts = 3

// RequestService is the request-fulfillment workflow engine: it owns the
// pending -> approved state machine and its coupling to book availability.
type RequestService struct {
	requests ports.RequestRepository
	books    ports.BookRepository
	users    ports.UserRepository
	events   ports.EventSink
	logger   zerolog.Logger
}

func NewRequestService(
	requests ports.RequestRepository,
	books ports.BookRepository,
	users ports.UserRepository,
	events ports.EventSink,
	logger zerolog.Logger,
) *RequestService {
	return &RequestService{
		requests: requests,
		books:    books,
		users:    users,
		events:   events,
		logger:   logger,
	}
}

// Submit creates a pending request for (user, book). The store's conditional
// insert enforces that at most one unresolved request exists per pair.
// Submission is allowed while the book is unavailable: availability is
// advisory for browsing, admins may re-supply before approving.
func (s *RequestService) Submit(ctx context.Context, input ports.SubmitRequestInput) (*domain.Request, error) {
	book, err := s.books.FindByID(ctx, input.BookID)
	if err != nil {
		return nil, err
	}

	req := &domain.Request{
		ID:        uuid.NewString(),
		UserID:    input.UserID,
		UserEmail: input.UserEmail,
		UserName:  input.UserName,
		BookID:    input.BookID,
		Status:    domain.RequestPending,
		CreatedAt: time.Now().UTC(),
	}

	for attempt := 1; ; attempt++ {
		err = s.requests.Insert(ctx, req)
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrDuplicateRequest) {
			s.logger.Debug().Str("user_id", input.UserID).Str("book_id", input.BookID).Msg("duplicate request rejected")
			return nil, err
		}
		if attempt >= maxInsertAttempts || !errors.Is(err, domain.ErrStoreUnavailable) {
			s.logger.Error().Err(err).Str("book_id", input.BookID).Msg("failed to persist request")
			return nil, err
		}
		s.logger.Warn().Err(err).Int("attempt", attempt).Msg("transient store failure, retrying insert")
	}

	s.logger.Info().
		Str("request_id", req.ID).
		Str("user_id", req.UserID).
		Str("book_id", req.BookID).
		Msg("request submitted")

	s.events.Emit(ports.Event{
		Kind:    ports.EventRequestSubmitted,
		Subject: "New Request",
		Message: fmt.Sprintf("%s (%s) requested '%s'", req.UserName, req.UserEmail, book.Title),
		Key:     req.BookID,
		At:      time.Now().UTC(),
	})

	return req, nil
}

// Approve flips a pending request to approved and marks the referenced book
// unavailable. The request flip is the conditional write; if the process
// dies before the book write lands, the reconciliation pass repairs it.
func (s *RequestService) Approve(ctx context.Context, requestID string) (*domain.Request, error) {
	req, err := s.requests.Approve(ctx, requestID)
	if err != nil {
		return nil, err
	}

	bookTitle := req.BookID
	book, err := s.books.SetStatus(ctx, req.BookID, domain.StatusUnavailable)
	if err != nil {
		// Approval is already durable; availability drift is repaired by
		// ReconcileAvailability.
		s.logger.Warn().Err(err).
			Str("request_id", requestID).
			Str("book_id", req.BookID).
			Msg("book availability update failed after approval")
	} else {
		bookTitle = book.Title
	}

	s.logger.Info().
		Str("request_id", req.ID).
		Str("user_id", req.UserID).
		Str("book_id", req.BookID).
		Msg("request approved")

	s.events.Emit(ports.Event{
		Kind:    ports.EventRequestApproved,
		Subject: "Request Approved",
		Message: fmt.Sprintf("%s: Your request for '%s' was approved", req.UserEmail, bookTitle),
		Key:     req.BookID,
		At:      time.Now().UTC(),
	})

	return req, nil
}

// List returns requests enriched with book titles. Students are force-scoped
// to their own records regardless of the requested filter.
func (s *RequestService) List(ctx context.Context, input ports.ListRequestsInput) ([]ports.RequestDetail, error) {
	if input.Status != "" {
		st := domain.RequestStatus(input.Status)
		if st != domain.RequestPending && st != domain.RequestApproved {
			return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, input.Status)
		}
	}

	userID := input.UserID
	if input.CallerRole == domain.RoleStudent {
		userID = input.CallerID
	}

	reqs, err := s.requests.List(ctx, ports.RequestFilter{
		UserID: userID,
		Status: domain.RequestStatus(input.Status),
	})
	if err != nil {
		return nil, err
	}

	details := make([]ports.RequestDetail, 0, len(reqs))
	for _, r := range reqs {
		title := ""
		if book, err := s.books.FindByID(ctx, r.BookID); err == nil {
			title = book.Title
		}
		details = append(details, ports.RequestDetail{
			ID:        r.ID,
			UserName:  r.UserName,
			UserEmail: r.UserEmail,
			BookID:    r.BookID,
			BookTitle: title,
			Status:    string(r.Status),
			CreatedAt: r.CreatedAt,
		})
	}
	return details, nil
}

// MyBooks returns the books the user currently holds through approved
// requests, sorted by title.
func (s *RequestService) MyBooks(ctx context.Context, userID string) ([]*domain.Book, error) {
	reqs, err := s.requests.List(ctx, ports.RequestFilter{
		UserID: userID,
		Status: domain.RequestApproved,
	})
	if err != nil {
		return nil, err
	}

	books := make([]*domain.Book, 0, len(reqs))
	for _, r := range reqs {
		book, err := s.books.FindByID(ctx, r.BookID)
		if err != nil {
			if errors.Is(err, domain.ErrBookNotFound) {
				continue
			}
			return nil, err
		}
		books = append(books, book)
	}

	sort.Slice(books, func(i, j int) bool { return books[i].Title < books[j].Title })
	return books, nil
}

// StudentStats folds the user's requests into derived counters. Nothing is
// stored; the request set stays authoritative.
func (s *RequestService) StudentStats(ctx context.Context, userID string) (*ports.StudentStats, error) {
	reqs, err := s.requests.List(ctx, ports.RequestFilter{UserID: userID})
	if err != nil {
		return nil, err
	}
	return foldStats(reqs), nil
}

func foldStats(reqs []*domain.Request) *ports.StudentStats {
	stats := &ports.StudentStats{TotalRequests: len(reqs)}
	for _, r := range reqs {
		switch r.Status {
		case domain.RequestApproved:
			stats.ApprovedCount++
		case domain.RequestPending:
			stats.PendingCount++
		}
	}
	return stats
}

// ListStudents returns the student roster with per-student request stats,
// optionally filtered by a case-insensitive search over name and email.
func (s *RequestService) ListStudents(ctx context.Context, search string) ([]ports.StudentSummary, error) {
	students, err := s.users.ListByRole(ctx, domain.RoleStudent)
	if err != nil {
		return nil, err
	}

	reqs, err := s.requests.List(ctx, ports.RequestFilter{})
	if err != nil {
		return nil, err
	}

	byUser := make(map[string][]*domain.Request)
	for _, r := range reqs {
		byUser[r.UserID] = append(byUser[r.UserID], r)
	}

	search = strings.ToLower(strings.TrimSpace(search))
	summaries := make([]ports.StudentSummary, 0, len(students))
	for _, u := range students {
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Name), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		summaries = append(summaries, ports.StudentSummary{
			ID:    u.ID,
			Name:  u.Name,
			Email: u.Email,
			Stats: *foldStats(byUser[u.ID]),
		})
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	return summaries, nil
}

// StudentDetail returns a single student with their full request history,
// newest first, each row enriched with book details.
func (s *RequestService) StudentDetail(ctx context.Context, studentID string) (*ports.StudentDetail, error) {
	user, err := s.users.FindByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleStudent {
		return nil, domain.ErrUserNotFound
	}

	reqs, err := s.requests.List(ctx, ports.RequestFilter{UserID: studentID})
	if err != nil {
		return nil, err
	}

	history := make([]ports.StudentRequestDetail, 0, len(reqs))
	for _, r := range reqs {
		row := ports.StudentRequestDetail{
			ID:        r.ID,
			Status:    string(r.Status),
			CreatedAt: r.CreatedAt,
		}
		if book, err := s.books.FindByID(ctx, r.BookID); err == nil {
			row.BookTitle = book.Title
			row.Author = book.Author
			row.Category = book.Category
		}
		history = append(history, row)
	}
	sort.Slice(history, func(i, j int) bool { return history[i].CreatedAt.After(history[j].CreatedAt) })

	return &ports.StudentDetail{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Stats:    *foldStats(reqs),
		Requests: history,
	}, nil
}

// DashboardStats recomputes the admin dashboard counters from the store.
// BooksLentOut counts unavailable books, so manual admin toggles count on
// top of approval-driven flips.
func (s *RequestService) DashboardStats(ctx context.Context) (*ports.DashboardStats, error) {
	totalBooks, err := s.books.Count(ctx)
	if err != nil {
		return nil, err
	}
	approved, err := s.requests.Count(ctx, ports.RequestFilter{Status: domain.RequestApproved})
	if err != nil {
		return nil, err
	}
	lentOut, err := s.books.CountByStatus(ctx, domain.StatusUnavailable)
	if err != nil {
		return nil, err
	}
	totalRequests, err := s.requests.Count(ctx, ports.RequestFilter{})
	if err != nil {
		return nil, err
	}

	return &ports.DashboardStats{
		TotalBooks:           totalBooks,
		ApprovedRequestCount: approved,
		BooksLentOut:         lentOut,
		TotalRequestCount:    totalRequests,
	}, nil
}

// ReconcileAvailability enforces the derived-flag invariant: every book
// referenced by an approved request must read unavailable. Only the
// available -> unavailable direction is repaired; an unavailable book with
// no approved request may be a deliberate admin override for withdrawn
// stock and is left alone.
func (s *RequestService) ReconcileAvailability(ctx context.Context) (int, error) {
	bookIDs, err := s.requests.BookIDsWithStatus(ctx, domain.RequestApproved)
	if err != nil {
		return 0, err
	}

	repaired := 0
	for _, id := range bookIDs {
		flipped, err := s.books.MarkUnavailableIfAvailable(ctx, id)
		if err != nil {
			s.logger.Warn().Err(err).Str("book_id", id).Msg("reconcile: conditional flip failed")
			continue
		}
		if flipped {
			repaired++
			s.logger.Info().Str("book_id", id).Msg("reconcile: availability repaired")
		}
	}
	return repaired, nil
}
