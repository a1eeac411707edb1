package service

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/greenfield-library/lending-system/internal/core/domain"
	"github.com/greenfield-library/lending-system/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// In-memory stub repositories (clone-on-read, mirroring the Mongo adapters)
// ---------------------------------------------------------------------------

type stubBookRepo struct {
	mu        sync.Mutex
	books     map[string]*domain.Book
	insertErr error // if set, Insert returns this error
}

func newStubBookRepo() *stubBookRepo {
	return &stubBookRepo{books: make(map[string]*domain.Book)}
}

func (r *stubBookRepo) Insert(_ context.Context, b *domain.Book) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *b
	r.books[b.ID] = &clone
	return nil
}

func (r *stubBookRepo) FindByID(_ context.Context, id string) (*domain.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return nil, domain.ErrBookNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *stubBookRepo) SetStatus(_ context.Context, id string, status domain.BookStatus) (*domain.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return nil, domain.ErrBookNotFound
	}
	b.Status = status
	clone := *b
	return &clone, nil
}

func (r *stubBookRepo) MarkUnavailableIfAvailable(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok || b.Status != domain.StatusAvailable {
		return false, nil
	}
	b.Status = domain.StatusUnavailable
	return true, nil
}

func (r *stubBookRepo) List(_ context.Context, filter ports.BookFilter) ([]*domain.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*domain.Book
	for _, b := range r.books {
		if filter.Category != "" && b.Category != filter.Category {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		clone := *b
		matched = append(matched, &clone)
	}
	return matched, nil
}

func (r *stubBookRepo) Categories(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]struct{})
	for _, b := range r.books {
		if b.Category != "" {
			seen[b.Category] = struct{}{}
		}
	}
	cats := make([]string, 0, len(seen))
	for c := range seen {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats, nil
}

func (r *stubBookRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.books)), nil
}

func (r *stubBookRepo) CountByStatus(_ context.Context, status domain.BookStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.books {
		if b.Status == status {
			n++
		}
	}
	return n, nil
}

type stubRequestRepo struct {
	mu        sync.Mutex
	requests  map[string]*domain.Request
	insertErr error // if set, Insert returns this error once per call
}

func newStubRequestRepo() *stubRequestRepo {
	return &stubRequestRepo{requests: make(map[string]*domain.Request)}
}

// Insert enforces the partial unique index on (user_id, book_id) over
// unresolved requests, exactly like the Mongo adapter.
func (r *stubRequestRepo) Insert(_ context.Context, req *domain.Request) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.requests {
		if existing.UserID == req.UserID && existing.BookID == req.BookID && existing.Status.Unresolved() {
			return domain.ErrDuplicateRequest
		}
	}
	clone := *req
	r.requests[req.ID] = &clone
	return nil
}

func (r *stubRequestRepo) FindByID(_ context.Context, id string) (*domain.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	clone := *req
	return &clone, nil
}

func (r *stubRequestRepo) Approve(_ context.Context, id string) (*domain.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	if req.Status == domain.RequestApproved {
		return nil, domain.ErrAlreadyApproved
	}
	req.Status = domain.RequestApproved
	clone := *req
	return &clone, nil
}

func (r *stubRequestRepo) List(_ context.Context, filter ports.RequestFilter) ([]*domain.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*domain.Request
	for _, req := range r.requests {
		if filter.UserID != "" && req.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		clone := *req
		matched = append(matched, &clone)
	}
	return matched, nil
}

func (r *stubRequestRepo) Count(ctx context.Context, filter ports.RequestFilter) (int64, error) {
	matched, _ := r.List(ctx, filter)
	return int64(len(matched)), nil
}

func (r *stubRequestRepo) BookIDsWithStatus(_ context.Context, status domain.RequestStatus) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]struct{})
	for _, req := range r.requests {
		if req.Status == status {
			seen[req.BookID] = struct{}{}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	return ids, nil
}

type stubUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User // keyed by email
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Email]; exists {
		return nil, domain.ErrUserExists
	}
	clone := *user
	r.users[user.Email] = &clone
	out := clone
	return &out, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) ListByRole(_ context.Context, role string) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*domain.User
	for _, u := range r.users {
		if u.Role == role {
			clone := *u
			matched = append(matched, &clone)
		}
	}
	return matched, nil
}

// stubEventSink records emitted events for assertions.
type stubEventSink struct {
	mu     sync.Mutex
	events []ports.Event
}

func (s *stubEventSink) Emit(e ports.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *stubEventSink) kinds() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	kinds := make([]string, len(s.events))
	for i, e := range s.events {
		kinds[i] = e.Kind
	}
	return kinds
}

// ---------------------------------------------------------------------------
// Seed helpers
// ---------------------------------------------------------------------------

func seedBook(repo *stubBookRepo, id, title, category string) *domain.Book {
	b := &domain.Book{
		ID:       id,
		Title:    title,
		Author:   "X",
		Semester: "3",
		Category: category,
		Status:   domain.StatusAvailable,
	}
	repo.books[id] = b
	return b
}

func seedStudent(repo *stubUserRepo, id, name, email string) *domain.User {
	u := &domain.User{ID: id, Email: email, Name: name, Role: domain.RoleStudent}
	repo.users[email] = u
	return u
}
