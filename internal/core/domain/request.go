package domain

import (
	"errors"
	"time"
)

// RequestStatus represents the lifecycle state of a borrow request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
)

// validTransitions defines the allowed state machine transitions.
// There is no rejected or cancelled state: a request is either eventually
// approved or stays pending forever. Approval is terminal.
var validTransitions = map[RequestStatus][]RequestStatus{
	RequestPending: {RequestApproved},
}

var ErrRequestNotFound = errors.New("request not found")
var ErrDuplicateRequest = errors.New("active request already exists for this book")
var ErrAlreadyApproved = errors.New("request already approved")
var ErrForbidden = errors.New("access forbidden")

// CanTransitionTo reports whether a transition from the current status to next is valid.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Unresolved reports whether the request still binds its (user, book) pair.
// Both pending and approved requests count: a user may not re-request a book
// while either exists.
func (s RequestStatus) Unresolved() bool {
	return s == RequestPending || s == RequestApproved
}

// Request is a borrowing intent linking a user to a book.
// UserEmail and UserName are denormalized for notifications and display.
type Request struct {
	ID        string        `json:"id" bson:"_id"`
	UserID    string        `json:"user_id" bson:"user_id"`
	UserEmail string        `json:"user_email" bson:"user_email"`
	UserName  string        `json:"user_name" bson:"user_name"`
	BookID    string        `json:"book_id" bson:"book_id"`
	Status    RequestStatus `json:"status" bson:"status"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
}
