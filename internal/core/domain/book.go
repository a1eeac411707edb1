package domain

import "errors"

// BookStatus is the circulation availability of a book.
type BookStatus string

const (
	StatusAvailable   BookStatus = "available"
	StatusUnavailable BookStatus = "unavailable"
)

var ErrBookNotFound = errors.New("book not found")
var ErrValidation = errors.New("invalid input")
var ErrStoreUnavailable = errors.New("store unavailable")

// IsValid reports whether s is one of the two known availability values.
func (s BookStatus) IsValid() bool {
	return s == StatusAvailable || s == StatusUnavailable
}

// Book is a circulating catalog item.
//
// Status is a derived flag: it must read "unavailable" whenever an approved
// request references the book, and "available" otherwise, except that an
// admin may force it unavailable for withdrawn stock. The request workflow
// maintains it on approval; ReconcileAvailability repairs drift.
type Book struct {
	ID       string     `json:"id" bson:"_id"`
	Title    string     `json:"title" bson:"title"`
	Author   string     `json:"author" bson:"author"`
	Semester string     `json:"semester" bson:"semester"`
	Category string     `json:"category" bson:"category"`
	Status   BookStatus `json:"status" bson:"status"`
}
