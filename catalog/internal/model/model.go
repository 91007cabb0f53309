package model

import (
	"fmt"
	"strings"
	"time"
)

type Book struct {
	ID        int    `json:"id" db:"id"`
	Title     string `json:"title" db:"title"`
	Author    string `json:"author" db:"author"`
	Publisher string `json:"publisher" db:"publisher"`
	Category  string `json:"category" db:"category"`
	Available bool   `json:"available" db:"available"`
}

type CreateBookRequest struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	Publisher string `json:"publisher"`
	Category  string `json:"category"`
}

type CreateBookResponse struct {
	Message string `json:"message"`
	Book    Book   `json:"book"`
}

// BookFilter fields are equality filters; empty means "any".
type BookFilter struct {
	Category  string
	Publisher string
}

// BorrowedBook is a ledger entry. Rows are only ever appended.
type BorrowedBook struct {
	ID            int       `json:"id" db:"id"`
	BookID        int       `json:"book_id" db:"book_id"`
	BorrowerName  string    `json:"borrower_name" db:"borrower_name"`
	BorrowedUntil time.Time `json:"borrowed_until" db:"borrowed_until"`
}

// BorrowRequest is what the directory sends when one of its users borrows a
// book. Title and Author ride along for the log only.
type BorrowRequest struct {
	BookID        int       `json:"book_id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	BorrowerName  string    `json:"borrower_name"`
	BorrowedUntil Timestamp `json:"borrowed_until"`
}

type BorrowResponse struct {
	Message      string       `json:"message"`
	BorrowedBook BorrowedBook `json:"borrowed_book"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type UserEcho struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// SyncBookRequest is the payload of the directory's /books/sync/ endpoint.
type SyncBookRequest struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Publisher string `json:"publisher"`
	Category  string `json:"category"`
}

// Timestamp accepts ISO-8601 with or without a zone; zoneless values are UTC.
type Timestamp struct {
	time.Time
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	time.DateOnly,
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), "\"")
	for _, layout := range isoLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			t.Time = ts
			return nil
		}
	}
	return fmt.Errorf("%q is not an ISO-8601 timestamp", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return t.Time.MarshalJSON()
}
