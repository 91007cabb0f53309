package model

import "time"

type User struct {
	ID        int    `json:"id" db:"id"`
	Email     string `json:"email" db:"email"`
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`
}

func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

type CreateUserRequest struct {
	Email     string `json:"email" validate:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type CreateUserResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

// Book is the directory's copy of a catalog book. BorrowerID and
// BorrowedUntil are set only while the book is lent out through this service.
type Book struct {
	ID            int        `json:"id" db:"id"`
	Title         string     `json:"title" db:"title"`
	Author        string     `json:"author" db:"author"`
	Publisher     string     `json:"publisher" db:"publisher"`
	Category      string     `json:"category" db:"category"`
	Available     bool       `json:"available" db:"available"`
	BorrowerID    *int       `json:"borrower_id" db:"borrower_id"`
	BorrowedUntil *time.Time `json:"borrowed_until" db:"borrowed_until"`
}

// CatalogBook is a book as the catalog reports it.
type CatalogBook struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Publisher string `json:"publisher"`
	Category  string `json:"category"`
	// Available is nil when the catalog omits it; that counts as available.
	Available *bool `json:"available"`
}

func (b CatalogBook) IsAvailable() bool {
	return b.Available == nil || *b.Available
}

type BookFilter struct {
	Category  string
	Publisher string
}

type BorrowRequest struct {
	BookID int
	Days   int
	UserID int
}

type BorrowResponse struct {
	Message string `json:"message"`
	Book    Book   `json:"book"`
}

// BorrowRegistration is the payload of the catalog's borrow ledger endpoint.
type BorrowRegistration struct {
	BookID        int    `json:"book_id"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	BorrowerName  string `json:"borrower_name"`
	BorrowedUntil string `json:"borrowed_until"`
}

type SyncBookRequest struct {
	ID        int    `json:"id" validate:"required"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Publisher string `json:"publisher"`
	Category  string `json:"category"`
}

type SyncBookResponse struct {
	Message string `json:"message"`
	Book    Book   `json:"book"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
