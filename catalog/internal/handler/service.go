package handler

import (
	"context"

	"github.com/Astemirdum/library-sync/catalog/internal/model"
	"github.com/Astemirdum/library-sync/catalog/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type CatalogService interface {
	CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error)
	DeleteBook(ctx context.Context, id int) error
	GetBook(ctx context.Context, id int) (model.Book, error)
	ListBooks(ctx context.Context, filter model.BookFilter) ([]model.Book, error)
	RegisterBorrow(ctx context.Context, req model.BorrowRequest) (model.BorrowedBook, error)
	ListBorrowed(ctx context.Context) ([]model.BorrowedBook, error)
	ListUnavailable(ctx context.Context) ([]model.BorrowedBook, error)
	FetchUsers(ctx context.Context) ([]byte, error)
}

var _ CatalogService = (*service.Service)(nil)
