package handler

import (
	"context"

	"github.com/Astemirdum/library-sync/directory/internal/model"
	"github.com/Astemirdum/library-sync/directory/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type DirectoryService interface {
	ListBooks(ctx context.Context, filter model.BookFilter) ([]byte, error)
	GetBook(ctx context.Context, id int) ([]byte, error)
	BorrowBook(ctx context.Context, req model.BorrowRequest) (model.Book, model.User, error)
	SyncBook(ctx context.Context, req model.SyncBookRequest) (model.Book, error)
	CreateUser(ctx context.Context, req model.CreateUserRequest) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
}

var _ DirectoryService = (*service.Service)(nil)
