package service

import (
	"context"

	"github.com/Astemirdum/library-sync/catalog/internal/errs"
	"github.com/Astemirdum/library-sync/catalog/internal/model"
	catalogRepo "github.com/Astemirdum/library-sync/catalog/internal/repository"
	"github.com/Astemirdum/library-sync/pkg/kafka"
	"go.uber.org/zap"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type Directory interface {
	SyncBook(ctx context.Context, book model.Book)
	ListUsers(ctx context.Context) ([]byte, error)
}

type Service struct {
	log       *zap.Logger
	repo      catalogRepo.Repository
	directory Directory
	events    kafka.Publisher
}

func NewService(repo catalogRepo.Repository, directory Directory, events kafka.Publisher, log *zap.Logger) *Service {
	return &Service{
		log:       log.Named("service"),
		repo:      repo,
		directory: directory,
		events:    events,
	}
}

// CreateBook stores the book and then tells the directory about it. The
// directory being down does not fail the call.
func (s *Service) CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error) {
	book, err := s.repo.CreateBook(ctx, req)
	if err != nil {
		return model.Book{}, err
	}
	s.directory.SyncBook(ctx, book)
	s.publish(kafka.EventBookCreated, book)
	return book, nil
}

func (s *Service) DeleteBook(ctx context.Context, id int) error {
	if err := s.repo.DeleteBook(ctx, id); err != nil {
		return err
	}
	s.publish(kafka.EventBookDeleted, map[string]int{"id": id})
	return nil
}

func (s *Service) GetBook(ctx context.Context, id int) (model.Book, error) {
	return s.repo.GetBook(ctx, id)
}

func (s *Service) ListBooks(ctx context.Context, filter model.BookFilter) ([]model.Book, error) {
	books, err := s.repo.ListBooks(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, errs.ErrNotFound
	}
	return books, nil
}

func (s *Service) RegisterBorrow(ctx context.Context, req model.BorrowRequest) (model.BorrowedBook, error) {
	entry, err := s.repo.RegisterBorrow(ctx, req)
	if err != nil {
		return model.BorrowedBook{}, err
	}
	s.log.Info("borrow registered",
		zap.Int("book_id", entry.BookID),
		zap.String("title", req.Title),
		zap.String("author", req.Author),
		zap.String("borrower", entry.BorrowerName))
	s.publish(kafka.EventBookBorrowed, entry)
	return entry, nil
}

func (s *Service) ListBorrowed(ctx context.Context) ([]model.BorrowedBook, error) {
	items, err := s.repo.ListBorrowed(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errs.ErrNotFound
	}
	return items, nil
}

// ListUnavailable reports the borrow ledger, same as ListBorrowed. Books
// flagged unavailable are not looked up separately.
func (s *Service) ListUnavailable(ctx context.Context) ([]model.BorrowedBook, error) {
	return s.ListBorrowed(ctx)
}

func (s *Service) FetchUsers(ctx context.Context) ([]byte, error) {
	return s.directory.ListUsers(ctx)
}

func (s *Service) publish(eventType string, payload any) {
	if err := s.events.Publish(eventType, payload); err != nil {
		s.log.Warn("publish", zap.String("event", eventType), zap.Error(err))
	}
}
