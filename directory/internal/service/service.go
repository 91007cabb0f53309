package service

import (
	"context"
	"net/http"
	"time"

	"github.com/Astemirdum/library-sync/directory/internal/errs"
	"github.com/Astemirdum/library-sync/directory/internal/model"
	directoryRepo "github.com/Astemirdum/library-sync/directory/internal/repository"
	"github.com/Astemirdum/library-sync/pkg/bridge"
	"github.com/Astemirdum/library-sync/pkg/kafka"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type Catalog interface {
	ListBooks(ctx context.Context, filter model.BookFilter) ([]byte, error)
	GetBookRaw(ctx context.Context, id int) ([]byte, error)
	GetBook(ctx context.Context, id int) (model.CatalogBook, error)
	RegisterBorrow(ctx context.Context, req model.BorrowRegistration) error
}

type Service struct {
	log     *zap.Logger
	repo    directoryRepo.Repository
	catalog Catalog
	events  kafka.Publisher
	now     func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now as the source of borrow dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(repo directoryRepo.Repository, catalog Catalog, events kafka.Publisher, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		log:     log.Named("service"),
		repo:    repo,
		catalog: catalog,
		events:  events,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) ListBooks(ctx context.Context, filter model.BookFilter) ([]byte, error) {
	return s.catalog.ListBooks(ctx, filter)
}

func (s *Service) GetBook(ctx context.Context, id int) ([]byte, error) {
	data, err := s.catalog.GetBookRaw(ctx, id)
	if err != nil {
		if bridge.IsStatus(err, http.StatusNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// BorrowBook lends a catalog book to a local user. The mirror row is written
// before the catalog is told; if the catalog refuses, the mirror row is put
// back the way it was. When the catalog cannot be reached the borrow may
// still have landed there, so the mirror row is left as written.
func (s *Service) BorrowBook(ctx context.Context, req model.BorrowRequest) (model.Book, model.User, error) {
	remote, err := s.catalog.GetBook(ctx, req.BookID)
	if err != nil {
		if bridge.IsStatus(err, http.StatusNotFound) {
			return model.Book{}, model.User{}, errs.ErrBookNotFound
		}
		return model.Book{}, model.User{}, &errs.UpstreamError{Op: errs.OpFetchBook, Err: err}
	}
	if !remote.IsAvailable() {
		return model.Book{}, model.User{}, errs.ErrBookUnavailable
	}
	user, err := s.repo.GetUser(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.Book{}, model.User{}, errs.ErrUserNotFound
		}
		return model.Book{}, model.User{}, err
	}

	until := s.now().UTC().AddDate(0, 0, req.Days)
	prev, err := s.repo.GetBook(ctx, remote.ID)
	hadPrev := err == nil
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return model.Book{}, model.User{}, err
	}
	book, err := s.repo.SaveBook(ctx, model.Book{
		ID:            remote.ID,
		Title:         remote.Title,
		Author:        remote.Author,
		Publisher:     remote.Publisher,
		Category:      remote.Category,
		Available:     false,
		BorrowerID:    &user.ID,
		BorrowedUntil: &until,
	})
	if err != nil {
		return model.Book{}, model.User{}, err
	}

	if err := s.catalog.RegisterBorrow(ctx, model.BorrowRegistration{
		BookID:        remote.ID,
		Title:         remote.Title,
		Author:        remote.Author,
		BorrowerName:  user.FullName(),
		BorrowedUntil: until.Format(time.RFC3339Nano),
	}); err != nil {
		var se *bridge.StatusError
		if errors.As(err, &se) {
			s.undoSave(context.WithoutCancel(ctx), remote.ID, prev, hadPrev)
		} else {
			s.log.Warn("borrow outcome unknown, mirror row kept",
				zap.Int("book_id", remote.ID), zap.Int("user_id", user.ID), zap.Error(err))
		}
		return model.Book{}, model.User{}, &errs.UpstreamError{Op: errs.OpRegisterBorrow, Err: err}
	}

	s.publish(kafka.EventBookBorrowed, book)
	return book, user, nil
}

func (s *Service) undoSave(ctx context.Context, id int, prev model.Book, hadPrev bool) {
	var err error
	if hadPrev {
		_, err = s.repo.SaveBook(ctx, prev)
	} else {
		err = s.repo.DeleteBook(ctx, id)
	}
	if err != nil {
		s.log.Error("undo mirror write", zap.Int("book_id", id), zap.Error(err))
		return
	}
	s.log.Info("mirror write undone", zap.Int("book_id", id), zap.Bool("restored", hadPrev))
}

// SyncBook records a book the catalog just created.
func (s *Service) SyncBook(ctx context.Context, req model.SyncBookRequest) (model.Book, error) {
	book, err := s.repo.SaveBook(ctx, model.Book{
		ID:        req.ID,
		Title:     req.Title,
		Author:    req.Author,
		Publisher: req.Publisher,
		Category:  req.Category,
		Available: true,
	})
	if err != nil {
		return model.Book{}, err
	}
	s.publish(kafka.EventBookSynced, book)
	return book, nil
}

func (s *Service) CreateUser(ctx context.Context, req model.CreateUserRequest) (model.User, error) {
	user, err := s.repo.CreateUser(ctx, req)
	if err != nil {
		return model.User{}, err
	}
	s.publish(kafka.EventUserCreated, user)
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, errs.ErrNotFound
	}
	return users, nil
}

func (s *Service) publish(eventType string, payload any) {
	if err := s.events.Publish(eventType, payload); err != nil {
		s.log.Warn("publish", zap.String("event", eventType), zap.Error(err))
	}
}
