package service_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/Astemirdum/library-sync/directory/internal/errs"
	"github.com/Astemirdum/library-sync/directory/internal/model"
	repo_mocks "github.com/Astemirdum/library-sync/directory/internal/repository/mocks"
	"github.com/Astemirdum/library-sync/directory/internal/service"
	service_mocks "github.com/Astemirdum/library-sync/directory/internal/service/mocks"
	"github.com/Astemirdum/library-sync/pkg/bridge"
	"github.com/Astemirdum/library-sync/pkg/kafka"
	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"
)

var (
	now      = time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)
	ada      = model.User{ID: 4, Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace"}
	yes, no  = true, false
	duneSrc  = model.CatalogBook{ID: 7, Title: "Dune", Author: "Herbert", Publisher: "Ace", Category: "SciFi", Available: &yes}
	notFound = &bridge.StatusError{Method: http.MethodGet, Path: "/admin/books/7", Code: http.StatusNotFound}
)

func newService(t *testing.T) (*service.Service, *repo_mocks.MockRepository, *service_mocks.MockCatalog) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := repo_mocks.NewMockRepository(ctrl)
	cat := service_mocks.NewMockCatalog(ctrl)
	svc := service.NewService(repo, cat, kafka.NopPublisher{}, zap.NewNop(), service.WithClock(func() time.Time { return now }))
	return svc, repo, cat
}

func borrowedDune(days int) model.Book {
	until := now.AddDate(0, 0, days)
	return model.Book{
		ID: 7, Title: "Dune", Author: "Herbert", Publisher: "Ace", Category: "SciFi",
		BorrowerID: &ada.ID, BorrowedUntil: &until,
	}
}

func TestService_BorrowBook(t *testing.T) {
	t.Parallel()
	svc, repo, cat := newService(t)
	want := borrowedDune(14)

	gomock.InOrder(
		cat.EXPECT().GetBook(gomock.Any(), 7).Return(duneSrc, nil),
		repo.EXPECT().GetUser(gomock.Any(), ada.ID).Return(ada, nil),
		repo.EXPECT().GetBook(gomock.Any(), 7).Return(model.Book{}, errs.ErrNotFound),
		repo.EXPECT().SaveBook(gomock.Any(), want).Return(want, nil),
		cat.EXPECT().RegisterBorrow(gomock.Any(), model.BorrowRegistration{
			BookID:        7,
			Title:         "Dune",
			Author:        "Herbert",
			BorrowerName:  "Ada Lovelace",
			BorrowedUntil: "2030-05-15T12:00:00Z",
		}).Return(nil),
	)

	book, user, err := svc.BorrowBook(context.Background(), model.BorrowRequest{BookID: 7, Days: 14, UserID: ada.ID})
	require.NoError(t, err)
	require.Equal(t, want, book)
	require.Equal(t, ada, user)
}

func TestService_BorrowBookMissingAvailableCountsAsAvailable(t *testing.T) {
	t.Parallel()
	svc, repo, cat := newService(t)
	src := duneSrc
	src.Available = nil

	cat.EXPECT().GetBook(gomock.Any(), 7).Return(src, nil)
	repo.EXPECT().GetUser(gomock.Any(), ada.ID).Return(ada, nil)
	repo.EXPECT().GetBook(gomock.Any(), 7).Return(model.Book{}, errs.ErrNotFound)
	repo.EXPECT().SaveBook(gomock.Any(), gomock.Any()).Return(borrowedDune(1), nil)
	cat.EXPECT().RegisterBorrow(gomock.Any(), gomock.Any()).Return(nil)

	_, _, err := svc.BorrowBook(context.Background(), model.BorrowRequest{BookID: 7, Days: 1, UserID: ada.ID})
	require.NoError(t, err)
}

// No mirror row may be written when any check before it fails.
func TestService_BorrowBookRejections(t *testing.T) {
	t.Parallel()
	unavailable := duneSrc
	unavailable.Available = &no

	tests := []struct {
		name    string
		mock    func(repo *repo_mocks.MockRepository, cat *service_mocks.MockCatalog)
		wantErr error
	}{
		{
			name: "book missing upstream",
			mock: func(repo *repo_mocks.MockRepository, cat *service_mocks.MockCatalog) {
				cat.EXPECT().GetBook(gomock.Any(), 7).Return(model.CatalogBook{}, notFound)
			},
			wantErr: errs.ErrBookNotFound,
		},
		{
			name: "book unavailable",
			mock: func(repo *repo_mocks.MockRepository, cat *service_mocks.MockCatalog) {
				cat.EXPECT().GetBook(gomock.Any(), 7).Return(unavailable, nil)
			},
			wantErr: errs.ErrBookUnavailable,
		},
		{
			name: "user missing",
			mock: func(repo *repo_mocks.MockRepository, cat *service_mocks.MockCatalog) {
				cat.EXPECT().GetBook(gomock.Any(), 7).Return(duneSrc, nil)
				repo.EXPECT().GetUser(gomock.Any(), ada.ID).Return(model.User{}, errs.ErrNotFound)
			},
			wantErr: errs.ErrUserNotFound,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, repo, cat := newService(t)
			tt.mock(repo, cat)

			_, _, err := svc.BorrowBook(context.Background(), model.BorrowRequest{BookID: 7, Days: 3, UserID: ada.ID})
			require.Equal(t, tt.wantErr, err)
			require.ErrorIs(t, err, errs.ErrNotFound)
		})
	}
}

func TestService_BorrowBookFetchFailure(t *testing.T) {
	t.Parallel()
	svc, _, cat := newService(t)
	cat.EXPECT().GetBook(gomock.Any(), 7).Return(model.CatalogBook{}, bridge.ErrUnavailable)

	_, _, err := svc.BorrowBook(context.Background(), model.BorrowRequest{BookID: 7, Days: 3, UserID: ada.ID})
	var ue *errs.UpstreamError
	require.True(t, errors.As(err, &ue))
	require.Equal(t, errs.OpFetchBook, ue.Op)
	require.ErrorIs(t, err, bridge.ErrUnavailable)
}

func TestService_BorrowBookRegistrationFailureUndoesMirrorWrite(t *testing.T) {
	t.Parallel()
	regErr := &bridge.StatusError{Method: http.MethodPost, Path: "/admin/books/borrowed/", Code: http.StatusNotFound}

	t.Run("new row is deleted", func(t *testing.T) {
		t.Parallel()
		svc, repo, cat := newService(t)
		gomock.InOrder(
			cat.EXPECT().GetBook(gomock.Any(), 7).Return(duneSrc, nil),
			repo.EXPECT().GetUser(gomock.Any(), ada.ID).Return(ada, nil),
			repo.EXPECT().GetBook(gomock.Any(), 7).Return(model.Book{}, errs.ErrNotFound),
			repo.EXPECT().SaveBook(gomock.Any(), gomock.Any()).Return(borrowedDune(3), nil),
			cat.EXPECT().RegisterBorrow(gomock.Any(), gomock.Any()).Return(regErr),
			repo.EXPECT().DeleteBook(gomock.Any(), 7).Return(nil),
		)

		_, _, err := svc.BorrowBook(context.Background(), model.BorrowRequest{BookID: 7, Days: 3, UserID: ada.ID})
		var ue *errs.UpstreamError
		require.True(t, errors.As(err, &ue))
		require.Equal(t, errs.OpRegisterBorrow, ue.Op)
		require.True(t, bridge.IsStatus(err, http.StatusNotFound))
	})

	t.Run("previous row is restored", func(t *testing.T) {
		t.Parallel()
		svc, repo, cat := newService(t)
		prev := model.Book{ID: 7, Title: "Dune", Available: true}
		gomock.InOrder(
			cat.EXPECT().GetBook(gomock.Any(), 7).Return(duneSrc, nil),
			repo.EXPECT().GetUser(gomock.Any(), ada.ID).Return(ada, nil),
			repo.EXPECT().GetBook(gomock.Any(), 7).Return(prev, nil),
			repo.EXPECT().SaveBook(gomock.Any(), gomock.Any()).Return(borrowedDune(3), nil),
			cat.EXPECT().RegisterBorrow(gomock.Any(), gomock.Any()).
				Return(&bridge.StatusError{Method: http.MethodPost, Path: "/admin/books/borrowed/", Code: http.StatusInternalServerError}),
			repo.EXPECT().SaveBook(gomock.Any(), prev).Return(prev, nil),
		)

		_, _, err := svc.BorrowBook(context.Background(), model.BorrowRequest{BookID: 7, Days: 3, UserID: ada.ID})
		require.True(t, bridge.IsStatus(err, http.StatusInternalServerError))
	})

	t.Run("unreachable catalog keeps the row", func(t *testing.T) {
		t.Parallel()
		svc, repo, cat := newService(t)
		gomock.InOrder(
			cat.EXPECT().GetBook(gomock.Any(), 7).Return(duneSrc, nil),
			repo.EXPECT().GetUser(gomock.Any(), ada.ID).Return(ada, nil),
			repo.EXPECT().GetBook(gomock.Any(), 7).Return(model.Book{}, errs.ErrNotFound),
			repo.EXPECT().SaveBook(gomock.Any(), gomock.Any()).Return(borrowedDune(3), nil),
			cat.EXPECT().RegisterBorrow(gomock.Any(), gomock.Any()).Return(bridge.ErrUnavailable),
		)

		_, _, err := svc.BorrowBook(context.Background(), model.BorrowRequest{BookID: 7, Days: 3, UserID: ada.ID})
		var ue *errs.UpstreamError
		require.True(t, errors.As(err, &ue))
		require.Equal(t, errs.OpRegisterBorrow, ue.Op)
		require.ErrorIs(t, err, bridge.ErrUnavailable)
	})
}

// borrowed_until is always now + days, whatever the sign of days.
func TestService_BorrowBookDueDate(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(rt *rapid.T) {
		days := rapid.IntRange(-1_000_000, 1_000_000).Draw(rt, "days")
		svc, repo, cat := newService(t)

		var saved model.Book
		cat.EXPECT().GetBook(gomock.Any(), 7).Return(duneSrc, nil)
		repo.EXPECT().GetUser(gomock.Any(), ada.ID).Return(ada, nil)
		repo.EXPECT().GetBook(gomock.Any(), 7).Return(model.Book{}, errs.ErrNotFound)
		repo.EXPECT().SaveBook(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, b model.Book) (model.Book, error) {
			saved = b
			return b, nil
		})
		cat.EXPECT().RegisterBorrow(gomock.Any(), gomock.Any()).Return(nil)

		book, _, err := svc.BorrowBook(context.Background(), model.BorrowRequest{BookID: 7, Days: days, UserID: ada.ID})
		if err != nil {
			rt.Fatalf("borrow: %v", err)
		}
		want := now.AddDate(0, 0, days)
		if !saved.BorrowedUntil.Equal(want) || !book.BorrowedUntil.Equal(want) {
			rt.Fatalf("days=%d: borrowed_until %v, want %v", days, saved.BorrowedUntil, want)
		}
		if saved.Available || saved.BorrowerID == nil || *saved.BorrowerID != ada.ID {
			rt.Fatalf("mirror row not marked borrowed: %+v", saved)
		}
	})
}

func TestService_BorrowBookLongLoan(t *testing.T) {
	t.Parallel()
	for _, days := range []int{106752, 200000, -200000} {
		svc, repo, cat := newService(t)
		var reg model.BorrowRegistration
		cat.EXPECT().GetBook(gomock.Any(), 7).Return(duneSrc, nil)
		repo.EXPECT().GetUser(gomock.Any(), ada.ID).Return(ada, nil)
		repo.EXPECT().GetBook(gomock.Any(), 7).Return(model.Book{}, errs.ErrNotFound)
		repo.EXPECT().SaveBook(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, b model.Book) (model.Book, error) {
			return b, nil
		})
		cat.EXPECT().RegisterBorrow(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r model.BorrowRegistration) error {
			reg = r
			return nil
		})

		book, _, err := svc.BorrowBook(context.Background(), model.BorrowRequest{BookID: 7, Days: days, UserID: ada.ID})
		require.NoError(t, err)
		want := now.AddDate(0, 0, days)
		require.True(t, book.BorrowedUntil.Equal(want), "days=%d: got %v", days, book.BorrowedUntil)
		require.Equal(t, days > 0, book.BorrowedUntil.After(now), "days=%d", days)
		require.Equal(t, want.Format(time.RFC3339Nano), reg.BorrowedUntil)
	}
}

func TestService_GetBook(t *testing.T) {
	t.Parallel()
	svc, _, cat := newService(t)
	cat.EXPECT().GetBookRaw(gomock.Any(), 7).Return([]byte(`{"id":7}`), nil)
	cat.EXPECT().GetBookRaw(gomock.Any(), 8).Return(nil, notFound)
	cat.EXPECT().GetBookRaw(gomock.Any(), 9).Return(nil, bridge.ErrUnavailable)

	data, err := svc.GetBook(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, `{"id":7}`, string(data))

	_, err = svc.GetBook(context.Background(), 8)
	require.ErrorIs(t, err, errs.ErrNotFound)

	_, err = svc.GetBook(context.Background(), 9)
	require.ErrorIs(t, err, bridge.ErrUnavailable)
}

func TestService_SyncBook(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newService(t)
	want := model.Book{ID: 7, Title: "Dune", Author: "Herbert", Publisher: "Ace", Category: "SciFi", Available: true}
	repo.EXPECT().SaveBook(gomock.Any(), want).Return(want, nil)

	got, err := svc.SyncBook(context.Background(), model.SyncBookRequest{ID: 7, Title: "Dune", Author: "Herbert", Publisher: "Ace", Category: "SciFi"})
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestService_Users(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newService(t)
	req := model.CreateUserRequest{Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace"}

	repo.EXPECT().ListUsers(gomock.Any()).Return([]model.User{}, nil)
	repo.EXPECT().CreateUser(gomock.Any(), req).Return(ada, nil)
	repo.EXPECT().CreateUser(gomock.Any(), req).Return(model.User{}, errs.ErrConflict)
	repo.EXPECT().ListUsers(gomock.Any()).Return([]model.User{ada}, nil)

	_, err := svc.ListUsers(context.Background())
	require.ErrorIs(t, err, errs.ErrNotFound)

	user, err := svc.CreateUser(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, ada, user)

	_, err = svc.CreateUser(context.Background(), req)
	require.ErrorIs(t, err, errs.ErrConflict)

	users, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Equal(t, []model.User{ada}, users)
}
