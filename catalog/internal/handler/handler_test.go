package handler_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Astemirdum/library-sync/catalog/internal/errs"
	"github.com/Astemirdum/library-sync/catalog/internal/handler"
	"github.com/Astemirdum/library-sync/catalog/internal/model"
	"github.com/Astemirdum/library-sync/pkg/bridge"
	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	service_mocks "github.com/Astemirdum/library-sync/catalog/internal/handler/mocks"
)

var (
	dune      = model.Book{ID: 1, Title: "Dune", Author: "Herbert", Publisher: "Ace", Category: "SciFi", Available: true}
	duneJSON  = `{"id":1,"title":"Dune","author":"Herbert","publisher":"Ace","category":"SciFi","available":true}`
	until     = time.Date(2030, 5, 1, 12, 30, 0, 0, time.UTC)
	entry     = model.BorrowedBook{ID: 3, BookID: 1, BorrowerName: "Ada Lovelace", BorrowedUntil: until}
	entryJSON = `{"id":3,"book_id":1,"borrower_name":"Ada Lovelace","borrowed_until":"2030-05-01T12:30:00Z"}`
)

func TestHandler_Router(t *testing.T) {
	t.Parallel()
	type input struct {
		method string
		target string
		body   string
	}
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockCatalogService)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		input        input
		response     response
	}{
		{
			name:         "root",
			mockBehavior: func(r *service_mocks.MockCatalogService) {},
			input:        input{method: http.MethodGet, target: "/"},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"message":"Welcome to the Library Management System (Backend)!"}`,
			},
		},
		{
			name: "create book",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					CreateBook(gomock.Any(), model.CreateBookRequest{Title: "Dune", Author: "Herbert", Publisher: "Ace", Category: "SciFi"}).
					Return(dune, nil)
			},
			input: input{
				method: http.MethodPost,
				target: "/admin/books/",
				body:   `{"title":"Dune","author":"Herbert","publisher":"Ace","category":"SciFi"}`,
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"message":"Book added and synced with frontend","book":` + duneJSON + `}`,
			},
		},
		{
			name:         "err. create book malformed body",
			mockBehavior: func(r *service_mocks.MockCatalogService) {},
			input:        input{method: http.MethodPost, target: "/admin/books/", body: `{"title":`},
			response:     response{expectedCode: http.StatusBadRequest},
		},
		{
			name: "err. create book internal",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().CreateBook(gomock.Any(), gomock.Any()).Return(model.Book{}, errors.New("db internal"))
			},
			input: input{method: http.MethodPost, target: "/admin/books/", body: `{"title":"Dune"}`},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"db internal"}`,
			},
		},
		{
			name: "delete book",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().DeleteBook(gomock.Any(), 1).Return(nil)
			},
			input: input{method: http.MethodDelete, target: "/admin/books/1"},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"message":"Book with ID 1 has been removed"}`,
			},
		},
		{
			name: "err. delete missing book",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().DeleteBook(gomock.Any(), 9).Return(errs.ErrNotFound)
			},
			input: input{method: http.MethodDelete, target: "/admin/books/9"},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"Book not found"}`,
			},
		},
		{
			name:         "err. book id not an integer",
			mockBehavior: func(r *service_mocks.MockCatalogService) {},
			input:        input{method: http.MethodGet, target: "/admin/books/abc"},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"book_id is invalid"}`,
			},
		},
		{
			name: "get book",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().GetBook(gomock.Any(), 1).Return(dune, nil)
			},
			input:    input{method: http.MethodGet, target: "/admin/books/1"},
			response: response{expectedCode: http.StatusOK, expectedBody: duneJSON},
		},
		{
			name: "err. get missing book",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().GetBook(gomock.Any(), 2).Return(model.Book{}, errs.ErrNotFound)
			},
			input: input{method: http.MethodGet, target: "/admin/books/2"},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"Book not found"}`,
			},
		},
		{
			name: "list books with filters",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					ListBooks(gomock.Any(), model.BookFilter{Category: "SciFi", Publisher: "Ace"}).
					Return([]model.Book{dune}, nil)
			},
			input:    input{method: http.MethodGet, target: "/admin/books/?category=SciFi&publisher=Ace"},
			response: response{expectedCode: http.StatusOK, expectedBody: `[` + duneJSON + `]`},
		},
		{
			name: "err. list books none match",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().ListBooks(gomock.Any(), model.BookFilter{Category: "Poetry"}).Return(nil, errs.ErrNotFound)
			},
			input: input{method: http.MethodGet, target: "/admin/books/?category=Poetry"},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"No books found with the given filters"}`,
			},
		},
		{
			name: "register borrow",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					RegisterBorrow(gomock.Any(), model.BorrowRequest{
						BookID:        1,
						Title:         "Dune",
						Author:        "Herbert",
						BorrowerName:  "Ada Lovelace",
						BorrowedUntil: model.Timestamp{Time: until},
					}).
					Return(entry, nil)
			},
			input: input{
				method: http.MethodPost,
				target: "/admin/books/borrowed/",
				body:   `{"book_id":1,"title":"Dune","author":"Herbert","borrower_name":"Ada Lovelace","borrowed_until":"2030-05-01T12:30:00"}`,
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"message":"Borrowed book synced with backend","borrowed_book":` + entryJSON + `}`,
			},
		},
		{
			name: "err. register borrow for missing book",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().RegisterBorrow(gomock.Any(), gomock.Any()).Return(model.BorrowedBook{}, errs.ErrNotFound)
			},
			input: input{
				method: http.MethodPost,
				target: "/admin/books/borrowed/",
				body:   `{"book_id":5,"borrower_name":"Ada Lovelace","borrowed_until":"2030-05-01T12:30:00Z"}`,
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"Book not found in backend database"}`,
			},
		},
		{
			name: "err. register borrow for book id zero",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					RegisterBorrow(gomock.Any(), model.BorrowRequest{
						BorrowerName:  "Ada Lovelace",
						BorrowedUntil: model.Timestamp{Time: until},
					}).
					Return(model.BorrowedBook{}, errs.ErrNotFound)
			},
			input: input{
				method: http.MethodPost,
				target: "/admin/books/borrowed/",
				body:   `{"book_id":0,"borrower_name":"Ada Lovelace","borrowed_until":"2030-05-01T12:30:00Z"}`,
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"Book not found in backend database"}`,
			},
		},
		{
			name: "err. register borrow without book id",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().RegisterBorrow(gomock.Any(), gomock.Any()).Return(model.BorrowedBook{}, errs.ErrNotFound)
			},
			input: input{
				method: http.MethodPost,
				target: "/admin/books/borrowed/",
				body:   `{"borrower_name":"Ada Lovelace","borrowed_until":"2030-05-01T12:30:00Z"}`,
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"Book not found in backend database"}`,
			},
		},
		{
			name:         "err. register borrow without date",
			mockBehavior: func(r *service_mocks.MockCatalogService) {},
			input: input{
				method: http.MethodPost,
				target: "/admin/books/borrowed/",
				body:   `{"book_id":1,"borrower_name":"Ada Lovelace"}`,
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"borrowed_until is required"}`,
			},
		},
		{
			name:         "err. register borrow bad date",
			mockBehavior: func(r *service_mocks.MockCatalogService) {},
			input: input{
				method: http.MethodPost,
				target: "/admin/books/borrowed/",
				body:   `{"book_id":1,"borrowed_until":"next tuesday"}`,
			},
			response: response{expectedCode: http.StatusBadRequest},
		},
		{
			name: "list borrowed",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().ListBorrowed(gomock.Any()).Return([]model.BorrowedBook{entry}, nil)
			},
			input:    input{method: http.MethodGet, target: "/admin/books/borrowed/"},
			response: response{expectedCode: http.StatusOK, expectedBody: `[` + entryJSON + `]`},
		},
		{
			name: "err. list borrowed empty",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().ListBorrowed(gomock.Any()).Return(nil, errs.ErrNotFound)
			},
			input: input{method: http.MethodGet, target: "/admin/books/borrowed/"},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"No borrowed books found"}`,
			},
		},
		{
			name: "err. list unavailable empty",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().ListUnavailable(gomock.Any()).Return(nil, errs.ErrNotFound)
			},
			input: input{method: http.MethodGet, target: "/admin/books/unavailable/"},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"No unavailable books found"}`,
			},
		},
		{
			name: "fetch users",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().FetchUsers(gomock.Any()).Return([]byte(`[{"id":1,"email":"ada@example.com"}]`), nil)
			},
			input:    input{method: http.MethodGet, target: "/admin/users/"},
			response: response{expectedCode: http.StatusOK, expectedBody: `[{"id":1,"email":"ada@example.com"}]`},
		},
		{
			name: "err. fetch users upstream 404",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().FetchUsers(gomock.Any()).Return(nil, &bridge.StatusError{Method: http.MethodGet, Path: "/users/", Code: http.StatusNotFound})
			},
			input: input{method: http.MethodGet, target: "/admin/users/"},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"Error retrieving users from frontend: GET /users/: upstream responded 404"}`,
			},
		},
		{
			name: "err. fetch users unreachable",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().FetchUsers(gomock.Any()).Return(nil, bridge.ErrUnavailable)
			},
			input: input{method: http.MethodGet, target: "/admin/users/"},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"Error retrieving users from frontend: upstream unavailable"}`,
			},
		},
		{
			name:         "echo user",
			mockBehavior: func(r *service_mocks.MockCatalogService) {},
			input:        input{method: http.MethodPost, target: "/users/?email=ada@example.com&first_name=Ada&last_name=Lovelace"},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"email":"ada@example.com","first_name":"Ada","last_name":"Lovelace"}`,
			},
		},
		{
			name:         "err. echo user missing field",
			mockBehavior: func(r *service_mocks.MockCatalogService) {},
			input:        input{method: http.MethodPost, target: "/users/?email=ada@example.com&first_name=Ada"},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"last_name is required"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockCatalogService(c)
			h := handler.New(svc, zap.NewNop())
			e := h.NewRouter()

			var body io.Reader = http.NoBody
			if tt.input.body != "" {
				body = strings.NewReader(tt.input.body)
			}
			r := httptest.NewRequest(tt.input.method, tt.input.target, body)
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			if tt.response.expectedBody != "" {
				require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
			}
		})
	}
}

func TestHandler_Health(t *testing.T) {
	t.Parallel()
	h := handler.New(service_mocks.NewMockCatalogService(gomock.NewController(t)), zap.NewNop())
	e := h.NewRouter()

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/manage/health", http.NoBody))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "OK", w.Body.String())
}
