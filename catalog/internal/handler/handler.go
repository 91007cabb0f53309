package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Astemirdum/library-sync/catalog/internal/errs"
	"github.com/Astemirdum/library-sync/catalog/internal/model"
	md "github.com/Astemirdum/library-sync/pkg/middleware"
	"github.com/Astemirdum/library-sync/pkg/validate"
	_ "github.com/Astemirdum/library-sync/swagger/catalog"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

type Handler struct {
	catalogSvc CatalogService
	log        *zap.Logger
}

func New(catalogSvc CatalogService, log *zap.Logger) *Handler {
	return &Handler{
		catalogSvc: catalogSvc,
		log:        log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	md.Common(e)

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.EchoWrapHandler(echoSwagger.InstanceName("catalog")))

	e.Validator = validate.NewCustomValidator()
	api := e.Group("",
		md.RequestID(),
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		md.NewRateLimiter(apiRPS),
		md.PropagateRequestID,
	)
	api.GET("/", h.Root)

	api.POST("/admin/books/", h.CreateBook)
	api.GET("/admin/books/", h.ListBooks)
	api.POST("/admin/books/borrowed/", h.RegisterBorrow)
	api.GET("/admin/books/borrowed/", h.ListBorrowed)
	api.GET("/admin/books/unavailable/", h.ListUnavailable)
	api.GET("/admin/books/:book_id", h.GetBook)
	api.DELETE("/admin/books/:book_id", h.DeleteBook)

	api.GET("/admin/users/", h.FetchUsers)
	api.POST("/users/", h.EchoUser)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// Root godoc
// @Summary Welcome message
// @Tags meta
// @Produce json
// @Success 200 {object} model.MessageResponse
// @Router / [get]
func (h *Handler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, model.MessageResponse{Message: "Welcome to the Library Management System (Backend)!"})
}

// CreateBook godoc
// @Summary Add a book to the catalog
// @Tags books
// @Accept json
// @Produce json
// @Param book body model.CreateBookRequest true "book"
// @Success 200 {object} model.CreateBookResponse
// @Failure 400 {object} echo.HTTPError
// @Router /admin/books/ [post]
func (h *Handler) CreateBook(c echo.Context) error {
	var req model.CreateBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	book, err := h.catalogSvc.CreateBook(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, model.CreateBookResponse{
		Message: "Book added and synced with frontend",
		Book:    book,
	})
}

// DeleteBook godoc
// @Summary Remove a book from the catalog
// @Tags books
// @Produce json
// @Param book_id path int true "book id"
// @Success 200 {object} model.MessageResponse
// @Failure 404 {object} echo.HTTPError
// @Router /admin/books/{book_id} [delete]
func (h *Handler) DeleteBook(c echo.Context) error {
	id, err := bookID(c)
	if err != nil {
		return err
	}
	if err := h.catalogSvc.DeleteBook(c.Request().Context(), id); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Book not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, model.MessageResponse{Message: fmt.Sprintf("Book with ID %d has been removed", id)})
}

// GetBook godoc
// @Summary Get a catalog book
// @Tags books
// @Produce json
// @Param book_id path int true "book id"
// @Success 200 {object} model.Book
// @Failure 404 {object} echo.HTTPError
// @Router /admin/books/{book_id} [get]
func (h *Handler) GetBook(c echo.Context) error {
	id, err := bookID(c)
	if err != nil {
		return err
	}
	book, err := h.catalogSvc.GetBook(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Book not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, book)
}

// ListBooks godoc
// @Summary List catalog books
// @Tags books
// @Produce json
// @Param category query string false "category"
// @Param publisher query string false "publisher"
// @Success 200 {array} model.Book
// @Failure 404 {object} echo.HTTPError
// @Router /admin/books/ [get]
func (h *Handler) ListBooks(c echo.Context) error {
	filter := model.BookFilter{
		Category:  c.QueryParam("category"),
		Publisher: c.QueryParam("publisher"),
	}
	books, err := h.catalogSvc.ListBooks(c.Request().Context(), filter)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "No books found with the given filters")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, books)
}

// RegisterBorrow godoc
// @Summary Record a borrow made through the directory
// @Tags borrowed
// @Accept json
// @Produce json
// @Param borrow body model.BorrowRequest true "borrow"
// @Success 200 {object} model.BorrowResponse
// @Failure 400 {object} echo.HTTPError
// @Failure 404 {object} echo.HTTPError
// @Router /admin/books/borrowed/ [post]
func (h *Handler) RegisterBorrow(c echo.Context) error {
	var req model.BorrowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.BorrowedUntil.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "borrowed_until is required")
	}
	entry, err := h.catalogSvc.RegisterBorrow(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Book not found in backend database")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, model.BorrowResponse{
		Message:      "Borrowed book synced with backend",
		BorrowedBook: entry,
	})
}

// ListBorrowed godoc
// @Summary List the borrow ledger
// @Tags borrowed
// @Produce json
// @Success 200 {array} model.BorrowedBook
// @Failure 404 {object} echo.HTTPError
// @Router /admin/books/borrowed/ [get]
func (h *Handler) ListBorrowed(c echo.Context) error {
	items, err := h.catalogSvc.ListBorrowed(c.Request().Context())
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "No borrowed books found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

// ListUnavailable godoc
// @Summary List unavailable books
// @Tags borrowed
// @Produce json
// @Success 200 {array} model.BorrowedBook
// @Failure 404 {object} echo.HTTPError
// @Router /admin/books/unavailable/ [get]
func (h *Handler) ListUnavailable(c echo.Context) error {
	items, err := h.catalogSvc.ListUnavailable(c.Request().Context())
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "No unavailable books found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

// FetchUsers godoc
// @Summary List users registered in the directory
// @Tags users
// @Produce json
// @Success 200 {array} object
// @Failure 500 {object} echo.HTTPError
// @Router /admin/users/ [get]
func (h *Handler) FetchUsers(c echo.Context) error {
	data, err := h.catalogSvc.FetchUsers(c.Request().Context())
	if err != nil {
		h.log.Warn("fetch users", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Error retrieving users from frontend: "+err.Error())
	}
	return c.JSONBlob(http.StatusOK, data)
}

// EchoUser godoc
// @Summary Echo user fields back without storing them
// @Tags users
// @Produce json
// @Param email query string true "email"
// @Param first_name query string true "first name"
// @Param last_name query string true "last name"
// @Success 200 {object} model.UserEcho
// @Failure 400 {object} echo.HTTPError
// @Router /users/ [post]
func (h *Handler) EchoUser(c echo.Context) error {
	user := model.UserEcho{
		Email:     c.QueryParam("email"),
		FirstName: c.QueryParam("first_name"),
		LastName:  c.QueryParam("last_name"),
	}
	query := c.QueryParams()
	for _, name := range []string{"email", "first_name", "last_name"} {
		if !query.Has(name) {
			return echo.NewHTTPError(http.StatusBadRequest, name+" is required")
		}
	}
	return c.JSON(http.StatusOK, user)
}

func bookID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("book_id"))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "book_id is invalid")
	}
	return id, nil
}
