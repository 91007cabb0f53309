package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Astemirdum/library-sync/directory/internal/errs"
	"github.com/Astemirdum/library-sync/directory/internal/model"
	"github.com/Astemirdum/library-sync/pkg/bridge"
	md "github.com/Astemirdum/library-sync/pkg/middleware"
	"github.com/Astemirdum/library-sync/pkg/validate"
	_ "github.com/Astemirdum/library-sync/swagger/directory"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

type Handler struct {
	directorySvc DirectoryService
	log          *zap.Logger
}

func New(directorySvc DirectoryService, log *zap.Logger) *Handler {
	return &Handler{
		directorySvc: directorySvc,
		log:          log,
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
	base.GET("/swagger/*", echoSwagger.EchoWrapHandler(echoSwagger.InstanceName("directory")))

	e.Validator = validate.NewCustomValidator()
	api := e.Group("",
		md.RequestID(),
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		md.NewRateLimiter(apiRPS),
		md.PropagateRequestID,
	)
	api.GET("/", h.Root)

	api.GET("/books/", h.ListBooks)
	api.POST("/books/sync/", h.SyncBook)
	api.POST("/books/borrow/:id", h.BorrowBook)
	api.GET("/books/:book_id", h.GetBook)

	api.POST("/users/", h.CreateUser)
	api.GET("/users/", h.ListUsers)

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
	return c.JSON(http.StatusOK, model.MessageResponse{Message: "Welcome to the Library Management System (Frontend)!"})
}

// ListBooks godoc
// @Summary List catalog books
// @Tags books
// @Produce json
// @Param category query string false "category"
// @Param publisher query string false "publisher"
// @Success 200 {array} object
// @Failure 502 {object} echo.HTTPError
// @Router /books/ [get]
func (h *Handler) ListBooks(c echo.Context) error {
	filter := model.BookFilter{
		Category:  c.QueryParam("category"),
		Publisher: c.QueryParam("publisher"),
	}
	data, err := h.directorySvc.ListBooks(c.Request().Context(), filter)
	if err != nil {
		return upstreamError(err, "Failed to fetch books from backend", "Error fetching books from backend")
	}
	return c.JSONBlob(http.StatusOK, data)
}

// GetBook godoc
// @Summary Get a catalog book
// @Tags books
// @Produce json
// @Param book_id path int true "book id"
// @Success 200 {object} object
// @Failure 404 {object} echo.HTTPError
// @Failure 502 {object} echo.HTTPError
// @Router /books/{book_id} [get]
func (h *Handler) GetBook(c echo.Context) error {
	id, err := intParam(c.Param("book_id"), "book_id")
	if err != nil {
		return err
	}
	data, err := h.directorySvc.GetBook(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Book not found")
		}
		return upstreamError(err, "Failed to fetch book from backend", "Error fetching book from backend")
	}
	return c.JSONBlob(http.StatusOK, data)
}

// BorrowBook godoc
// @Summary Borrow a catalog book for a local user
// @Tags books
// @Produce json
// @Param id path int true "book id"
// @Param days query int true "loan length in days"
// @Param user_id query int true "user id"
// @Success 200 {object} model.BorrowResponse
// @Failure 400 {object} echo.HTTPError
// @Failure 404 {object} echo.HTTPError
// @Failure 502 {object} echo.HTTPError
// @Router /books/borrow/{id} [post]
func (h *Handler) BorrowBook(c echo.Context) error {
	var (
		req model.BorrowRequest
		err error
	)
	if req.BookID, err = intParam(c.Param("id"), "id"); err != nil {
		return err
	}
	if req.Days, err = intParam(c.QueryParam("days"), "days"); err != nil {
		return err
	}
	if req.UserID, err = intParam(c.QueryParam("user_id"), "user_id"); err != nil {
		return err
	}

	book, user, err := h.directorySvc.BorrowBook(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		var ue *errs.UpstreamError
		if errors.As(err, &ue) && ue.Op == errs.OpRegisterBorrow {
			return upstreamError(ue.Err, "Failed to notify backend about borrowed book", "Error notifying backend")
		}
		if errors.As(err, &ue) {
			return upstreamError(ue.Err, "Failed to fetch book from backend", "Error fetching book from backend")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, model.BorrowResponse{
		Message: fmt.Sprintf("Book borrowed for %d days by %s", req.Days, user.FullName()),
		Book:    book,
	})
}

// SyncBook godoc
// @Summary Record a book the catalog just created
// @Tags books
// @Accept json
// @Produce json
// @Param book body model.SyncBookRequest true "book"
// @Success 200 {object} model.SyncBookResponse
// @Failure 400 {object} echo.HTTPError
// @Router /books/sync/ [post]
func (h *Handler) SyncBook(c echo.Context) error {
	var req model.SyncBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	book, err := h.directorySvc.SyncBook(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, model.SyncBookResponse{Message: "Book synced", Book: book})
}

// CreateUser godoc
// @Summary Register a user
// @Tags users
// @Accept json
// @Produce json
// @Param user body model.CreateUserRequest true "user"
// @Success 200 {object} model.CreateUserResponse
// @Failure 400 {object} echo.HTTPError
// @Router /users/ [post]
func (h *Handler) CreateUser(c echo.Context) error {
	var req model.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	user, err := h.directorySvc.CreateUser(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, errs.ErrConflict) {
			return echo.NewHTTPError(http.StatusBadRequest, "User already exists")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, model.CreateUserResponse{Message: "User created", User: user})
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {array} model.User
// @Failure 404 {object} echo.HTTPError
// @Router /users/ [get]
func (h *Handler) ListUsers(c echo.Context) error {
	users, err := h.directorySvc.ListUsers(c.Request().Context())
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "No users found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, users)
}

// upstreamError maps a failed catalog call: a non-200 answer is a bad
// gateway, anything else is ours.
func upstreamError(err error, statusMsg, errMsg string) *echo.HTTPError {
	var se *bridge.StatusError
	if errors.As(err, &se) {
		return echo.NewHTTPError(http.StatusBadGateway, statusMsg)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, errMsg+": "+err.Error())
}

func intParam(v, name string) (int, error) {
	if v == "" {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" is required")
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" is invalid")
	}
	return n, nil
}
