package catalog

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Astemirdum/library-sync/directory/config"
	"github.com/Astemirdum/library-sync/directory/internal/model"
	"github.com/Astemirdum/library-sync/pkg/bridge"
	"go.uber.org/zap"
)

const (
	booksPath    = "/admin/books/"
	borrowedPath = "/admin/books/borrowed/"
)

// Service talks to the catalog store.
type Service struct {
	log    *zap.Logger
	client *bridge.Client
}

func NewService(log *zap.Logger, cfg config.Config) *Service {
	return &Service{
		log:    log.Named("catalog"),
		client: bridge.NewClient(cfg.CatalogHTTPServer.Host, cfg.CatalogHTTPServer.Port, cfg.Sync, log),
	}
}

// ListBooks returns the catalog's list response body as is.
func (s *Service) ListBooks(ctx context.Context, filter model.BookFilter) ([]byte, error) {
	query := url.Values{}
	if filter.Category != "" {
		query.Set("category", filter.Category)
	}
	if filter.Publisher != "" {
		query.Set("publisher", filter.Publisher)
	}
	return s.client.Raw(ctx, http.MethodGet, booksPath, query, nil)
}

// GetBookRaw returns the catalog's book response body as is.
func (s *Service) GetBookRaw(ctx context.Context, id int) ([]byte, error) {
	return s.client.Raw(ctx, http.MethodGet, booksPath+strconv.Itoa(id), nil, nil)
}

func (s *Service) GetBook(ctx context.Context, id int) (model.CatalogBook, error) {
	var book model.CatalogBook
	if err := s.client.Do(ctx, http.MethodGet, booksPath+strconv.Itoa(id), nil, nil, &book); err != nil {
		return model.CatalogBook{}, err
	}
	return book, nil
}

func (s *Service) RegisterBorrow(ctx context.Context, req model.BorrowRegistration) error {
	return s.client.Do(ctx, http.MethodPost, borrowedPath, nil, req, nil)
}
