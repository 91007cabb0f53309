package directory

import (
	"context"
	"net/http"

	"github.com/Astemirdum/library-sync/catalog/config"
	"github.com/Astemirdum/library-sync/catalog/internal/model"
	"github.com/Astemirdum/library-sync/pkg/bridge"
	"go.uber.org/zap"
)

const (
	syncBookPath  = "/books/sync/"
	listUsersPath = "/users/"
)

// Service talks to the directory store.
type Service struct {
	log    *zap.Logger
	client *bridge.Client
}

func NewService(log *zap.Logger, cfg config.Config) *Service {
	return &Service{
		log:    log.Named("directory"),
		client: bridge.NewClient(cfg.DirectoryHTTPServer.Host, cfg.DirectoryHTTPServer.Port, cfg.Sync, log),
	}
}

func NewServiceURL(log *zap.Logger, baseURL string, cfg bridge.Config) *Service {
	return &Service{
		log:    log.Named("directory"),
		client: bridge.NewClientURL(baseURL, cfg, log),
	}
}

// SyncBook tells the directory about a new catalog book. It never fails.
func (s *Service) SyncBook(ctx context.Context, book model.Book) {
	s.client.Notify(ctx, syncBookPath, model.SyncBookRequest{
		ID:        book.ID,
		Title:     book.Title,
		Author:    book.Author,
		Publisher: book.Publisher,
		Category:  book.Category,
	})
}

// ListUsers returns the directory's user list body untouched.
func (s *Service) ListUsers(ctx context.Context) ([]byte, error) {
	return s.client.Raw(ctx, http.MethodGet, listUsersPath, nil, nil)
}
