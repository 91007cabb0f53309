package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Astemirdum/library-sync/catalog/config"
	"github.com/Astemirdum/library-sync/catalog/internal/handler"
	"github.com/Astemirdum/library-sync/catalog/internal/repository"
	"github.com/Astemirdum/library-sync/catalog/internal/service"
	"github.com/Astemirdum/library-sync/catalog/internal/service/directory"
	"github.com/Astemirdum/library-sync/catalog/migrations"
	"github.com/Astemirdum/library-sync/pkg/database"
	"github.com/Astemirdum/library-sync/pkg/kafka"
	"github.com/Astemirdum/library-sync/pkg/logger"
	"github.com/Astemirdum/library-sync/pkg/server"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const serviceName = "catalog"

func Run(cfg *config.Config) error {
	log := logger.NewLogger(cfg.Log, serviceName)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDB(ctx, &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return err
	}
	defer db.Close()

	events, err := kafka.NewPublisher(cfg.Kafka, serviceName, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := events.Close(); err != nil {
			log.Warn("events close", zap.Error(err))
		}
	}()

	srv := server.NewServer(cfg.Server, NewHandler(cfg, db, events, log))
	log.Info("http server start ON: ", zap.String("addr", cfg.Server.Addr()))

	gg, ctx := errgroup.WithContext(ctx)
	gg.Go(srv.Run)
	gg.Go(func() error {
		<-ctx.Done()
		log.Debug("Graceful shutdown")
		closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		return srv.Stop(closeCtx)
	})
	if err := gg.Wait(); err != nil {
		return err
	}
	log.Info("Graceful shutdown finished")
	return nil
}

// NewHandler wires the catalog over an open database.
func NewHandler(cfg *config.Config, db *sqlx.DB, events kafka.Publisher, log *zap.Logger) *echo.Echo {
	repo := repository.NewRepository(db, cfg.Database.Driver, log)
	svc := service.NewService(repo, directory.NewService(log, *cfg), events, log)
	return handler.New(svc, log).NewRouter()
}
