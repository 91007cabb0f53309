package database

import (
	"context"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"sync"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

const (
	CommandUp     = "up"
	CommandDown   = "down"
	CommandStatus = "status"
)

type DB struct {
	Driver   string `yaml:"driver" envconfig:"DB_DRIVER"`
	Host     string `yaml:"host" envconfig:"DB_HOST" default:"localhost"`
	Port     string `yaml:"port" envconfig:"DB_PORT" default:"5432"`
	Username string `yaml:"user" envconfig:"DB_USER"`
	Password string `yaml:"password" envconfig:"DB_PASSWORD" json:"-"`
	NameDB   string `yaml:"dbname" envconfig:"DB_NAME"`
	SSLMode  string `yaml:"sslmode" envconfig:"DB_SSLMODE" default:"disable"`
	// Path is the database file used by the sqlite3 driver.
	Path string `yaml:"path" envconfig:"DB_PATH"`
}

func (c *DB) driverName() (string, error) {
	switch c.Driver {
	case DriverPostgres:
		return "pgx", nil
	case DriverSQLite:
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("unsupported db driver %q", c.Driver)
	}
}

func (c *DB) DSN() string {
	if c.Driver == DriverSQLite {
		return fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", c.Path)
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Username, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     c.NameDB,
		RawQuery: url.Values{"sslmode": []string{c.SSLMode}}.Encode(),
	}
	return u.String()
}

// Connect opens the pool and checks it is reachable. No migrations are run.
func Connect(ctx context.Context, cfg *DB) (*sqlx.DB, error) {
	driver, err := cfg.driverName()
	if err != nil {
		return nil, err
	}
	db, err := sqlx.ConnectContext(ctx, driver, cfg.DSN())
	if err != nil {
		return nil, errors.Wrapf(err, "connect %s", cfg.Driver)
	}
	if cfg.Driver == DriverSQLite {
		// single writer; keeps transactions from tripping over SQLITE_BUSY
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// NewDB connects and applies every pending migration found in migrations/<driver>.
func NewDB(ctx context.Context, cfg *DB, migrations fs.FS) (*sqlx.DB, error) {
	db, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db, cfg.Driver, migrations, CommandUp); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

func Migrate(db *sqlx.DB, driver string, migrations fs.FS, command string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect(driver); err != nil {
		return err
	}

	var err error
	switch command {
	case CommandUp:
		err = goose.Up(db.DB, driver)
	case CommandDown:
		err = goose.Down(db.DB, driver)
	case CommandStatus:
		err = goose.Status(db.DB, driver)
	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}
	return errors.Wrapf(err, "goose %s", command)
}

func StatementBuilder(driver string) sq.StatementBuilderType {
	if driver == DriverSQLite {
		return sq.StatementBuilder.PlaceholderFormat(sq.Question)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
