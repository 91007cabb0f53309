package repository

import (
	"context"
	"database/sql"

	"github.com/Astemirdum/library-sync/directory/internal/errs"
	"github.com/Astemirdum/library-sync/directory/internal/model"
	"github.com/Astemirdum/library-sync/pkg/database"
	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

//go:generate go run github.com/golang/mock/mockgen -source=repository.go -destination=mocks/mock.go

type Repository interface {
	CreateUser(ctx context.Context, req model.CreateUserRequest) (model.User, error)
	GetUser(ctx context.Context, id int) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)

	GetBook(ctx context.Context, id int) (model.Book, error)
	SaveBook(ctx context.Context, book model.Book) (model.Book, error)
	DeleteBook(ctx context.Context, id int) error
}

type repository struct {
	db  *sqlx.DB
	qb  sq.StatementBuilderType
	log *zap.Logger
}

func NewRepository(db *sqlx.DB, driver string, log *zap.Logger) *repository {
	return &repository{
		db:  db,
		qb:  database.StatementBuilder(driver),
		log: log.Named("repo"),
	}
}

const (
	usersTableName = `users`
	booksTableName = `books`
)

var (
	userColumns = []string{"id", "email", "first_name", "last_name"}
	bookColumns = []string{"id", "title", "author", "publisher", "category", "available", "borrower_id", "borrowed_until"}
)

// CreateUser relies on the unique email index, so two concurrent requests for
// the same email cannot both succeed.
func (r *repository) CreateUser(ctx context.Context, req model.CreateUserRequest) (model.User, error) {
	q, args, err := r.qb.Insert(usersTableName).
		Columns("email", "first_name", "last_name").
		Values(req.Email, req.FirstName, req.LastName).
		Suffix("RETURNING id, email, first_name, last_name").
		ToSql()
	if err != nil {
		return model.User{}, err
	}
	var user model.User
	if err := r.db.GetContext(ctx, &user, q, args...); err != nil {
		if database.IsUniqueViolation(err) {
			return model.User{}, errs.ErrConflict
		}
		r.log.Error("CreateUser", zap.String("q", q), zap.Error(err))
		return model.User{}, err
	}
	return user, nil
}

func (r *repository) GetUser(ctx context.Context, id int) (model.User, error) {
	q, args, err := r.qb.Select(userColumns...).
		From(usersTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.User{}, err
	}
	var user model.User
	if err := r.db.GetContext(ctx, &user, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, errs.ErrNotFound
		}
		return model.User{}, err
	}
	return user, nil
}

func (r *repository) ListUsers(ctx context.Context) ([]model.User, error) {
	q, args, err := r.qb.Select(userColumns...).
		From(usersTableName).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}
	users := make([]model.User, 0)
	if err := r.db.SelectContext(ctx, &users, q, args...); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repository) GetBook(ctx context.Context, id int) (model.Book, error) {
	return r.getBook(ctx, r.db, id)
}

func (r *repository) getBook(ctx context.Context, db sqlx.QueryerContext, id int) (model.Book, error) {
	q, args, err := r.qb.Select(bookColumns...).
		From(booksTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	var book model.Book
	if err := sqlx.GetContext(ctx, db, &book, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, err
	}
	return book, nil
}

// SaveBook writes the mirror row for book.ID, replacing whatever was there.
func (r *repository) SaveBook(ctx context.Context, book model.Book) (model.Book, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Book{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var until any
	if book.BorrowedUntil != nil {
		until = book.BorrowedUntil.UTC()
	}
	q, args, err := r.qb.Insert(booksTableName).
		Columns(bookColumns...).
		Values(book.ID, book.Title, book.Author, book.Publisher, book.Category, book.Available, book.BorrowerID, until).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			author = excluded.author,
			publisher = excluded.publisher,
			category = excluded.category,
			available = excluded.available,
			borrower_id = excluded.borrower_id,
			borrowed_until = excluded.borrowed_until`).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		r.log.Error("SaveBook", zap.String("q", q), zap.Any("args", args))
		return model.Book{}, errors.Wrap(err, "upsert book")
	}
	saved, err := r.getBook(ctx, tx, book.ID)
	if err != nil {
		return model.Book{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Book{}, err
	}
	return saved, nil
}

func (r *repository) DeleteBook(ctx context.Context, id int) error {
	q, args, err := r.qb.Delete(booksTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrNotFound
	}
	return nil
}
