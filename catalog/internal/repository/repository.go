package repository

import (
	"context"
	"database/sql"

	"github.com/Astemirdum/library-sync/catalog/internal/errs"
	"github.com/Astemirdum/library-sync/catalog/internal/model"
	"github.com/Astemirdum/library-sync/pkg/database"
	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

//go:generate go run github.com/golang/mock/mockgen -source=repository.go -destination=mocks/mock.go

type Repository interface {
	CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error)
	DeleteBook(ctx context.Context, id int) error
	GetBook(ctx context.Context, id int) (model.Book, error)
	ListBooks(ctx context.Context, filter model.BookFilter) ([]model.Book, error)
	RegisterBorrow(ctx context.Context, req model.BorrowRequest) (model.BorrowedBook, error)
	ListBorrowed(ctx context.Context) ([]model.BorrowedBook, error)
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
	booksTableName    = `books_admin`
	borrowedTableName = `borrowed_books`
)

var (
	bookColumns     = []string{"id", "title", "author", "publisher", "category", "available"}
	borrowedColumns = []string{"id", "book_id", "borrower_name", "borrowed_until"}
)

func (r *repository) CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error) {
	q, args, err := r.qb.Insert(booksTableName).
		Columns("title", "author", "publisher", "category", "available").
		Values(req.Title, req.Author, req.Publisher, req.Category, true).
		Suffix("RETURNING id, title, author, publisher, category, available").
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	var book model.Book
	if err := r.db.GetContext(ctx, &book, q, args...); err != nil {
		r.log.Error("CreateBook", zap.String("q", q), zap.Any("args", args))
		return model.Book{}, err
	}
	return book, nil
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

func (r *repository) GetBook(ctx context.Context, id int) (model.Book, error) {
	q, args, err := r.qb.Select(bookColumns...).
		From(booksTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	var book model.Book
	if err := r.db.GetContext(ctx, &book, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, err
	}
	return book, nil
}

func (r *repository) ListBooks(ctx context.Context, filter model.BookFilter) ([]model.Book, error) {
	qs := r.qb.Select(bookColumns...).
		From(booksTableName).
		OrderBy("id")
	if filter.Category != "" {
		qs = qs.Where(sq.Eq{"category": filter.Category})
	}
	if filter.Publisher != "" {
		qs = qs.Where(sq.Eq{"publisher": filter.Publisher})
	}
	q, args, err := qs.ToSql()
	if err != nil {
		return nil, err
	}
	r.log.Debug("ListBooks", zap.String("query", q), zap.Any("args", args))

	books := make([]model.Book, 0)
	if err := r.db.SelectContext(ctx, &books, q, args...); err != nil {
		return nil, err
	}
	return books, nil
}

// RegisterBorrow marks the book unavailable and appends a ledger row in one
// transaction: either both happen or neither does.
func (r *repository) RegisterBorrow(ctx context.Context, req model.BorrowRequest) (model.BorrowedBook, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.BorrowedBook{}, err
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	q, args, err := r.qb.Update(booksTableName).
		Set("available", false).
		Where(sq.Eq{"id": req.BookID}).
		ToSql()
	if err != nil {
		return model.BorrowedBook{}, err
	}
	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return model.BorrowedBook{}, errors.Wrap(err, "mark unavailable")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.BorrowedBook{}, err
	}
	if n == 0 {
		return model.BorrowedBook{}, errs.ErrNotFound
	}

	q, args, err = r.qb.Insert(borrowedTableName).
		Columns("book_id", "borrower_name", "borrowed_until").
		Values(req.BookID, req.BorrowerName, req.BorrowedUntil.UTC()).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return model.BorrowedBook{}, err
	}
	var id int
	if err := tx.GetContext(ctx, &id, q, args...); err != nil {
		r.log.Error("RegisterBorrow", zap.String("q", q), zap.Any("args", args))
		return model.BorrowedBook{}, errors.Wrap(err, "append ledger")
	}

	q, args, err = r.qb.Select(borrowedColumns...).
		From(borrowedTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.BorrowedBook{}, err
	}
	var entry model.BorrowedBook
	if err := tx.GetContext(ctx, &entry, q, args...); err != nil {
		return model.BorrowedBook{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.BorrowedBook{}, err
	}
	return entry, nil
}

func (r *repository) ListBorrowed(ctx context.Context) ([]model.BorrowedBook, error) {
	q, args, err := r.qb.Select(borrowedColumns...).
		From(borrowedTableName).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}
	items := make([]model.BorrowedBook, 0)
	if err := r.db.SelectContext(ctx, &items, q, args...); err != nil {
		return nil, err
	}
	return items, nil
}
