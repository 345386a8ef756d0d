package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/booklend/internal/apperrors"
	"github.com/nkiryanov/booklend/internal/models"
	"github.com/nkiryanov/booklend/internal/repository"
)

type BookRepo struct {
	DB DBTX
}

const bookColumns = `id, owner_id, created_at, title, author, language, isbn, genre, description, cover_image`

const createBook = `-- name: CreateBook
INSERT INTO books (owner_id, title, author, language, isbn, genre, description, cover_image)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + bookColumns

func (r *BookRepo) CreateBook(ctx context.Context, p repository.CreateBookParams) (models.Book, error) {
	rows, _ := r.DB.Query(ctx, createBook, p.OwnerID, p.Title, p.Author, p.Language, p.ISBN, p.Genre, p.Description, p.CoverImage)
	book, err := pgx.CollectOneRow(rows, rowToBook)
	if err != nil {
		return book, fmt.Errorf("db error: %w", err)
	}

	return book, nil
}

const getBook = `-- name: GetBook
SELECT ` + bookColumns + ` FROM books
WHERE id = $1
`

func (r *BookRepo) GetBook(ctx context.Context, bookID int64) (models.Book, error) {
	rows, _ := r.DB.Query(ctx, getBook, bookID)
	book, err := pgx.CollectOneRow(rows, rowToBook)

	switch {
	case err == nil:
		return book, nil
	case errors.Is(err, pgx.ErrNoRows):
		return book, apperrors.ErrBookNotFound
	default:
		return book, fmt.Errorf("db error: %w", err)
	}
}

const ownerOf = `-- name: OwnerOf
SELECT owner_id FROM books
WHERE id = $1
`

func (r *BookRepo) OwnerOf(ctx context.Context, bookID int64) (int64, error) {
	var ownerID int64
	err := r.DB.QueryRow(ctx, ownerOf, bookID).Scan(&ownerID)

	switch {
	case err == nil:
		return ownerID, nil
	case errors.Is(err, pgx.ErrNoRows):
		return 0, apperrors.ErrBookNotFound
	default:
		return 0, fmt.Errorf("db error: %w", err)
	}
}

const listBooks = `-- name: ListBooks
SELECT ` + bookColumns + ` FROM books
ORDER BY created_at DESC, id DESC
`

func (r *BookRepo) ListBooks(ctx context.Context) ([]models.Book, error) {
	rows, _ := r.DB.Query(ctx, listBooks)
	books, err := pgx.CollectRows(rows, rowToBook)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return books, nil
}

func (r *BookRepo) UpdateBook(ctx context.Context, bookID int64, ownerID int64, p repository.UpdateBookParams) (int64, error) {
	record := goqu.Record{}
	setIfPresent := func(column string, value *string) {
		if value != nil {
			record[column] = *value
		}
	}
	setIfPresent("title", p.Title)
	setIfPresent("author", p.Author)
	setIfPresent("language", p.Language)
	setIfPresent("isbn", p.ISBN)
	setIfPresent("genre", p.Genre)
	setIfPresent("description", p.Description)
	setIfPresent("cover_image", p.CoverImage)

	// Nothing to change: still has to report whether the owned book exists
	if len(record) == 0 {
		record["id"] = goqu.C("id")
	}

	query, args, err := dialect.Update("books").
		Prepared(true).
		Set(record).
		Where(goqu.Ex{"id": bookID, "owner_id": ownerID}).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	tag, err := r.DB.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return tag.RowsAffected(), nil
}

const deleteBook = `-- name: DeleteBook
DELETE FROM books
WHERE id = $1 AND owner_id = $2
`

func (r *BookRepo) DeleteBook(ctx context.Context, bookID int64, ownerID int64) (int64, error) {
	tag, err := r.DB.Exec(ctx, deleteBook, bookID, ownerID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return 0, apperrors.ErrBookHasLoans
		}

		return 0, fmt.Errorf("db error: %w", err)
	}

	return tag.RowsAffected(), nil
}

func rowToBook(row pgx.CollectableRow) (models.Book, error) {
	var b models.Book
	err := row.Scan(&b.ID, &b.OwnerID, &b.CreatedAt, &b.Title, &b.Author, &b.Language, &b.ISBN, &b.Genre, &b.Description, &b.CoverImage)
	return b, err
}
