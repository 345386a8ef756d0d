package postgres

import (
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/booklend/internal/apperrors"
	"github.com/nkiryanov/booklend/internal/repository"
	"github.com/nkiryanov/booklend/internal/testutil"
)

func Test_BookRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	strPtr := func(s string) *string { return &s }

	t.Run("create and get book", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			owner := createTestUser(t, tx)
			r := BookRepo{DB: tx}

			created, err := r.CreateBook(t.Context(), repository.CreateBookParams{
				OwnerID:  owner.ID,
				Title:    "Dune",
				Author:   "Frank Herbert",
				Language: "English",
				ISBN:     strPtr("9780441172719"),
			})
			require.NoError(t, err)

			got, err := r.GetBook(t.Context(), created.ID)

			require.NoError(t, err)
			assert.Equal(t, created, got)
			assert.Equal(t, owner.ID, got.OwnerID)
			assert.Equal(t, "9780441172719", *got.ISBN)
			assert.Nil(t, got.Genre, "optional fields stay empty")
		})
	})

	t.Run("get book not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := BookRepo{DB: tx}

			_, err := r.GetBook(t.Context(), 999_999)

			require.ErrorIs(t, err, apperrors.ErrBookNotFound)
		})
	})

	t.Run("owner of", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			owner := createTestUser(t, tx)
			book := createTestBook(t, tx, owner.ID)
			r := BookRepo{DB: tx}

			ownerID, err := r.OwnerOf(t.Context(), book.ID)
			require.NoError(t, err)
			assert.Equal(t, owner.ID, ownerID)

			_, err = r.OwnerOf(t.Context(), 999_999)
			require.ErrorIs(t, err, apperrors.ErrBookNotFound)
		})
	})

	t.Run("list books newest first", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			owner := createTestUser(t, tx)
			first := createTestBook(t, tx, owner.ID)
			second := createTestBook(t, tx, owner.ID)
			r := BookRepo{DB: tx}

			books, err := r.ListBooks(t.Context())

			require.NoError(t, err)
			require.Len(t, books, 2)
			assert.Equal(t, second.ID, books[0].ID)
			assert.Equal(t, first.ID, books[1].ID)
		})
	})

	t.Run("update book by owner", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			owner := createTestUser(t, tx)
			book := createTestBook(t, tx, owner.ID)
			r := BookRepo{DB: tx}

			affected, err := r.UpdateBook(t.Context(), book.ID, owner.ID, repository.UpdateBookParams{
				Title: strPtr("The Hobbit, or There and Back Again"),
				Genre: strPtr("Fantasy"),
			})
			require.NoError(t, err)
			require.EqualValues(t, 1, affected)

			got, err := r.GetBook(t.Context(), book.ID)
			require.NoError(t, err)
			assert.Equal(t, "The Hobbit, or There and Back Again", got.Title)
			assert.Equal(t, "Fantasy", *got.Genre)
			assert.Equal(t, book.Author, got.Author, "not passed fields must be kept")
		})
	})

	t.Run("update book by stranger affects nothing", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			owner := createTestUser(t, tx)
			stranger := createTestUser(t, tx)
			book := createTestBook(t, tx, owner.ID)
			r := BookRepo{DB: tx}

			affected, err := r.UpdateBook(t.Context(), book.ID, stranger.ID, repository.UpdateBookParams{Title: strPtr("Stolen")})
			require.NoError(t, err)
			assert.EqualValues(t, 0, affected)

			got, err := r.GetBook(t.Context(), book.ID)
			require.NoError(t, err)
			assert.Equal(t, book.Title, got.Title)
		})
	})

	t.Run("update book with empty params reports existence", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			owner := createTestUser(t, tx)
			book := createTestBook(t, tx, owner.ID)
			r := BookRepo{DB: tx}

			affected, err := r.UpdateBook(t.Context(), book.ID, owner.ID, repository.UpdateBookParams{})
			require.NoError(t, err)
			assert.EqualValues(t, 1, affected)
		})
	})

	t.Run("delete book", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			owner := createTestUser(t, tx)
			stranger := createTestUser(t, tx)
			book := createTestBook(t, tx, owner.ID)
			r := BookRepo{DB: tx}

			affected, err := r.DeleteBook(t.Context(), book.ID, stranger.ID)
			require.NoError(t, err)
			assert.EqualValues(t, 0, affected, "stranger could not delete the book")

			affected, err = r.DeleteBook(t.Context(), book.ID, owner.ID)
			require.NoError(t, err)
			assert.EqualValues(t, 1, affected)

			_, err = r.GetBook(t.Context(), book.ID)
			require.ErrorIs(t, err, apperrors.ErrBookNotFound)
		})
	})

	t.Run("delete book with loans fail", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			owner := createTestUser(t, tx)
			borrower := createTestUser(t, tx)
			book := createTestBook(t, tx, owner.ID)
			createTestLoan(t, tx, book, borrower.ID)
			r := BookRepo{DB: tx}

			_, err := r.DeleteBook(t.Context(), book.ID, owner.ID)

			require.ErrorIs(t, err, apperrors.ErrBookHasLoans)
		})
	})
}
