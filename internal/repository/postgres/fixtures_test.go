package postgres

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/booklend/internal/models"
	"github.com/nkiryanov/booklend/internal/repository"
)

// Create user with unique email and username
func createTestUser(t *testing.T, db DBTX) models.User {
	t.Helper()

	suffix := uuid.NewString()[:8]
	user, err := (&UserRepo{DB: db}).CreateUser(t.Context(), repository.CreateUserParams{
		Email:          fmt.Sprintf("user-%s@example.com", suffix),
		Username:       "user-" + suffix,
		FirstName:      "Test",
		LastName:       "User",
		HashedPassword: "hashedpassword",
	})
	require.NoError(t, err, "test user must be created")

	return user
}

func createTestBook(t *testing.T, db DBTX, ownerID int64) models.Book {
	t.Helper()

	book, err := (&BookRepo{DB: db}).CreateBook(t.Context(), repository.CreateBookParams{
		OwnerID:  ownerID,
		Title:    "The Hobbit",
		Author:   "J. R. R. Tolkien",
		Language: models.DefaultBookLanguage,
	})
	require.NoError(t, err, "test book must be created")

	return book
}

func createTestLoan(t *testing.T, db DBTX, book models.Book, borrowerID int64) models.Loan {
	t.Helper()

	loan, err := (&LoanRepo{DB: db}).CreateLoan(t.Context(), repository.CreateLoanParams{
		BookID:     book.ID,
		BorrowerID: borrowerID,
		OwnerID:    book.OwnerID,
		Message:    "may I borrow it?",
	})
	require.NoError(t, err, "test loan must be created")

	return loan
}
