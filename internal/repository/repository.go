package repository

import (
	"context"
	"time"

	"github.com/nkiryanov/booklend/internal/models"
)

type Storage interface {
	User() UserRepo
	Book() BookRepo
	Loan() LoanRepo

	// Run fn in transaction: commit if fn returns nil, rollback otherwise
	InTx(ctx context.Context, fn func(Storage) error) error
}

type CreateUserParams struct {
	Email          string
	Username       string
	FirstName      string
	LastName       string
	HashedPassword string
}

// User repository interface
type UserRepo interface {
	// Create user
	// If user with email or username exists already has to return error apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, params CreateUserParams) (models.User, error)

	// Get user by it's id or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID int64) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
}

type CreateBookParams struct {
	OwnerID     int64
	Title       string
	Author      string
	Language    string
	ISBN        *string
	Genre       *string
	Description *string
	CoverImage  *string
}

// Partial book update: nil field means 'keep current value'
type UpdateBookParams struct {
	Title       *string
	Author      *string
	Language    *string
	ISBN        *string
	Genre       *string
	Description *string
	CoverImage  *string
}

// Book repository interface
type BookRepo interface {
	CreateBook(ctx context.Context, params CreateBookParams) (models.Book, error)

	// If book not found must return apperrors.ErrBookNotFound
	GetBook(ctx context.Context, bookID int64) (models.Book, error)

	// Point in time read of the book owner
	// If book not found must return apperrors.ErrBookNotFound
	OwnerOf(ctx context.Context, bookID int64) (ownerID int64, err error)

	// List all books, newest first
	ListBooks(ctx context.Context) ([]models.Book, error)

	// Update book only if it owned by ownerID
	// Return affected rows count: 0 means book not exists or has other owner
	UpdateBook(ctx context.Context, bookID int64, ownerID int64, params UpdateBookParams) (int64, error)

	// Delete book only if it owned by ownerID
	// Return affected rows count: 0 means book not exists or has other owner
	// If book has loans must return apperrors.ErrBookHasLoans
	DeleteBook(ctx context.Context, bookID int64, ownerID int64) (int64, error)
}

type CreateLoanParams struct {
	BookID     int64
	BorrowerID int64
	OwnerID    int64
	StartDate  *time.Time
	DueDate    *time.Time
	Message    string
}

type ListLoansOpts struct {
	OwnerID    int64 // filter by owner if not zero
	BorrowerID int64 // filter by borrower if not zero
}

// Loan repository interface
// The only writer of loan records
type LoanRepo interface {
	// Insert loan in 'pending' status
	// If book not exists must return apperrors.ErrBookNotFound
	CreateLoan(ctx context.Context, params CreateLoanParams) (models.Loan, error)

	// If loan not found must return apperrors.ErrLoanNotFound
	GetLoan(ctx context.Context, loanID int64) (models.Loan, error)

	// List loans filtered by role, newest first
	ListLoans(ctx context.Context, opts ListLoansOpts) ([]models.Loan, error)

	// Move loan from tr.From to tr.To status in single conditional update.
	// Update applied only if loan id, owner and current status match at once.
	// Return affected rows count: the only truth whether transition happened
	Transition(ctx context.Context, loanID int64, ownerID int64, tr models.LoanTransition, at time.Time) (int64, error)
}
