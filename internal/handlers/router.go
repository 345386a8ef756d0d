package handlers

import (
	"context"
	"net/http"

	"github.com/nkiryanov/booklend/internal/handlers/middleware"
	"github.com/nkiryanov/booklend/internal/logger"
	"github.com/nkiryanov/booklend/internal/models"
	"github.com/nkiryanov/booklend/internal/repository"
	"github.com/nkiryanov/booklend/internal/service/auth"
	"github.com/nkiryanov/booklend/internal/service/loan"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authService authService,
	userService userService,
	bookService bookService,
	loanService loanService,
	logger logger.Logger,
) http.Handler {
	withAuth := middleware.AuthMiddleware(authService, logger)

	mux := http.NewServeMux()

	mux.Handle("POST /api/users/register", handleRegister(authService, logger))
	mux.Handle("POST /api/users/login", handleLogin(authService, logger))
	mux.Handle("GET /api/users/me", withAuth(handleUserMe(userService, logger)))

	mux.Handle("GET /api/books", handleListBooks(bookService, logger))
	mux.Handle("POST /api/books", withAuth(handleCreateBook(bookService, logger)))
	mux.Handle("GET /api/books/{id}", handleGetBook(bookService, logger))
	mux.Handle("PUT /api/books/{id}", withAuth(handleUpdateBook(bookService, logger)))
	mux.Handle("DELETE /api/books/{id}", withAuth(handleDeleteBook(bookService, logger)))

	mux.Handle("POST /api/loans/request", withAuth(handleRequestLoan(loanService, logger)))
	mux.Handle("GET /api/loans/received", withAuth(handleListReceivedLoans(loanService, logger)))
	mux.Handle("GET /api/loans/my-borrowed", withAuth(handleListBorrowedLoans(loanService, logger)))
	mux.Handle("PUT /api/loans/{id}/approve", withAuth(handleLoanTransition(loanService.Approve, logger)))
	mux.Handle("PUT /api/loans/{id}/decline", withAuth(handleLoanTransition(loanService.Decline, logger)))
	mux.Handle("PUT /api/loans/{id}/complete", withAuth(handleLoanTransition(loanService.Complete, logger)))

	handler := chain(mux,
		middleware.LoggerMiddleware(logger),
	)

	return handler
}

type authService interface {
	// Register user and issue access token
	// Has to return apperrors.ErrUserAlreadyExists if email or username taken
	Register(ctx context.Context, params auth.RegisterParams) (models.User, models.IssuedToken, error)

	// Login user with email and password
	// Has to return apperrors.ErrUserNotFound if user not found or password wrong
	Login(ctx context.Context, email string, password string) (models.User, models.IssuedToken, error)

	// Set access token to response
	SetToken(w http.ResponseWriter, token models.IssuedToken)

	// Restore verified principal from request headers
	Authenticate(headers http.Header) (models.Principal, error)
}

type userService interface {
	GetUser(ctx context.Context, userID int64) (models.User, error)
}

type bookService interface {
	Create(ctx context.Context, ownerID int64, params repository.CreateBookParams) (models.Book, error)
	List(ctx context.Context) ([]models.Book, error)
	Get(ctx context.Context, bookID int64) (models.Book, error)
	Update(ctx context.Context, bookID int64, actorID int64, params repository.UpdateBookParams) (models.Book, error)
	Delete(ctx context.Context, bookID int64, actorID int64) error
}

type loanService interface {
	Request(ctx context.Context, borrowerID int64, params loan.RequestParams) (models.Loan, error)
	ListReceived(ctx context.Context, ownerID int64) ([]models.Loan, error)
	ListBorrowed(ctx context.Context, borrowerID int64) ([]models.Loan, error)
	Approve(ctx context.Context, loanID int64, actorID int64) (models.Loan, error)
	Decline(ctx context.Context, loanID int64, actorID int64) (models.Loan, error)
	Complete(ctx context.Context, loanID int64, actorID int64) (models.Loan, error)
}
