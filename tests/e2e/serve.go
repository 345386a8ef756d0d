package e2e

import (
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/booklend/internal/handlers"
	"github.com/nkiryanov/booklend/internal/logger"
	"github.com/nkiryanov/booklend/internal/repository/postgres"
	"github.com/nkiryanov/booklend/internal/service/auth"
	"github.com/nkiryanov/booklend/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/booklend/internal/service/book"
	"github.com/nkiryanov/booklend/internal/service/loan"
	"github.com/nkiryanov/booklend/internal/service/user"
	"github.com/nkiryanov/booklend/internal/testutil"
)

const TestSecretKey = "e2e-secret-key-at-least-32-bytes-long"

type Services struct {
	AuthService *auth.AuthService
	UserService *user.UserService
	BookService *book.BookService
	LoanService *loan.LoanService
}

// Create db transaction and run server in with that connection (one connection cause one transaction)
// The created transaction passed to inner function: so, you can safely use testutil.WithTx with it
func ServeWithTx(dbpool *pgxpool.Pool, t *testing.T, fn func(tx pgx.Tx, srvURL string, services Services)) {
	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		storage := postgres.NewStorage(tx)

		tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: TestSecretKey})
		require.NoError(t, err, "token manager should be created without errors")

		as, err := auth.NewService(auth.Config{}, tokenManager, storage.User())
		require.NoError(t, err, "auth service starting error", err)

		services := Services{
			AuthService: as,
			UserService: user.NewService(storage.User()),
			BookService: book.NewService(storage.Book()),
			LoanService: loan.NewService(storage),
		}

		router := handlers.NewRouter(
			services.AuthService,
			services.UserService,
			services.BookService,
			services.LoanService,
			logger.NewNoOpLogger(),
		)

		// Run http server with the router in transaction
		srv := httptest.NewServer(router)
		defer srv.Close()

		fn(tx, srv.URL, services)
	})
}
