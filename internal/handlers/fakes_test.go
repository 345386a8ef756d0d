package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/booklend/internal/apperrors"
	"github.com/nkiryanov/booklend/internal/logger"
	"github.com/nkiryanov/booklend/internal/models"
	"github.com/nkiryanov/booklend/internal/repository"
	"github.com/nkiryanov/booklend/internal/service/auth"
	"github.com/nkiryanov/booklend/internal/service/loan"
)

// Accepts 'Bearer user-<id>' as valid credential
type fakeAuth struct {
	register func(ctx context.Context, p auth.RegisterParams) (models.User, models.IssuedToken, error)
	login    func(ctx context.Context, email, password string) (models.User, models.IssuedToken, error)
}

func (f *fakeAuth) Register(ctx context.Context, p auth.RegisterParams) (models.User, models.IssuedToken, error) {
	return f.register(ctx, p)
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (models.User, models.IssuedToken, error) {
	return f.login(ctx, email, password)
}

func (f *fakeAuth) SetToken(w http.ResponseWriter, token models.IssuedToken) {
	w.Header().Set("Authorization", "Bearer "+token.Value)
}

func (f *fakeAuth) Authenticate(headers http.Header) (models.Principal, error) {
	value, ok := strings.CutPrefix(headers.Get("Authorization"), "Bearer user-")
	if !ok {
		return models.Principal{}, apperrors.ErrAuthMissing
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return models.Principal{}, apperrors.ErrTokenInvalid
	}
	return models.Principal{ID: id}, nil
}

type fakeUsers struct {
	getUser func(ctx context.Context, userID int64) (models.User, error)
}

func (f *fakeUsers) GetUser(ctx context.Context, userID int64) (models.User, error) {
	return f.getUser(ctx, userID)
}

type fakeBooks struct {
	create func(ctx context.Context, ownerID int64, p repository.CreateBookParams) (models.Book, error)
	list   func(ctx context.Context) ([]models.Book, error)
	get    func(ctx context.Context, bookID int64) (models.Book, error)
	update func(ctx context.Context, bookID, actorID int64, p repository.UpdateBookParams) (models.Book, error)
	delete func(ctx context.Context, bookID, actorID int64) error
}

func (f *fakeBooks) Create(ctx context.Context, ownerID int64, p repository.CreateBookParams) (models.Book, error) {
	return f.create(ctx, ownerID, p)
}

func (f *fakeBooks) List(ctx context.Context) ([]models.Book, error) { return f.list(ctx) }

func (f *fakeBooks) Get(ctx context.Context, bookID int64) (models.Book, error) {
	return f.get(ctx, bookID)
}

func (f *fakeBooks) Update(ctx context.Context, bookID, actorID int64, p repository.UpdateBookParams) (models.Book, error) {
	return f.update(ctx, bookID, actorID, p)
}

func (f *fakeBooks) Delete(ctx context.Context, bookID, actorID int64) error {
	return f.delete(ctx, bookID, actorID)
}

type fakeLoans struct {
	request      func(ctx context.Context, borrowerID int64, p loan.RequestParams) (models.Loan, error)
	listReceived func(ctx context.Context, ownerID int64) ([]models.Loan, error)
	listBorrowed func(ctx context.Context, borrowerID int64) ([]models.Loan, error)
	transition   func(ctx context.Context, to string, loanID, actorID int64) (models.Loan, error)
}

func (f *fakeLoans) Request(ctx context.Context, borrowerID int64, p loan.RequestParams) (models.Loan, error) {
	return f.request(ctx, borrowerID, p)
}

func (f *fakeLoans) ListReceived(ctx context.Context, ownerID int64) ([]models.Loan, error) {
	return f.listReceived(ctx, ownerID)
}

func (f *fakeLoans) ListBorrowed(ctx context.Context, borrowerID int64) ([]models.Loan, error) {
	return f.listBorrowed(ctx, borrowerID)
}

func (f *fakeLoans) Approve(ctx context.Context, loanID, actorID int64) (models.Loan, error) {
	return f.transition(ctx, models.LoanStatusApproved, loanID, actorID)
}

func (f *fakeLoans) Decline(ctx context.Context, loanID, actorID int64) (models.Loan, error) {
	return f.transition(ctx, models.LoanStatusCancelled, loanID, actorID)
}

func (f *fakeLoans) Complete(ctx context.Context, loanID, actorID int64) (models.Loan, error) {
	return f.transition(ctx, models.LoanStatusDone, loanID, actorID)
}

type testServices struct {
	auth  *fakeAuth
	users *fakeUsers
	books *fakeBooks
	loans *fakeLoans
}

// Start router with fake services; fakes are configured by the test before requests
func startRouter(t *testing.T) (*httptest.Server, *testServices) {
	t.Helper()

	s := &testServices{auth: &fakeAuth{}, users: &fakeUsers{}, books: &fakeBooks{}, loans: &fakeLoans{}}
	srv := httptest.NewServer(NewRouter(s.auth, s.users, s.books, s.loans, logger.NewNoOpLogger()))
	t.Cleanup(srv.Close)

	return srv, s
}

// Make request and return status code and body
func doRequest(t *testing.T, method, url, token, body string) (int, string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(t.Context(), method, url, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close() // nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(data)
}

func stringsReader(s string) io.Reader {
	return strings.NewReader(s)
}
