package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/booklend/internal/apperrors"
	"github.com/nkiryanov/booklend/internal/models"
	"github.com/nkiryanov/booklend/internal/repository"
)

type LoanRepo struct {
	DB DBTX
}

const loanColumns = `id, book_id, borrower_id, owner_id, status, start_date, due_date, message, created_at, return_date`

const createLoan = `-- name: CreateLoan
INSERT INTO loans (book_id, borrower_id, owner_id, status, start_date, due_date, message)
VALUES ($1, $2, $3, 'pending', $4, $5, $6)
RETURNING ` + loanColumns

func (r *LoanRepo) CreateLoan(ctx context.Context, p repository.CreateLoanParams) (models.Loan, error) {
	rows, _ := r.DB.Query(ctx, createLoan, p.BookID, p.BorrowerID, p.OwnerID, p.StartDate, p.DueDate, p.Message)
	loan, err := pgx.CollectOneRow(rows, rowToLoan)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.ForeignKeyViolation:
				return loan, apperrors.ErrBookNotFound
			case pgerrcode.CheckViolation:
				return loan, apperrors.ErrSelfLoan
			}
		}

		return loan, fmt.Errorf("db error: %w", err)
	}

	return loan, nil
}

const getLoan = `-- name: GetLoan
SELECT ` + loanColumns + ` FROM loans
WHERE id = $1
`

func (r *LoanRepo) GetLoan(ctx context.Context, loanID int64) (models.Loan, error) {
	rows, _ := r.DB.Query(ctx, getLoan, loanID)
	loan, err := pgx.CollectOneRow(rows, rowToLoan)

	switch {
	case err == nil:
		return loan, nil
	case errors.Is(err, pgx.ErrNoRows):
		return loan, apperrors.ErrLoanNotFound
	default:
		return loan, fmt.Errorf("db error: %w", err)
	}
}

func (r *LoanRepo) ListLoans(ctx context.Context, opts repository.ListLoansOpts) ([]models.Loan, error) {
	where := goqu.Ex{}
	if opts.OwnerID != 0 {
		where["l.owner_id"] = opts.OwnerID
	}
	if opts.BorrowerID != 0 {
		where["l.borrower_id"] = opts.BorrowerID
	}

	query, args, err := dialect.From(goqu.T("loans").As("l")).
		Prepared(true).
		Select(
			"l.id", "l.book_id", "l.borrower_id", "l.owner_id", "l.status",
			"l.start_date", "l.due_date", "l.message", "l.created_at", "l.return_date",
			"b.title",
		).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("l.book_id")))).
		Where(where).
		Order(goqu.I("l.created_at").Desc(), goqu.I("l.id").Desc()).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, _ := r.DB.Query(ctx, query, args...)
	loans, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Loan, error) {
		var l models.Loan
		err := row.Scan(
			&l.ID, &l.BookID, &l.BorrowerID, &l.OwnerID, &l.Status,
			&l.StartDate, &l.DueDate, &l.Message, &l.CreatedAt, &l.ReturnDate,
			&l.BookTitle,
		)
		return l, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return loans, nil
}

func (r *LoanRepo) Transition(ctx context.Context, loanID int64, ownerID int64, tr models.LoanTransition, at time.Time) (int64, error) {
	record := goqu.Record{"status": tr.To}

	switch tr.To {
	case models.LoanStatusApproved:
		// Requested start date is kept, not reset to approval time.
		// Filled value never goes past due_date; LEAST skips NULL
		record["start_date"] = goqu.COALESCE(goqu.C("start_date"), goqu.Func("LEAST", at, goqu.C("due_date")))
	case models.LoanStatusDone:
		record["return_date"] = at
	}

	query, args, err := dialect.Update("loans").
		Prepared(true).
		Set(record).
		Where(goqu.Ex{"id": loanID, "owner_id": ownerID, "status": tr.From}).
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

func rowToLoan(row pgx.CollectableRow) (models.Loan, error) {
	var l models.Loan
	err := row.Scan(&l.ID, &l.BookID, &l.BorrowerID, &l.OwnerID, &l.Status, &l.StartDate, &l.DueDate, &l.Message, &l.CreatedAt, &l.ReturnDate)
	return l, err
}
