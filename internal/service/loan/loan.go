package loan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nkiryanov/booklend/internal/apperrors"
	"github.com/nkiryanov/booklend/internal/models"
	"github.com/nkiryanov/booklend/internal/repository"
)

type RequestParams struct {
	BookID    int64
	StartDate *time.Time
	DueDate   *time.Time
	Message   string
}

// Loan lifecycle: borrower requests a book, owner approves, declines or completes the loan
type LoanService struct {
	storage repository.Storage

	// Clock, replaced in tests
	now func() time.Time
}

func NewService(storage repository.Storage) *LoanService {
	return &LoanService{
		storage: storage,
		now:     time.Now,
	}
}

// Create pending loan request for the book on behalf of borrower
// Book owner is snapshotted into the loan and never re-read
func (s *LoanService) Request(ctx context.Context, borrowerID int64, p RequestParams) (models.Loan, error) {
	if p.StartDate != nil && p.DueDate != nil && p.DueDate.Before(*p.StartDate) {
		return models.Loan{}, apperrors.ErrLoanDatesInvalid
	}
	// Without start date the loan starts on approval, so due date can't be in the past
	if p.StartDate == nil && p.DueDate != nil && p.DueDate.Before(s.today()) {
		return models.Loan{}, apperrors.ErrLoanDatesInvalid
	}

	var loan models.Loan
	err := s.storage.InTx(ctx, func(storage repository.Storage) error {
		ownerID, err := storage.Book().OwnerOf(ctx, p.BookID)
		if err != nil {
			return err
		}

		if ownerID == borrowerID {
			return apperrors.ErrSelfLoan
		}

		loan, err = storage.Loan().CreateLoan(ctx, repository.CreateLoanParams{
			BookID:     p.BookID,
			BorrowerID: borrowerID,
			OwnerID:    ownerID,
			StartDate:  p.StartDate,
			DueDate:    p.DueDate,
			Message:    p.Message,
		})
		return err
	})
	if err != nil {
		return models.Loan{}, fmt.Errorf("can't request loan. Err: %w", err)
	}

	return loan, nil
}

// Loans of books owned by ownerID, newest first
func (s *LoanService) ListReceived(ctx context.Context, ownerID int64) ([]models.Loan, error) {
	return s.storage.Loan().ListLoans(ctx, repository.ListLoansOpts{OwnerID: ownerID})
}

// Loans requested by borrowerID, newest first
func (s *LoanService) ListBorrowed(ctx context.Context, borrowerID int64) ([]models.Loan, error) {
	return s.storage.Loan().ListLoans(ctx, repository.ListLoansOpts{BorrowerID: borrowerID})
}

func (s *LoanService) Approve(ctx context.Context, loanID int64, actorID int64) (models.Loan, error) {
	return s.transition(ctx, loanID, actorID, models.LoanApprove)
}

func (s *LoanService) Decline(ctx context.Context, loanID int64, actorID int64) (models.Loan, error) {
	return s.transition(ctx, loanID, actorID, models.LoanDecline)
}

func (s *LoanService) Complete(ctx context.Context, loanID int64, actorID int64) (models.Loan, error) {
	return s.transition(ctx, loanID, actorID, models.LoanComplete)
}

// Single conditional update; affected rows decide the outcome.
// Zero rows: apperrors.ErrLoanNotFound if loan missing, apperrors.ErrTransitionRejected otherwise.
// The two rejection causes (other actor, status moved on) are not told apart.
func (s *LoanService) transition(ctx context.Context, loanID int64, actorID int64, tr models.LoanTransition) (models.Loan, error) {
	loans := s.storage.Loan()

	affected, err := loans.Transition(ctx, loanID, actorID, tr, s.now())
	if err != nil {
		return models.Loan{}, fmt.Errorf("can't move loan to %s. Err: %w", tr.To, err)
	}

	loan, err := loans.GetLoan(ctx, loanID)
	if affected == 0 {
		switch {
		case errors.Is(err, apperrors.ErrLoanNotFound):
			return models.Loan{}, apperrors.ErrLoanNotFound
		case err != nil:
			return models.Loan{}, fmt.Errorf("can't check loan existence. Err: %w", err)
		default:
			return models.Loan{}, apperrors.ErrTransitionRejected
		}
	}
	if err != nil {
		return models.Loan{}, fmt.Errorf("can't read loan after transition. Err: %w", err)
	}

	return loan, nil
}

func (s *LoanService) today() time.Time {
	y, m, d := s.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
