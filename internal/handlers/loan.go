package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/nkiryanov/booklend/internal/apperrors"
	"github.com/nkiryanov/booklend/internal/handlers/render"
	"github.com/nkiryanov/booklend/internal/logger"
	"github.com/nkiryanov/booklend/internal/models"
	"github.com/nkiryanov/booklend/internal/service/loan"
)

type loanResponse struct {
	ID         int64      `json:"id"`
	BookID     int64      `json:"book_id"`
	BookTitle  string     `json:"book_title,omitempty"`
	BorrowerID int64      `json:"borrower_id"`
	OwnerID    int64      `json:"owner_id"`
	Status     string     `json:"status"`
	StartDate  *string    `json:"start_date"`
	DueDate    *string    `json:"due_date"`
	Message    string     `json:"message"`
	CreatedAt  time.Time  `json:"created_at"`
	ReturnDate *time.Time `json:"return_date"`
}

func newLoanResponse(l models.Loan) loanResponse {
	return loanResponse{
		ID:         l.ID,
		BookID:     l.BookID,
		BookTitle:  l.BookTitle,
		BorrowerID: l.BorrowerID,
		OwnerID:    l.OwnerID,
		Status:     l.Status,
		StartDate:  formatDate(l.StartDate),
		DueDate:    formatDate(l.DueDate),
		Message:    l.Message,
		CreatedAt:  l.CreatedAt,
		ReturnDate: l.ReturnDate,
	}
}

func renderLoanError(w http.ResponseWriter, l logger.Logger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrSelfLoan):
		render.ServiceError(w, "You can't borrow your own book", http.StatusBadRequest)
	case errors.Is(err, apperrors.ErrLoanDatesInvalid):
		render.ServiceError(w, "Due date is before start date", http.StatusUnprocessableEntity)
	case errors.Is(err, apperrors.ErrBookNotFound):
		render.ServiceError(w, "Book not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrLoanNotFound):
		render.ServiceError(w, "Loan not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrTransitionRejected):
		render.ServiceError(w, "Loan transition rejected", http.StatusConflict)
	default:
		l.Error("loan operation failed", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}

func handleRequestLoan(ls loanService, l logger.Logger) http.Handler {
	type request struct {
		BookID    int64   `json:"book_id" validate:"required,gt=0"`
		StartDate *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
		DueDate   *string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
		Message   string  `json:"message" validate:"max=2000"`
	}
	type response struct {
		LoanID int64  `json:"loan_id"`
		Status string `json:"status"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		created, err := ls.Request(r.Context(), p.ID, loan.RequestParams{
			BookID:    data.BookID,
			StartDate: parseDate(data.StartDate),
			DueDate:   parseDate(data.DueDate),
			Message:   data.Message,
		})
		if err != nil {
			renderLoanError(w, l, err)
			return
		}

		render.JSONWithStatus(w, response{LoanID: created.ID, Status: created.Status}, http.StatusCreated)
	})
}

func renderLoans(w http.ResponseWriter, loans []models.Loan) {
	res := make([]loanResponse, 0, len(loans))
	for _, item := range loans {
		res = append(res, newLoanResponse(item))
	}
	render.JSON(w, res)
}

func handleListReceivedLoans(ls loanService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		loans, err := ls.ListReceived(r.Context(), p.ID)
		if err != nil {
			renderLoanError(w, l, err)
			return
		}

		renderLoans(w, loans)
	})
}

func handleListBorrowedLoans(ls loanService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		loans, err := ls.ListBorrowed(r.Context(), p.ID)
		if err != nil {
			renderLoanError(w, l, err)
			return
		}

		renderLoans(w, loans)
	})
}

// Approve, decline and complete differ only by service method
func handleLoanTransition(transition func(ctx context.Context, loanID int64, actorID int64) (models.Loan, error), l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		updated, err := transition(r.Context(), id, p.ID)
		if err != nil {
			renderLoanError(w, l, err)
			return
		}

		render.JSON(w, newLoanResponse(updated))
	})
}
