package models

import (
	"time"
)

const (
	LoanStatusPending   = "pending"
	LoanStatusApproved  = "approved"
	LoanStatusCancelled = "cancelled"
	LoanStatusDone      = "done"
)

type Loan struct {
	ID         int64
	BookID     int64
	BorrowerID int64
	OwnerID    int64 // snapshot of the book owner when loan was requested, never changes
	Status     string
	StartDate  *time.Time
	DueDate    *time.Time
	Message    string
	CreatedAt  time.Time
	ReturnDate *time.Time // set only on transition to 'done'

	// Read-only, filled by listing queries
	BookTitle string
}

// Allowed loan status transition.
// Actor must be the loan owner for every transition.
type LoanTransition struct {
	From string
	To   string
}

var (
	LoanApprove  = LoanTransition{From: LoanStatusPending, To: LoanStatusApproved}
	LoanDecline  = LoanTransition{From: LoanStatusPending, To: LoanStatusCancelled}
	LoanComplete = LoanTransition{From: LoanStatusApproved, To: LoanStatusDone}
)
