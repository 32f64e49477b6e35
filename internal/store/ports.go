// Package store defines the ports between the HTTP/service layer and the
// data backends. The ledger itself never touches these: handlers fetch a
// consistent snapshot through them, then hand plain core values to the
// pure computations.
package store

import (
	"context"
	"errors"
	"time"

	"tripledger/internal/core"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrTokenExpired = errors.New("session token expired")
)

// Trip is a planned trip whose attendees share expenses.
type Trip struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// ExpenseRecord is an expense plus the bookkeeping the stores track on
// top of the core value: who logged it and when it changed.
type ExpenseRecord struct {
	core.Expense
	TripID    string
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ExpensePage is one page of a trip's expense list.
type ExpensePage struct {
	Data  []ExpenseRecord
	Total int
	Page  int
	Limit int
}

// CategorySummary is a per-category aggregate computed by the store.
type CategorySummary struct {
	Category   string
	TotalCents int64
	Count      int
}

// PaymentRecord is a payment with its trip binding.
type PaymentRecord struct {
	core.Payment
	TripID    string
	CreatedAt time.Time
}

// Session binds a bearer token to an attendee.
type Session struct {
	Token      string
	AttendeeID string
	ExpiresAt  time.Time
}

// BalanceSnapshot is a persisted result of a full ledger run, written by
// the recompute worker for dashboard reads.
type BalanceSnapshot struct {
	TripID     string
	Balances   []core.Balance
	ComputedAt time.Time
}

// Ports for the data backends.
type (
	TripStore interface {
		CreateTrip(ctx context.Context, t Trip) error
		GetTrip(ctx context.Context, tripID string) (Trip, error)
		ListTripIDs(ctx context.Context) ([]string, error)
	}

	AttendeeStore interface {
		AddAttendee(ctx context.Context, tripID string, a core.Attendee) error
		// GetAttendeesByTrip returns the active roster in join order.
		GetAttendeesByTrip(ctx context.Context, tripID string) ([]core.Attendee, error)
		IsMember(ctx context.Context, tripID, attendeeID string) (bool, error)
	}

	ExpenseStore interface {
		CreateExpense(ctx context.Context, rec ExpenseRecord) error
		GetExpense(ctx context.Context, tripID, expenseID string) (ExpenseRecord, error)
		// GetExpensesByTrip returns one page of non-deleted expenses,
		// newest first.
		GetExpensesByTrip(ctx context.Context, tripID string, page, limit int) (ExpensePage, error)
		// ListExpenses returns every non-deleted expense for the ledger.
		ListExpenses(ctx context.Context, tripID string) ([]core.Expense, error)
		UpdateExpense(ctx context.Context, rec ExpenseRecord) error
		// SoftDeleteExpense excludes the expense from all computations
		// without removing the row.
		SoftDeleteExpense(ctx context.Context, tripID, expenseID string) error
		GetTripTotalExpenses(ctx context.Context, tripID string) (int64, error)
		GetExpenseSummaryByCategory(ctx context.Context, tripID string) ([]CategorySummary, error)
	}

	PaymentStore interface {
		CreatePayment(ctx context.Context, rec PaymentRecord) error
		GetPayment(ctx context.Context, tripID, paymentID string) (PaymentRecord, error)
		GetPaymentsByTrip(ctx context.Context, tripID string) ([]core.Payment, error)
		SetPaymentStatus(ctx context.Context, tripID, paymentID string, status core.PaymentStatus) error
	}

	SessionStore interface {
		// AttendeeForToken resolves a bearer token to an attendee ID,
		// returning ErrNotFound for unknown and ErrTokenExpired for
		// expired tokens.
		AttendeeForToken(ctx context.Context, token string) (string, error)
		CreateSession(ctx context.Context, s Session) error
	}

	SnapshotStore interface {
		SaveBalanceSnapshot(ctx context.Context, snap BalanceSnapshot) error
		GetBalanceSnapshot(ctx context.Context, tripID string) (BalanceSnapshot, error)
	}
)
