package core

import (
	"errors"
	"strings"
	"time"
)

const (
	ExpensePending ExpenseStatus = "pending"
	ExpenseSettled ExpenseStatus = "settled"

	PaymentPending   PaymentStatus = "pending"
	PaymentConfirmed PaymentStatus = "confirmed"
	PaymentCancelled PaymentStatus = "cancelled"
)

type (
	ExpenseStatus string
	PaymentStatus string

	Money struct {
		Cents int64
	}

	// Attendee is a trip member who can pay for or owe shares of expenses.
	Attendee struct {
		ID   string
		Name string
	}

	// Participant is one attendee's split entry on a single expense.
	// ShareCents, when set, is an explicit obligation in cents; nil means
	// the participant takes an even share of the remaining amount.
	Participant struct {
		AttendeeID string
		OptedIn    bool
		ShareCents *int64
	}

	Expense struct {
		ID           string
		PayerID      string
		Amount       Money
		Participants []Participant
		Status       ExpenseStatus
		Category     string
		Description  string
		Date         time.Time
	}

	// Payment is a recorded transfer between two attendees intended to
	// reduce an outstanding balance.
	Payment struct {
		ID     string
		FromID string
		ToID   string
		Amount Money
		Status PaymentStatus
		Date   time.Time
	}

	// Balance is an attendee's net position: positive means others owe
	// them money, negative means they owe others.
	Balance struct {
		AttendeeID   string
		Name         string
		BalanceCents int64
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrEmptyDescription  = errors.New("empty description")
	ErrEmptyCategory     = errors.New("empty category")
	ErrDuplicateAttendee = errors.New("attendee listed more than once")
	ErrShareSumMismatch  = errors.New("explicit shares do not sum to expense amount")
	ErrSharesExceedTotal = errors.New("explicit shares exceed expense amount")
	ErrSelfPayment       = errors.New("payment sender and receiver are the same attendee")
)

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (s ExpenseStatus) Valid() bool {
	return s == ExpensePending || s == ExpenseSettled
}

func (s PaymentStatus) Valid() bool {
	return s == PaymentPending || s == PaymentConfirmed || s == PaymentCancelled
}

func (e Expense) Validate() error {
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if !e.Status.Valid() {
		return errors.New("invalid expense status")
	}
	seen := make(map[string]struct{}, len(e.Participants))
	for _, p := range e.Participants {
		if _, dup := seen[p.AttendeeID]; dup {
			return ErrDuplicateAttendee
		}
		seen[p.AttendeeID] = struct{}{}
		if p.ShareCents != nil && *p.ShareCents < 0 {
			return ErrInvalidAmount
		}
	}
	return nil
}

func (p Payment) Validate() error {
	if err := p.Amount.Validate(); err != nil {
		return err
	}
	if p.FromID == p.ToID {
		return ErrSelfPayment
	}
	if !p.Status.Valid() {
		return errors.New("invalid payment status")
	}
	return nil
}

// ShareRef builds an explicit-share pointer for a Participant.
func ShareRef(cents int64) *int64 {
	return &cents
}
