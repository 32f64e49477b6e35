package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tripledger/internal/core"
	"tripledger/internal/log"
	"tripledger/internal/store"
)

var (
	// ErrForbidden is returned when the acting attendee is not allowed
	// to perform the operation (wrong creator, wrong payment side).
	ErrForbidden = errors.New("attendee not allowed to perform this operation")
	// ErrInvalidTransition is returned when an expense or payment is not
	// in a state that permits the requested change.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrEmptyName is returned for blank trip or attendee names.
	ErrEmptyName = errors.New("name must not be empty")
)

// RecomputePublisher publishes balance recompute requests. *amqp.Client
// satisfies it; a nil publisher disables async recompute.
type RecomputePublisher interface {
	PublishBalanceRecompute(ctx context.Context, tripID string) error
}

// Store bundles the persistence ports the service needs.
type Store interface {
	store.TripStore
	store.AttendeeStore
	store.ExpenseStore
	store.PaymentStore
	store.SessionStore
}

// TripService orchestrates trip operations across the store and AMQP
type TripService struct {
	store     Store
	publisher RecomputePublisher
	now       func() time.Time
}

func NewTripService(st Store, publisher RecomputePublisher) *TripService {
	return &TripService{
		store:     st,
		publisher: publisher,
		now:       time.Now,
	}
}

// CreateTrip creates a trip with a fresh ID.
func (s *TripService) CreateTrip(ctx context.Context, name string) (store.Trip, error) {
	if name == "" {
		return store.Trip{}, ErrEmptyName
	}

	t := store.Trip{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateTrip(ctx, t); err != nil {
		return store.Trip{}, fmt.Errorf("create trip: %w", err)
	}
	return t, nil
}

func (s *TripService) GetTrip(ctx context.Context, tripID string) (store.Trip, error) {
	return s.store.GetTrip(ctx, tripID)
}

// AddAttendee adds an attendee to the trip roster and opens a session
// for them. The returned token is the attendee's bearer credential.
func (s *TripService) AddAttendee(ctx context.Context, tripID, name string) (core.Attendee, string, error) {
	if name == "" {
		return core.Attendee{}, "", ErrEmptyName
	}

	a := core.Attendee{ID: uuid.NewString(), Name: name}
	if err := s.store.AddAttendee(ctx, tripID, a); err != nil {
		return core.Attendee{}, "", fmt.Errorf("add attendee: %w", err)
	}

	token := uuid.NewString()
	if err := s.store.CreateSession(ctx, store.Session{Token: token, AttendeeID: a.ID}); err != nil {
		return core.Attendee{}, "", fmt.Errorf("create session: %w", err)
	}

	slog.InfoContext(ctx, "Attendee joined trip",
		log.FieldComponent, log.ComponentTrip,
		log.FieldTripID, tripID,
		log.FieldAttendeeID, a.ID)
	return a, token, nil
}

func (s *TripService) ListAttendees(ctx context.Context, tripID string) ([]core.Attendee, error) {
	return s.store.GetAttendeesByTrip(ctx, tripID)
}

// CreateExpense saves an expense and schedules a balance recompute.
func (s *TripService) CreateExpense(ctx context.Context, tripID, createdBy string, e core.Expense) (store.ExpenseRecord, error) {
	e.ID = uuid.NewString()
	if e.Status == "" {
		e.Status = core.ExpensePending
	}
	if e.Date.IsZero() {
		e.Date = s.now()
	}
	if err := e.Validate(); err != nil {
		return store.ExpenseRecord{}, err
	}

	now := s.now()
	rec := store.ExpenseRecord{
		Expense:   e,
		TripID:    tripID,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateExpense(ctx, rec); err != nil {
		return store.ExpenseRecord{}, fmt.Errorf("save expense: %w", err)
	}

	s.publishRecompute(ctx, tripID)
	return rec, nil
}

func (s *TripService) GetExpense(ctx context.Context, tripID, expenseID string) (store.ExpenseRecord, error) {
	return s.store.GetExpense(ctx, tripID, expenseID)
}

func (s *TripService) ListExpenses(ctx context.Context, tripID string, page, limit int) (store.ExpensePage, error) {
	return s.store.GetExpensesByTrip(ctx, tripID, page, limit)
}

// UpdateExpense replaces an expense's mutable fields. Only the creator
// may change it, and only while the expense is still pending.
func (s *TripService) UpdateExpense(ctx context.Context, tripID, actorID string, e core.Expense) (store.ExpenseRecord, error) {
	existing, err := s.store.GetExpense(ctx, tripID, e.ID)
	if err != nil {
		return store.ExpenseRecord{}, err
	}
	if existing.CreatedBy != actorID {
		return store.ExpenseRecord{}, ErrForbidden
	}
	if existing.Expense.Status != core.ExpensePending {
		return store.ExpenseRecord{}, ErrInvalidTransition
	}

	if e.Status == "" {
		e.Status = existing.Expense.Status
	}
	if e.Date.IsZero() {
		e.Date = existing.Expense.Date
	}
	if err := e.Validate(); err != nil {
		return store.ExpenseRecord{}, err
	}

	rec := store.ExpenseRecord{
		Expense:   e,
		TripID:    tripID,
		CreatedBy: existing.CreatedBy,
		CreatedAt: existing.CreatedAt,
		UpdatedAt: s.now(),
	}
	if err := s.store.UpdateExpense(ctx, rec); err != nil {
		return store.ExpenseRecord{}, fmt.Errorf("update expense: %w", err)
	}

	s.publishRecompute(ctx, tripID)
	return rec, nil
}

// DeleteExpense soft-deletes an expense under the same creator-while-pending rule.
func (s *TripService) DeleteExpense(ctx context.Context, tripID, actorID, expenseID string) error {
	existing, err := s.store.GetExpense(ctx, tripID, expenseID)
	if err != nil {
		return err
	}
	if existing.CreatedBy != actorID {
		return ErrForbidden
	}
	if existing.Expense.Status != core.ExpensePending {
		return ErrInvalidTransition
	}

	if err := s.store.SoftDeleteExpense(ctx, tripID, expenseID); err != nil {
		return fmt.Errorf("soft delete expense: %w", err)
	}

	s.publishRecompute(ctx, tripID)
	return nil
}

// CreatePayment records a pending payment from the acting attendee.
func (s *TripService) CreatePayment(ctx context.Context, tripID, actorID string, p core.Payment) (store.PaymentRecord, error) {
	p.ID = uuid.NewString()
	p.FromID = actorID
	if p.Status == "" {
		p.Status = core.PaymentPending
	}
	if p.Date.IsZero() {
		p.Date = s.now()
	}
	if err := p.Validate(); err != nil {
		return store.PaymentRecord{}, err
	}

	rec := store.PaymentRecord{
		Payment:   p,
		TripID:    tripID,
		CreatedAt: s.now(),
	}
	if err := s.store.CreatePayment(ctx, rec); err != nil {
		return store.PaymentRecord{}, fmt.Errorf("save payment: %w", err)
	}
	return rec, nil
}

func (s *TripService) ListPayments(ctx context.Context, tripID string) ([]core.Payment, error) {
	return s.store.GetPaymentsByTrip(ctx, tripID)
}

// ConfirmPayment marks a pending payment confirmed. Only the receiver may confirm.
func (s *TripService) ConfirmPayment(ctx context.Context, tripID, actorID, paymentID string) error {
	return s.transitionPayment(ctx, tripID, actorID, paymentID, core.PaymentConfirmed)
}

// CancelPayment marks a pending payment cancelled. Only the sender may cancel.
func (s *TripService) CancelPayment(ctx context.Context, tripID, actorID, paymentID string) error {
	return s.transitionPayment(ctx, tripID, actorID, paymentID, core.PaymentCancelled)
}

func (s *TripService) transitionPayment(ctx context.Context, tripID, actorID, paymentID string, target core.PaymentStatus) error {
	rec, err := s.store.GetPayment(ctx, tripID, paymentID)
	if err != nil {
		return err
	}
	if rec.Payment.Status != core.PaymentPending {
		return ErrInvalidTransition
	}

	switch target {
	case core.PaymentConfirmed:
		if rec.Payment.ToID != actorID {
			return ErrForbidden
		}
	case core.PaymentCancelled:
		if rec.Payment.FromID != actorID {
			return ErrForbidden
		}
	}

	if err := s.store.SetPaymentStatus(ctx, tripID, paymentID, target); err != nil {
		return fmt.Errorf("set payment status: %w", err)
	}

	slog.InfoContext(ctx, "Payment status changed",
		log.FieldComponent, log.ComponentTrip,
		log.FieldTripID, tripID,
		log.FieldPaymentID, paymentID,
		"status", string(target))

	s.publishRecompute(ctx, tripID)
	return nil
}

// Balances computes the current balance sheet for a trip.
func (s *TripService) Balances(ctx context.Context, tripID string) ([]core.Balance, error) {
	roster, expenses, payments, err := s.loadLedger(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return core.ComputeBalances(roster, expenses, payments)
}

// Summary aggregates a trip's spending by category, payer and date.
func (s *TripService) Summary(ctx context.Context, tripID string) (core.Summary, error) {
	roster, err := s.store.GetAttendeesByTrip(ctx, tripID)
	if err != nil {
		return core.Summary{}, err
	}
	expenses, err := s.store.ListExpenses(ctx, tripID)
	if err != nil {
		return core.Summary{}, fmt.Errorf("list expenses: %w", err)
	}
	return core.Summarize(expenses, roster), nil
}

// Settlements suggests transfers that settle the trip's balances.
func (s *TripService) Settlements(ctx context.Context, tripID string) ([]core.Transfer, error) {
	balances, err := s.Balances(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return core.SuggestSettlements(balances), nil
}

func (s *TripService) loadLedger(ctx context.Context, tripID string) ([]core.Attendee, []core.Expense, []core.Payment, error) {
	roster, err := s.store.GetAttendeesByTrip(ctx, tripID)
	if err != nil {
		return nil, nil, nil, err
	}
	expenses, err := s.store.ListExpenses(ctx, tripID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("list expenses: %w", err)
	}
	payments, err := s.store.GetPaymentsByTrip(ctx, tripID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("list payments: %w", err)
	}
	return roster, expenses, payments, nil
}

func (s *TripService) publishRecompute(ctx context.Context, tripID string) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping recompute message")
		return
	}

	// Publish async (non-blocking). The request already succeeded locally.
	if err := s.publisher.PublishBalanceRecompute(ctx, tripID); err != nil {
		fields := log.NewFields().
			WithComponent(log.ComponentTrip).
			WithOperation(log.OpPublish).
			WithTrip(tripID).
			WithError(err)
		slog.ErrorContext(ctx, "Failed to publish recompute message", fields.ToSlice()...)
	}
}
