// Package memory provides an in-memory implementation of the store
// ports, used by tests and the default DATA_BACKEND=memory mode.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"tripledger/internal/core"
	"tripledger/internal/store"
)

type Store struct {
	mu        sync.Mutex
	trips     map[string]store.Trip
	attendees map[string][]core.Attendee // tripID -> roster in join order
	expenses  map[string][]store.ExpenseRecord
	deleted   map[string]struct{} // expenseID set
	payments  map[string][]store.PaymentRecord
	sessions  map[string]store.Session
	snapshots map[string]store.BalanceSnapshot
	now       func() time.Time
}

func New() *Store {
	return &Store{
		trips:     make(map[string]store.Trip),
		attendees: make(map[string][]core.Attendee),
		expenses:  make(map[string][]store.ExpenseRecord),
		deleted:   make(map[string]struct{}),
		payments:  make(map[string][]store.PaymentRecord),
		sessions:  make(map[string]store.Session),
		snapshots: make(map[string]store.BalanceSnapshot),
		now:       time.Now,
	}
}

func (s *Store) CreateTrip(_ context.Context, t store.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trips[t.ID] = t
	return nil
}

func (s *Store) GetTrip(_ context.Context, tripID string) (store.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trips[tripID]
	if !ok {
		return store.Trip{}, store.ErrNotFound
	}
	return t, nil
}

func (s *Store) ListTripIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.trips))
	for id := range s.trips {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) AddAttendee(_ context.Context, tripID string, a core.Attendee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trips[tripID]; !ok {
		return store.ErrNotFound
	}
	s.attendees[tripID] = append(s.attendees[tripID], a)
	return nil
}

func (s *Store) GetAttendeesByTrip(_ context.Context, tripID string) ([]core.Attendee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trips[tripID]; !ok {
		return nil, store.ErrNotFound
	}
	return append([]core.Attendee(nil), s.attendees[tripID]...), nil
}

func (s *Store) IsMember(_ context.Context, tripID, attendeeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.attendees[tripID] {
		if a.ID == attendeeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CreateExpense(_ context.Context, rec store.ExpenseRecord) error {
	if err := rec.Expense.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trips[rec.TripID]; !ok {
		return store.ErrNotFound
	}
	s.expenses[rec.TripID] = append(s.expenses[rec.TripID], rec)
	return nil
}

func (s *Store) GetExpense(_ context.Context, tripID, expenseID string) (store.ExpenseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.expenses[tripID] {
		if rec.Expense.ID == expenseID {
			if _, gone := s.deleted[expenseID]; gone {
				break
			}
			return rec, nil
		}
	}
	return store.ExpenseRecord{}, store.ErrNotFound
}

func (s *Store) GetExpensesByTrip(_ context.Context, tripID string, page, limit int) (store.ExpensePage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	live := s.liveExpenses(tripID)
	// Newest first.
	sort.SliceStable(live, func(i, j int) bool {
		return live[i].Date.After(live[j].Date)
	})

	result := store.ExpensePage{Total: len(live), Page: page, Limit: limit}
	start := (page - 1) * limit
	if start >= len(live) {
		result.Data = []store.ExpenseRecord{}
		return result, nil
	}
	end := start + limit
	if end > len(live) {
		end = len(live)
	}
	result.Data = append([]store.ExpenseRecord(nil), live[start:end]...)
	return result, nil
}

func (s *Store) ListExpenses(_ context.Context, tripID string) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	live := s.liveExpenses(tripID)
	out := make([]core.Expense, len(live))
	for i, rec := range live {
		out[i] = rec.Expense
	}
	return out, nil
}

func (s *Store) UpdateExpense(_ context.Context, rec store.ExpenseRecord) error {
	if err := rec.Expense.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := s.expenses[rec.TripID]
	for i := range recs {
		if recs[i].Expense.ID == rec.Expense.ID {
			if _, gone := s.deleted[rec.Expense.ID]; gone {
				break
			}
			recs[i] = rec
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) SoftDeleteExpense(_ context.Context, tripID, expenseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.expenses[tripID] {
		if rec.Expense.ID == expenseID {
			s.deleted[expenseID] = struct{}{}
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) GetTripTotalExpenses(_ context.Context, tripID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, rec := range s.liveExpenses(tripID) {
		total += rec.Amount.Cents
	}
	return total, nil
}

func (s *Store) GetExpenseSummaryByCategory(_ context.Context, tripID string) ([]store.CategorySummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byCat := make(map[string]*store.CategorySummary)
	for _, rec := range s.liveExpenses(tripID) {
		cs, ok := byCat[rec.Category]
		if !ok {
			cs = &store.CategorySummary{Category: rec.Category}
			byCat[rec.Category] = cs
		}
		cs.TotalCents += rec.Amount.Cents
		cs.Count++
	}
	out := make([]store.CategorySummary, 0, len(byCat))
	for _, cs := range byCat {
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Category < out[j].Category
	})
	return out, nil
}

func (s *Store) CreatePayment(_ context.Context, rec store.PaymentRecord) error {
	if err := rec.Payment.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trips[rec.TripID]; !ok {
		return store.ErrNotFound
	}
	s.payments[rec.TripID] = append(s.payments[rec.TripID], rec)
	return nil
}

func (s *Store) GetPayment(_ context.Context, tripID, paymentID string) (store.PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.payments[tripID] {
		if rec.Payment.ID == paymentID {
			return rec, nil
		}
	}
	return store.PaymentRecord{}, store.ErrNotFound
}

func (s *Store) GetPaymentsByTrip(_ context.Context, tripID string) ([]core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := s.payments[tripID]
	out := make([]core.Payment, len(recs))
	for i, rec := range recs {
		out[i] = rec.Payment
	}
	return out, nil
}

func (s *Store) SetPaymentStatus(_ context.Context, tripID, paymentID string, status core.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := s.payments[tripID]
	for i := range recs {
		if recs[i].Payment.ID == paymentID {
			recs[i].Payment.Status = status
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) AttendeeForToken(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return "", store.ErrNotFound
	}
	if !sess.ExpiresAt.IsZero() && s.now().After(sess.ExpiresAt) {
		return "", store.ErrTokenExpired
	}
	return sess.AttendeeID, nil
}

func (s *Store) CreateSession(_ context.Context, sess store.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Token] = sess
	return nil
}

func (s *Store) SaveBalanceSnapshot(_ context.Context, snap store.BalanceSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap.Balances = append([]core.Balance(nil), snap.Balances...)
	s.snapshots[snap.TripID] = snap
	return nil
}

func (s *Store) GetBalanceSnapshot(_ context.Context, tripID string) (store.BalanceSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snapshots[tripID]
	if !ok {
		return store.BalanceSnapshot{}, store.ErrNotFound
	}
	return snap, nil
}

// liveExpenses returns non-deleted expense records; caller holds the lock.
func (s *Store) liveExpenses(tripID string) []store.ExpenseRecord {
	var live []store.ExpenseRecord
	for _, rec := range s.expenses[tripID] {
		if _, gone := s.deleted[rec.Expense.ID]; gone {
			continue
		}
		live = append(live, rec)
	}
	return live
}
