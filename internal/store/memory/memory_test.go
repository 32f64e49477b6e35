package memory

import (
	"context"
	"testing"
	"time"

	"tripledger/internal/core"
	"tripledger/internal/store"
)

func seedTrip(t *testing.T, s *Store) string {
	t.Helper()
	ctx := context.Background()
	if err := s.CreateTrip(ctx, store.Trip{ID: "t1", Name: "Lisbon"}); err != nil {
		t.Fatalf("create trip: %v", err)
	}
	for _, a := range []core.Attendee{{ID: "a", Name: "Ana"}, {ID: "b", Name: "Ben"}} {
		if err := s.AddAttendee(ctx, "t1", a); err != nil {
			t.Fatalf("add attendee: %v", err)
		}
	}
	return "t1"
}

func expense(id string, cents int64, date time.Time) store.ExpenseRecord {
	return store.ExpenseRecord{
		TripID:    "t1",
		CreatedBy: "a",
		Expense: core.Expense{
			ID:      id,
			PayerID: "a",
			Amount:  core.Money{Cents: cents},
			Participants: []core.Participant{
				{AttendeeID: "a", OptedIn: true},
				{AttendeeID: "b", OptedIn: true},
			},
			Status:      core.ExpensePending,
			Category:    "food",
			Description: "dinner",
			Date:        date,
		},
	}
}

func TestTripAndMembership(t *testing.T) {
	s := New()
	ctx := context.Background()
	tripID := seedTrip(t, s)

	if _, err := s.GetTrip(ctx, "nope"); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	got, err := s.GetTrip(ctx, tripID)
	if err != nil || got.Name != "Lisbon" {
		t.Fatalf("got %+v, err=%v", got, err)
	}

	member, err := s.IsMember(ctx, tripID, "a")
	if err != nil || !member {
		t.Fatalf("expected a to be a member, err=%v", err)
	}
	member, err = s.IsMember(ctx, tripID, "zz")
	if err != nil || member {
		t.Fatalf("expected zz not to be a member, err=%v", err)
	}

	roster, err := s.GetAttendeesByTrip(ctx, tripID)
	if err != nil || len(roster) != 2 || roster[0].ID != "a" {
		t.Fatalf("roster=%+v err=%v", roster, err)
	}
}

func TestExpensePaginationAndSoftDelete(t *testing.T) {
	s := New()
	ctx := context.Background()
	tripID := seedTrip(t, s)

	base := time.Date(2026, 7, 10, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"e1", "e2", "e3"} {
		if err := s.CreateExpense(ctx, expense(id, int64(1000*(i+1)), base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	page, err := s.GetExpensesByTrip(ctx, tripID, 1, 2)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if page.Total != 3 || len(page.Data) != 2 {
		t.Fatalf("page=%+v", page)
	}
	// Newest first.
	if page.Data[0].Expense.ID != "e3" || page.Data[1].Expense.ID != "e2" {
		t.Fatalf("order wrong: %s, %s", page.Data[0].Expense.ID, page.Data[1].Expense.ID)
	}

	if err := s.SoftDeleteExpense(ctx, tripID, "e2"); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if _, err := s.GetExpense(ctx, tripID, "e2"); err != store.ErrNotFound {
		t.Fatalf("deleted expense still visible, err=%v", err)
	}

	list, err := s.ListExpenses(ctx, tripID)
	if err != nil || len(list) != 2 {
		t.Fatalf("list=%+v err=%v", list, err)
	}
	total, err := s.GetTripTotalExpenses(ctx, tripID)
	if err != nil || total != 4000 {
		t.Fatalf("total=%d err=%v", total, err)
	}
}

func TestExpenseSummaryByCategory(t *testing.T) {
	s := New()
	ctx := context.Background()
	tripID := seedTrip(t, s)

	day := time.Date(2026, 7, 10, 12, 0, 0, 0, time.UTC)
	e1 := expense("e1", 1500, day)
	e2 := expense("e2", 500, day)
	e3 := expense("e3", 9000, day)
	e3.Category = "activities"
	for _, e := range []store.ExpenseRecord{e1, e2, e3} {
		if err := s.CreateExpense(ctx, e); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	sums, err := s.GetExpenseSummaryByCategory(ctx, tripID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(sums) != 2 {
		t.Fatalf("sums=%+v", sums)
	}
	// Sorted by category name.
	if sums[0].Category != "activities" || sums[0].TotalCents != 9000 || sums[0].Count != 1 {
		t.Fatalf("sums[0]=%+v", sums[0])
	}
	if sums[1].Category != "food" || sums[1].TotalCents != 2000 || sums[1].Count != 2 {
		t.Fatalf("sums[1]=%+v", sums[1])
	}
}

func TestPaymentLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()
	tripID := seedTrip(t, s)

	rec := store.PaymentRecord{
		TripID: tripID,
		Payment: core.Payment{
			ID: "p1", FromID: "b", ToID: "a",
			Amount: core.Money{Cents: 3000},
			Status: core.PaymentPending,
		},
	}
	if err := s.CreatePayment(ctx, rec); err != nil {
		t.Fatalf("create payment: %v", err)
	}
	if err := s.SetPaymentStatus(ctx, tripID, "p1", core.PaymentConfirmed); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	got, err := s.GetPayment(ctx, tripID, "p1")
	if err != nil || got.Payment.Status != core.PaymentConfirmed {
		t.Fatalf("got=%+v err=%v", got, err)
	}
	if err := s.SetPaymentStatus(ctx, tripID, "missing", core.PaymentCancelled); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSessions(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.CreateSession(ctx, store.Session{Token: "tok", AttendeeID: "a"}); err != nil {
		t.Fatalf("create session: %v", err)
	}
	id, err := s.AttendeeForToken(ctx, "tok")
	if err != nil || id != "a" {
		t.Fatalf("id=%q err=%v", id, err)
	}
	if _, err := s.AttendeeForToken(ctx, "bogus"); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	expired := store.Session{Token: "old", AttendeeID: "b", ExpiresAt: time.Now().Add(-time.Hour)}
	if err := s.CreateSession(ctx, expired); err != nil {
		t.Fatalf("create expired session: %v", err)
	}
	if _, err := s.AttendeeForToken(ctx, "old"); err != store.ErrTokenExpired {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestBalanceSnapshots(t *testing.T) {
	s := New()
	ctx := context.Background()
	tripID := seedTrip(t, s)

	snap := store.BalanceSnapshot{
		TripID:     tripID,
		Balances:   []core.Balance{{AttendeeID: "a", Name: "Ana", BalanceCents: 500}},
		ComputedAt: time.Now(),
	}
	if err := s.SaveBalanceSnapshot(ctx, snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.GetBalanceSnapshot(ctx, tripID)
	if err != nil || len(got.Balances) != 1 || got.Balances[0].BalanceCents != 500 {
		t.Fatalf("got=%+v err=%v", got, err)
	}
	if _, err := s.GetBalanceSnapshot(ctx, "nope"); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
