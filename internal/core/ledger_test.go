package core

import (
	"reflect"
	"testing"
)

func roster(ids ...string) []Attendee {
	as := make([]Attendee, len(ids))
	for i, id := range ids {
		as[i] = Attendee{ID: id, Name: "Name " + id}
	}
	return as
}

func assertZeroSum(t *testing.T, balances []Balance) {
	t.Helper()
	var sum int64
	for _, b := range balances {
		sum += b.BalanceCents
	}
	if sum != 0 {
		t.Fatalf("balances sum to %d, want 0: %+v", sum, balances)
	}
}

func TestComputeBalancesEvenSplitWithPayment(t *testing.T) {
	attendees := roster("a", "b")
	expenses := []Expense{
		{ID: "e1", PayerID: "a", Amount: Money{Cents: 10000}, Participants: participants("a", "b")},
	}

	balances, err := ComputeBalances(attendees, expenses, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balances[0].BalanceCents != 5000 || balances[1].BalanceCents != -5000 {
		t.Fatalf("balances=%+v", balances)
	}
	assertZeroSum(t, balances)

	// b pays a back 3000: a +2000, b -2000.
	payments := []Payment{
		{ID: "p1", FromID: "b", ToID: "a", Amount: Money{Cents: 3000}, Status: PaymentConfirmed},
	}
	balances, err = ComputeBalances(attendees, expenses, payments)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balances[0].BalanceCents != 2000 || balances[1].BalanceCents != -2000 {
		t.Fatalf("balances=%+v", balances)
	}
	assertZeroSum(t, balances)
}

func TestComputeBalancesIgnoresUnconfirmedPayments(t *testing.T) {
	attendees := roster("a", "b")
	expenses := []Expense{
		{ID: "e1", PayerID: "a", Amount: Money{Cents: 10000}, Participants: participants("a", "b")},
	}
	payments := []Payment{
		{ID: "p1", FromID: "b", ToID: "a", Amount: Money{Cents: 3000}, Status: PaymentPending},
		{ID: "p2", FromID: "b", ToID: "a", Amount: Money{Cents: 2000}, Status: PaymentCancelled},
	}

	balances, err := ComputeBalances(attendees, expenses, payments)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balances[0].BalanceCents != 5000 || balances[1].BalanceCents != -5000 {
		t.Fatalf("unconfirmed payments moved balances: %+v", balances)
	}
	assertZeroSum(t, balances)
}

func TestComputeBalancesRosterOrderAndZeroActivity(t *testing.T) {
	attendees := roster("c", "a", "b")
	expenses := []Expense{
		{ID: "e1", PayerID: "a", Amount: Money{Cents: 6000}, Participants: participants("a", "b")},
	}

	balances, err := ComputeBalances(attendees, expenses, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(balances) != 3 {
		t.Fatalf("expected a balance per roster attendee, got %d", len(balances))
	}
	// Roster order preserved; c untouched but present at zero.
	if balances[0].AttendeeID != "c" || balances[0].BalanceCents != 0 {
		t.Fatalf("balances[0]=%+v", balances[0])
	}
	if balances[1].AttendeeID != "a" || balances[1].BalanceCents != 3000 {
		t.Fatalf("balances[1]=%+v", balances[1])
	}
	if balances[2].AttendeeID != "b" || balances[2].BalanceCents != -3000 {
		t.Fatalf("balances[2]=%+v", balances[2])
	}
}

func TestComputeBalancesZeroSumManyExpenses(t *testing.T) {
	attendees := roster("a", "b", "c", "d")
	expenses := []Expense{
		{ID: "e1", PayerID: "a", Amount: Money{Cents: 10000}, Participants: participants("a", "b", "c", "d")},
		{ID: "e2", PayerID: "b", Amount: Money{Cents: 3333}, Participants: participants("a", "b")},
		{ID: "e3", PayerID: "c", Amount: Money{Cents: 7777}, Participants: participants("b", "c", "d")},
	}
	payments := []Payment{
		{ID: "p1", FromID: "d", ToID: "a", Amount: Money{Cents: 1200}, Status: PaymentConfirmed},
		{ID: "p2", FromID: "b", ToID: "c", Amount: Money{Cents: 450}, Status: PaymentConfirmed},
	}

	balances, err := ComputeBalances(attendees, expenses, payments)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertZeroSum(t, balances)
}

func TestComputeBalancesIdempotent(t *testing.T) {
	attendees := roster("a", "b", "c")
	expenses := []Expense{
		{ID: "e1", PayerID: "a", Amount: Money{Cents: 10001}, Participants: participants("a", "b", "c")},
	}
	payments := []Payment{
		{ID: "p1", FromID: "b", ToID: "a", Amount: Money{Cents: 500}, Status: PaymentConfirmed},
	}

	first, err := ComputeBalances(attendees, expenses, payments)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := ComputeBalances(attendees, expenses, payments)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("ledger not idempotent:\nfirst=%+v\nsecond=%+v", first, second)
	}
}

func TestComputeBalancesMalformedExpenseRejected(t *testing.T) {
	attendees := roster("a", "b")
	expenses := []Expense{
		{
			ID:      "e1",
			PayerID: "a",
			Amount:  Money{Cents: 10000},
			Participants: []Participant{
				{AttendeeID: "a", OptedIn: true, ShareCents: ShareRef(4000)},
				{AttendeeID: "b", OptedIn: true, ShareCents: ShareRef(4000)},
			},
		},
	}

	if _, err := ComputeBalances(attendees, expenses, nil); err == nil {
		t.Fatalf("expected error for shares not summing to total")
	}
}
