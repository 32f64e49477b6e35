package core

import "testing"

func participants(ids ...string) []Participant {
	ps := make([]Participant, len(ids))
	for i, id := range ids {
		ps[i] = Participant{AttendeeID: id, OptedIn: true}
	}
	return ps
}

func TestSplitSharesEven(t *testing.T) {
	e := Expense{PayerID: "a", Amount: Money{Cents: 10000}, Participants: participants("a", "b", "c", "d")}
	res, err := SplitShares(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.PerPersonCents != 2500 || res.RemainderCents != 0 {
		t.Fatalf("per person=%d remainder=%d", res.PerPersonCents, res.RemainderCents)
	}
	var sum int64
	for _, s := range res.Shares {
		if s.ShareCents != 2500 || s.ExtraCent {
			t.Fatalf("share %+v", s)
		}
		sum += s.ShareCents
	}
	if sum != 10000 {
		t.Fatalf("shares sum to %d, want 10000", sum)
	}
}

func TestSplitSharesRemainderGoesToFirstParticipants(t *testing.T) {
	e := Expense{PayerID: "a", Amount: Money{Cents: 10001}, Participants: participants("a", "b", "c")}
	res, err := SplitShares(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.PerPersonCents != 3333 || res.RemainderCents != 2 {
		t.Fatalf("per person=%d remainder=%d", res.PerPersonCents, res.RemainderCents)
	}
	want := []int64{3334, 3334, 3333}
	var sum int64
	for i, s := range res.Shares {
		if s.ShareCents != want[i] {
			t.Fatalf("share[%d]=%d, want %d", i, s.ShareCents, want[i])
		}
		if s.ExtraCent != (i < 2) {
			t.Fatalf("share[%d].ExtraCent=%v", i, s.ExtraCent)
		}
		sum += s.ShareCents
	}
	if sum != 10001 {
		t.Fatalf("shares sum to %d, want 10001", sum)
	}
}

func TestSplitSharesMixedExplicitAndEven(t *testing.T) {
	// a has an explicit 3000 share, b and c split the remaining 7001.
	e := Expense{
		PayerID: "a",
		Amount:  Money{Cents: 10001},
		Participants: []Participant{
			{AttendeeID: "a", OptedIn: true, ShareCents: ShareRef(3000)},
			{AttendeeID: "b", OptedIn: true},
			{AttendeeID: "c", OptedIn: true},
		},
	}
	res, err := SplitShares(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]int64{"a": 3000, "b": 3501, "c": 3500}
	for _, s := range res.Shares {
		if s.ShareCents != want[s.AttendeeID] {
			t.Fatalf("share for %s=%d, want %d", s.AttendeeID, s.ShareCents, want[s.AttendeeID])
		}
	}
}

func TestSplitSharesExplicitMismatch(t *testing.T) {
	e := Expense{
		PayerID: "a",
		Amount:  Money{Cents: 10000},
		Participants: []Participant{
			{AttendeeID: "a", OptedIn: true, ShareCents: ShareRef(3000)},
			{AttendeeID: "b", OptedIn: true, ShareCents: ShareRef(6000)},
		},
	}
	if _, err := SplitShares(e); err != ErrShareSumMismatch {
		t.Fatalf("expected ErrShareSumMismatch, got %v", err)
	}

	e.Participants[1].ShareCents = ShareRef(8000)
	if _, err := SplitShares(e); err != ErrSharesExceedTotal {
		t.Fatalf("expected ErrSharesExceedTotal, got %v", err)
	}
}

func TestSplitSharesNobodyOptedIn(t *testing.T) {
	e := Expense{
		PayerID: "a",
		Amount:  Money{Cents: 5000},
		Participants: []Participant{
			{AttendeeID: "a", OptedIn: false},
			{AttendeeID: "b", OptedIn: false},
		},
	}
	res, err := SplitShares(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Shares) != 0 {
		t.Fatalf("expected no shares, got %d", len(res.Shares))
	}

	deltas, err := SplitExpense(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deltas) != 0 {
		t.Fatalf("expected no deltas, got %v", deltas)
	}
}

func TestSplitExpensePayerIsParticipant(t *testing.T) {
	// 10000 split between a and b, paid by a: a nets +5000, b -5000.
	e := Expense{PayerID: "a", Amount: Money{Cents: 10000}, Participants: participants("a", "b")}
	deltas, err := SplitExpense(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deltas["a"] != 5000 || deltas["b"] != -5000 {
		t.Fatalf("deltas=%v", deltas)
	}
}

func TestSplitExpenseCustomShares(t *testing.T) {
	// a paid 10000 and owes 3000 of it: nets +7000; b owes 7000.
	e := Expense{
		PayerID: "a",
		Amount:  Money{Cents: 10000},
		Participants: []Participant{
			{AttendeeID: "a", OptedIn: true, ShareCents: ShareRef(3000)},
			{AttendeeID: "b", OptedIn: true, ShareCents: ShareRef(7000)},
		},
	}
	deltas, err := SplitExpense(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deltas["a"] != 7000 || deltas["b"] != -7000 {
		t.Fatalf("deltas=%v", deltas)
	}
}

func TestSplitExpenseOptOutExcluded(t *testing.T) {
	e := Expense{
		PayerID: "a",
		Amount:  Money{Cents: 9000},
		Participants: []Participant{
			{AttendeeID: "a", OptedIn: true},
			{AttendeeID: "b", OptedIn: true},
			{AttendeeID: "c", OptedIn: false},
		},
	}
	deltas, err := SplitExpense(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deltas["a"] != 4500 || deltas["b"] != -4500 {
		t.Fatalf("deltas=%v", deltas)
	}
	if _, touched := deltas["c"]; touched {
		t.Fatalf("opted-out attendee should not appear in deltas: %v", deltas)
	}
}

func TestSplitExpenseSelfOnly(t *testing.T) {
	// Paid for themselves: paid and owes the same amount.
	e := Expense{PayerID: "a", Amount: Money{Cents: 10000}, Participants: participants("a")}
	deltas, err := SplitExpense(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deltas["a"] != 0 {
		t.Fatalf("deltas=%v, want a=0", deltas)
	}
}

func TestSplitExpensePayerNotParticipating(t *testing.T) {
	// a fronts 3000 for b, c, d without taking a share.
	e := Expense{PayerID: "a", Amount: Money{Cents: 3000}, Participants: participants("b", "c", "d")}
	deltas, err := SplitExpense(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deltas["a"] != 3000 {
		t.Fatalf("payer delta=%d, want 3000", deltas["a"])
	}
	for _, id := range []string{"b", "c", "d"} {
		if deltas[id] != -1000 {
			t.Fatalf("delta[%s]=%d, want -1000", id, deltas[id])
		}
	}
}

func TestNetPayment(t *testing.T) {
	p := Payment{FromID: "b", ToID: "a", Amount: Money{Cents: 3000}, Status: PaymentConfirmed}
	deltas := NetPayment(p)
	if deltas["b"] != 3000 || deltas["a"] != -3000 {
		t.Fatalf("deltas=%v", deltas)
	}
}
