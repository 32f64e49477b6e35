package core

import (
	"reflect"
	"testing"
)

func TestSuggestSettlementsEmpty(t *testing.T) {
	if got := SuggestSettlements(nil); len(got) != 0 {
		t.Fatalf("expected no transfers, got %+v", got)
	}
	settled := []Balance{{AttendeeID: "a"}, {AttendeeID: "b"}}
	if got := SuggestSettlements(settled); len(got) != 0 {
		t.Fatalf("expected no transfers for settled trip, got %+v", got)
	}
}

func TestSuggestSettlementsSinglePair(t *testing.T) {
	balances := []Balance{
		{AttendeeID: "a", BalanceCents: 5000},
		{AttendeeID: "b", BalanceCents: -5000},
	}
	want := []Transfer{{FromID: "b", ToID: "a", AmountCents: 5000}}
	if got := SuggestSettlements(balances); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestSuggestSettlementsGreedyMatching(t *testing.T) {
	// a is owed 7500; b, c, d owe 2500 each.
	balances := []Balance{
		{AttendeeID: "a", BalanceCents: 7500},
		{AttendeeID: "b", BalanceCents: -2500},
		{AttendeeID: "c", BalanceCents: -2500},
		{AttendeeID: "d", BalanceCents: -2500},
	}
	want := []Transfer{
		{FromID: "b", ToID: "a", AmountCents: 2500},
		{FromID: "c", ToID: "a", AmountCents: 2500},
		{FromID: "d", ToID: "a", AmountCents: 2500},
	}
	if got := SuggestSettlements(balances); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestSuggestSettlementsConservesCents(t *testing.T) {
	balances := []Balance{
		{AttendeeID: "a", BalanceCents: 7001},
		{AttendeeID: "b", BalanceCents: 1999},
		{AttendeeID: "c", BalanceCents: -4500},
		{AttendeeID: "d", BalanceCents: -4500},
	}

	transfers := SuggestSettlements(balances)

	// Applying the transfers must settle everyone exactly.
	totals := make(map[string]int64)
	for _, b := range balances {
		totals[b.AttendeeID] = b.BalanceCents
	}
	for _, tr := range transfers {
		totals[tr.FromID] += tr.AmountCents
		totals[tr.ToID] -= tr.AmountCents
	}
	for id, c := range totals {
		if c != 0 {
			t.Fatalf("attendee %s left with %d cents after settlement: %+v", id, c, transfers)
		}
	}
	// n attendees with non-zero balances settle in at most n-1 transfers.
	if len(transfers) > 3 {
		t.Fatalf("expected at most 3 transfers, got %d", len(transfers))
	}
}

func TestSuggestSettlementsDeterministic(t *testing.T) {
	balances := []Balance{
		{AttendeeID: "b", BalanceCents: -3000},
		{AttendeeID: "a", BalanceCents: 6000},
		{AttendeeID: "c", BalanceCents: -3000},
	}
	first := SuggestSettlements(balances)
	second := SuggestSettlements(balances)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("settlement suggestions not deterministic:\n%+v\n%+v", first, second)
	}
	// Equal debts tie-break on ID.
	if first[0].FromID != "b" || first[1].FromID != "c" {
		t.Fatalf("tie-break order wrong: %+v", first)
	}
}
