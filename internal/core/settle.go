package core

import "sort"

// Transfer is a suggested settlement payment between two attendees.
type Transfer struct {
	FromID      string
	ToID        string
	AmountCents int64
}

// SuggestSettlements turns a set of net balances into a small list of
// transfers that would settle the trip.
//
// Greedy matching: split attendees into creditors (positive balance) and
// debtors (negative), sort both by amount descending, then repeatedly pay
// the largest creditor from the largest debtor. At most n-1 transfers are
// produced for n attendees with non-zero balances. Ordering is
// deterministic: ties break on attendee ID so identical inputs always
// yield identical suggestions.
func SuggestSettlements(balances []Balance) []Transfer {
	type stake struct {
		id     string
		amount int64
	}
	var creditors, debtors []stake
	for _, b := range balances {
		switch {
		case b.BalanceCents > 0:
			creditors = append(creditors, stake{b.AttendeeID, b.BalanceCents})
		case b.BalanceCents < 0:
			debtors = append(debtors, stake{b.AttendeeID, -b.BalanceCents})
		}
	}

	byAmountDesc := func(s []stake) func(i, j int) bool {
		return func(i, j int) bool {
			if s[i].amount != s[j].amount {
				return s[i].amount > s[j].amount
			}
			return s[i].id < s[j].id
		}
	}
	sort.Slice(creditors, byAmountDesc(creditors))
	sort.Slice(debtors, byAmountDesc(debtors))

	var transfers []Transfer
	ci, di := 0, 0
	for ci < len(creditors) && di < len(debtors) {
		c, d := &creditors[ci], &debtors[di]
		amount := c.amount
		if d.amount < amount {
			amount = d.amount
		}
		if amount > 0 {
			transfers = append(transfers, Transfer{
				FromID:      d.id,
				ToID:        c.id,
				AmountCents: amount,
			})
			c.amount -= amount
			d.amount -= amount
		}
		if c.amount == 0 {
			ci++
		}
		if d.amount == 0 {
			di++
		}
	}
	return transfers
}
