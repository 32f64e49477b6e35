package core

// ComputeBalances produces one Balance per roster attendee from the trip's
// expenses and payments.
//
// The output preserves roster order and always contains every attendee,
// including those with no activity (balance 0). Only confirmed payments
// are netted; pending and cancelled payments never move balances, even if
// the caller forgot to pre-filter. Soft-deleted expenses are the caller's
// responsibility to exclude.
//
// Invariant: the returned balances sum to zero. Expenses credit the payer
// and debit the participants by the same total, and each payment moves
// cents from one attendee to another, so no input can break conservation
// unless an expense itself is malformed, in which case an error is
// returned and no partial result is produced.
func ComputeBalances(attendees []Attendee, expenses []Expense, payments []Payment) ([]Balance, error) {
	totals := make(map[string]int64, len(attendees))

	for _, e := range expenses {
		deltas, err := SplitExpense(e)
		if err != nil {
			return nil, err
		}
		for id, d := range deltas {
			totals[id] += d
		}
	}

	for _, p := range payments {
		if p.Status != PaymentConfirmed {
			continue
		}
		for id, d := range NetPayment(p) {
			totals[id] += d
		}
	}

	balances := make([]Balance, len(attendees))
	for i, a := range attendees {
		balances[i] = Balance{
			AttendeeID:   a.ID,
			Name:         a.Name,
			BalanceCents: totals[a.ID],
		}
	}
	return balances, nil
}
