package core

// Share is one opted-in participant's computed obligation on an expense.
type Share struct {
	AttendeeID string
	ShareCents int64
	// ExtraCent marks participants that absorbed a remainder cent from an
	// uneven split.
	ExtraCent bool
}

// SplitResult describes how an expense's amount was divided.
type SplitResult struct {
	// PerPersonCents is the base even share before remainder distribution.
	// Zero when every participant carries an explicit share.
	PerPersonCents int64
	Shares         []Share
	RemainderCents int64
}

// SplitShares divides an expense among its opted-in participants.
//
// Participants with an explicit ShareCents keep it as-is. The remaining
// amount (total minus the explicit shares) is divided evenly among the
// participants without one; when it does not divide exactly, the leftover
// cents are assigned one each to the first participants in list order, so
// the shares always sum to the expense amount.
//
// Opted-out participants owe nothing and are excluded from the denominator.
// An expense with no opted-in participants yields an empty result.
//
// When every participant has an explicit share, the shares must sum to the
// expense amount; a mismatch returns ErrShareSumMismatch rather than a
// silent fallback, since an unbalanced split would break the zero-sum
// ledger invariant.
func SplitShares(e Expense) (SplitResult, error) {
	var (
		explicit int64
		flexible []Participant
		optedIn  []Participant
	)
	for _, p := range e.Participants {
		if !p.OptedIn {
			continue
		}
		optedIn = append(optedIn, p)
		if p.ShareCents != nil {
			explicit += *p.ShareCents
		} else {
			flexible = append(flexible, p)
		}
	}
	if len(optedIn) == 0 {
		return SplitResult{}, nil
	}

	remaining := e.Amount.Cents - explicit
	if remaining < 0 {
		return SplitResult{}, ErrSharesExceedTotal
	}
	if len(flexible) == 0 && remaining != 0 {
		return SplitResult{}, ErrShareSumMismatch
	}

	var base, remainder int64
	if len(flexible) > 0 {
		n := int64(len(flexible))
		base = remaining / n
		remainder = remaining % n
	}

	result := SplitResult{
		PerPersonCents: base,
		RemainderCents: remainder,
		Shares:         make([]Share, 0, len(optedIn)),
	}
	flexIdx := int64(0)
	for _, p := range optedIn {
		if p.ShareCents != nil {
			result.Shares = append(result.Shares, Share{
				AttendeeID: p.AttendeeID,
				ShareCents: *p.ShareCents,
			})
			continue
		}
		share := base
		extra := flexIdx < remainder
		if extra {
			share++
		}
		flexIdx++
		result.Shares = append(result.Shares, Share{
			AttendeeID: p.AttendeeID,
			ShareCents: share,
			ExtraCent:  extra,
		})
	}
	return result, nil
}

// SplitExpense converts one expense into signed cent deltas per attendee:
// the payer is credited the full amount, every opted-in participant is
// debited their share. Deltas accumulate, so a payer who also participates
// nets the two. Only attendees touched by the expense appear in the map.
func SplitExpense(e Expense) (map[string]int64, error) {
	split, err := SplitShares(e)
	if err != nil {
		return nil, err
	}
	if len(split.Shares) == 0 {
		// Nothing to split: nobody opted in.
		return map[string]int64{}, nil
	}

	deltas := make(map[string]int64, len(split.Shares)+1)
	deltas[e.PayerID] += e.Amount.Cents
	for _, s := range split.Shares {
		deltas[s.AttendeeID] -= s.ShareCents
	}
	return deltas, nil
}

// NetPayment converts one payment into a pair of signed cent deltas,
// mirroring the expense sign convention: money sent is positive, money
// received is negative.
func NetPayment(p Payment) map[string]int64 {
	return map[string]int64{
		p.FromID: p.Amount.Cents,
		p.ToID:   -p.Amount.Cents,
	}
}
