package core

// GroupTotal is an aggregate bucket in a trip summary.
type GroupTotal struct {
	TotalCents int64
	Count      int
}

// Summary is a read-only reporting view over a trip's expenses. It is
// independent of balance computation: TotalSpentCents is gross spend, not
// netted obligations, and opt-outs do not reduce it.
type Summary struct {
	TotalSpentCents int64
	ByCategory      map[string]GroupTotal
	// ByPayer is keyed by the payer's display name, so two attendees with
	// the same name share a bucket. Accepted simplification for this
	// reporting surface.
	ByPayer map[string]GroupTotal
	// ByDate is keyed by the expense's UTC calendar day (YYYY-MM-DD).
	ByDate map[string]GroupTotal
}

// Summarize aggregates expenses by category, payer name and calendar day.
// Empty input yields a zero total and empty (non-nil) maps. Payers missing
// from the roster are keyed by their ID so no spend is silently dropped.
func Summarize(expenses []Expense, attendees []Attendee) Summary {
	names := make(map[string]string, len(attendees))
	for _, a := range attendees {
		names[a.ID] = a.Name
	}

	s := Summary{
		ByCategory: make(map[string]GroupTotal),
		ByPayer:    make(map[string]GroupTotal),
		ByDate:     make(map[string]GroupTotal),
	}
	for _, e := range expenses {
		s.TotalSpentCents += e.Amount.Cents

		cat := s.ByCategory[e.Category]
		cat.TotalCents += e.Amount.Cents
		cat.Count++
		s.ByCategory[e.Category] = cat

		payer := names[e.PayerID]
		if payer == "" {
			payer = e.PayerID
		}
		byPayer := s.ByPayer[payer]
		byPayer.TotalCents += e.Amount.Cents
		byPayer.Count++
		s.ByPayer[payer] = byPayer

		day := e.Date.UTC().Format("2006-01-02")
		byDay := s.ByDate[day]
		byDay.TotalCents += e.Amount.Cents
		byDay.Count++
		s.ByDate[day] = byDay
	}
	return s
}
