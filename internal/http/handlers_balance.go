package http

import (
	"net/http"

	"tripledger/internal/core"
)

type balanceResponse struct {
	AttendeeID   string `json:"attendeeId"`
	Name         string `json:"name"`
	BalanceCents int64  `json:"balance_cents"`
}

type groupTotalResponse struct {
	TotalCents int64 `json:"total_cents"`
	Count      int   `json:"count"`
}

type summaryResponse struct {
	TotalSpentCents int64                         `json:"totalSpent_cents"`
	ByCategory      map[string]groupTotalResponse `json:"byCategory"`
	ByPayer         map[string]groupTotalResponse `json:"byPayer"`
	ByDate          map[string]groupTotalResponse `json:"byDate"`
}

type transferResponse struct {
	FromID      string `json:"fromId"`
	ToID        string `json:"toId"`
	AmountCents int64  `json:"amount_cents"`
}

func toBalanceResponses(balances []core.Balance) []balanceResponse {
	out := make([]balanceResponse, 0, len(balances))
	for _, b := range balances {
		out = append(out, balanceResponse{
			AttendeeID:   b.AttendeeID,
			Name:         b.Name,
			BalanceCents: b.BalanceCents,
		})
	}
	return out
}

func toGroupTotals(in map[string]core.GroupTotal) map[string]groupTotalResponse {
	out := make(map[string]groupTotalResponse, len(in))
	for k, v := range in {
		out[k] = groupTotalResponse{TotalCents: v.TotalCents, Count: v.Count}
	}
	return out
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	tripID, _, ok := s.requireTripAccess(w, r)
	if !ok {
		return
	}

	cacheKey := tripID + ":balances"
	if cached, hit := s.balancesCache.Get(cacheKey); hit {
		writeData(w, toBalanceResponses(cached))
		return
	}

	balances, err := s.svc.Balances(r.Context(), tripID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.balancesCache.Set(cacheKey, balances)
	writeData(w, toBalanceResponses(balances))
}

func (s *Server) handleBalancesSummary(w http.ResponseWriter, r *http.Request) {
	tripID, _, ok := s.requireTripAccess(w, r)
	if !ok {
		return
	}

	cacheKey := tripID + ":summary"
	summary, hit := s.summaryCache.Get(cacheKey)
	if !hit {
		var err error
		summary, err = s.svc.Summary(r.Context(), tripID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		s.summaryCache.Set(cacheKey, summary)
	}

	writeData(w, summaryResponse{
		TotalSpentCents: summary.TotalSpentCents,
		ByCategory:      toGroupTotals(summary.ByCategory),
		ByPayer:         toGroupTotals(summary.ByPayer),
		ByDate:          toGroupTotals(summary.ByDate),
	})
}

func (s *Server) handleSettlements(w http.ResponseWriter, r *http.Request) {
	tripID, _, ok := s.requireTripAccess(w, r)
	if !ok {
		return
	}

	transfers, err := s.svc.Settlements(r.Context(), tripID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]transferResponse, 0, len(transfers))
	for _, tr := range transfers {
		out = append(out, transferResponse{
			FromID:      tr.FromID,
			ToID:        tr.ToID,
			AmountCents: tr.AmountCents,
		})
	}
	writeData(w, out)
}
