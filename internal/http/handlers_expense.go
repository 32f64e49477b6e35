package http

import (
	"net/http"
	"time"

	"tripledger/internal/core"
	"tripledger/internal/store"
)

type participantPayload struct {
	AttendeeID string `json:"attendeeId"`
	OptedIn    bool   `json:"optedIn"`
	ShareCents *int64 `json:"share_cents,omitempty"`
}

type expensePayload struct {
	PayerID      string               `json:"payerId"`
	AmountCents  int64                `json:"amount_cents"`
	Amount       string               `json:"amount,omitempty"`
	Category     string               `json:"category"`
	Description  string               `json:"description"`
	Date         string               `json:"date,omitempty"`
	Status       string               `json:"status,omitempty"`
	Participants []participantPayload `json:"participants"`
}

type expenseResponse struct {
	ID           string               `json:"id"`
	PayerID      string               `json:"payerId"`
	AmountCents  int64                `json:"amount_cents"`
	Category     string               `json:"category"`
	Description  string               `json:"description"`
	Status       string               `json:"status"`
	Date         string               `json:"date"`
	Participants []participantPayload `json:"participants"`
	CreatedBy    string               `json:"createdBy"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

// toExpense builds a core expense from the payload. The amount may arrive
// as integer cents or as a decimal string ("42.50"); cents win when both
// are present.
func (p expensePayload) toExpense() (core.Expense, error) {
	cents := p.AmountCents
	if cents == 0 && p.Amount != "" {
		parsed, err := core.ParseDecimalToCents(p.Amount)
		if err != nil {
			return core.Expense{}, err
		}
		cents = parsed
	}

	e := core.Expense{
		PayerID:     p.PayerID,
		Amount:      core.Money{Cents: cents},
		Category:    sanitizeInput(p.Category),
		Description: sanitizeInput(p.Description),
		Status:      core.ExpenseStatus(p.Status),
	}
	if p.Date != "" {
		d, err := parseDate(p.Date)
		if err != nil {
			return core.Expense{}, err
		}
		e.Date = d
	}
	for _, pp := range p.Participants {
		e.Participants = append(e.Participants, core.Participant{
			AttendeeID: pp.AttendeeID,
			OptedIn:    pp.OptedIn,
			ShareCents: pp.ShareCents,
		})
	}
	return e, nil
}

func toExpenseResponse(rec store.ExpenseRecord) expenseResponse {
	resp := expenseResponse{
		ID:          rec.Expense.ID,
		PayerID:     rec.Expense.PayerID,
		AmountCents: rec.Expense.Amount.Cents,
		Category:    rec.Expense.Category,
		Description: rec.Expense.Description,
		Status:      string(rec.Expense.Status),
		Date:        rec.Expense.Date.UTC().Format("2006-01-02"),
		CreatedBy:   rec.CreatedBy,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
	for _, p := range rec.Expense.Participants {
		resp.Participants = append(resp.Participants, participantPayload{
			AttendeeID: p.AttendeeID,
			OptedIn:    p.OptedIn,
			ShareCents: p.ShareCents,
		})
	}
	return resp
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	tripID, attendeeID, ok := s.requireTripAccess(w, r)
	if !ok {
		return
	}

	var body expensePayload
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	expense, err := body.toExpense()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := s.svc.CreateExpense(r.Context(), tripID, attendeeID, expense)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateTrip(tripID)
	NewAPIResponse().Status(http.StatusCreated).Data(toExpenseResponse(rec)).Write(w)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	tripID, _, ok := s.requireTripAccess(w, r)
	if !ok {
		return
	}

	page, limit := parsePageLimit(r)
	result, err := s.svc.ListExpenses(r.Context(), tripID, page, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	expenses := make([]expenseResponse, 0, len(result.Data))
	for _, rec := range result.Data {
		expenses = append(expenses, toExpenseResponse(rec))
	}
	writeData(w, map[string]any{
		"expenses": expenses,
		"total":    result.Total,
		"page":     result.Page,
		"limit":    result.Limit,
	})
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	tripID, _, ok := s.requireTripAccess(w, r)
	if !ok {
		return
	}

	rec, err := s.svc.GetExpense(r.Context(), tripID, r.PathValue("expenseId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, toExpenseResponse(rec))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	tripID, attendeeID, ok := s.requireTripAccess(w, r)
	if !ok {
		return
	}

	var body expensePayload
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	expense, err := body.toExpense()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	expense.ID = r.PathValue("expenseId")

	rec, err := s.svc.UpdateExpense(r.Context(), tripID, attendeeID, expense)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateTrip(tripID)
	writeData(w, toExpenseResponse(rec))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	tripID, attendeeID, ok := s.requireTripAccess(w, r)
	if !ok {
		return
	}

	if err := s.svc.DeleteExpense(r.Context(), tripID, attendeeID, r.PathValue("expenseId")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateTrip(tripID)
	writeData(w, map[string]string{"status": "deleted"})
}
