package http

import (
	"net/http"

	"tripledger/internal/core"
)

type paymentPayload struct {
	ToID        string `json:"toId"`
	AmountCents int64  `json:"amount_cents"`
	Date        string `json:"date,omitempty"`
}

type paymentResponse struct {
	ID          string `json:"id"`
	FromID      string `json:"fromId"`
	ToID        string `json:"toId"`
	AmountCents int64  `json:"amount_cents"`
	Status      string `json:"status"`
	Date        string `json:"date"`
}

func toPaymentResponse(p core.Payment) paymentResponse {
	return paymentResponse{
		ID:          p.ID,
		FromID:      p.FromID,
		ToID:        p.ToID,
		AmountCents: p.Amount.Cents,
		Status:      string(p.Status),
		Date:        p.Date.UTC().Format("2006-01-02"),
	}
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	tripID, attendeeID, ok := s.requireTripAccess(w, r)
	if !ok {
		return
	}

	var body paymentPayload
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payment := core.Payment{
		ToID:   body.ToID,
		Amount: core.Money{Cents: body.AmountCents},
	}
	if body.Date != "" {
		d, err := parseDate(body.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
			return
		}
		payment.Date = d
	}

	rec, err := s.svc.CreatePayment(r.Context(), tripID, attendeeID, payment)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	NewAPIResponse().Status(http.StatusCreated).Data(toPaymentResponse(rec.Payment)).Write(w)
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	tripID, _, ok := s.requireTripAccess(w, r)
	if !ok {
		return
	}

	payments, err := s.svc.ListPayments(r.Context(), tripID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]paymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentResponse(p))
	}
	writeData(w, out)
}

func (s *Server) handleConfirmPayment(w http.ResponseWriter, r *http.Request) {
	tripID, attendeeID, ok := s.requireTripAccess(w, r)
	if !ok {
		return
	}

	if err := s.svc.ConfirmPayment(r.Context(), tripID, attendeeID, r.PathValue("paymentId")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateTrip(tripID)
	writeData(w, map[string]string{"status": "confirmed"})
}

func (s *Server) handleCancelPayment(w http.ResponseWriter, r *http.Request) {
	tripID, attendeeID, ok := s.requireTripAccess(w, r)
	if !ok {
		return
	}

	if err := s.svc.CancelPayment(r.Context(), tripID, attendeeID, r.PathValue("paymentId")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateTrip(tripID)
	writeData(w, map[string]string{"status": "cancelled"})
}
