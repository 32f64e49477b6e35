package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"tripledger/internal/core"
	"tripledger/internal/services"
	"tripledger/internal/store"
)

// writeServiceError maps service and store errors onto the API contract:
// 404 unknown entity, 403 forbidden actor, 400 invalid input or
// transition, 500 for everything else with the detail kept in the logs.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, services.ErrForbidden):
		writeError(w, http.StatusForbidden, "not allowed")
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrEmptyName),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrDuplicateAttendee),
		errors.Is(err, core.ErrShareSumMismatch),
		errors.Is(err, core.ErrSharesExceedTotal),
		errors.Is(err, core.ErrSelfPayment):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

type tripResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func toTripResponse(t store.Trip) tripResponse {
	return tripResponse{ID: t.ID, Name: t.Name, CreatedAt: t.CreatedAt}
}

type attendeeResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func toAttendeeResponse(a core.Attendee) attendeeResponse {
	return attendeeResponse{ID: a.ID, Name: a.Name}
}

func (s *Server) handleCreateTrip(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	trip, err := s.svc.CreateTrip(r.Context(), sanitizeInput(body.Name))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	NewAPIResponse().Status(http.StatusCreated).Data(toTripResponse(trip)).Write(w)
}

func (s *Server) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	tripID, _, ok := s.requireTripAccess(w, r)
	if !ok {
		return
	}

	trip, err := s.svc.GetTrip(r.Context(), tripID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, toTripResponse(trip))
}

// handleAddAttendee registers a new roster member. Joining is open: the
// trip ID acts as the invite, and the response carries the session token
// the new attendee authenticates with from then on.
func (s *Server) handleAddAttendee(w http.ResponseWriter, r *http.Request) {
	tripID := r.PathValue("tripId")

	var body struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	attendee, token, err := s.svc.AddAttendee(r.Context(), tripID, sanitizeInput(body.Name))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	NewAPIResponse().Status(http.StatusCreated).Data(map[string]any{
		"attendee": toAttendeeResponse(attendee),
		"token":    token,
	}).Write(w)
}

func (s *Server) handleListAttendees(w http.ResponseWriter, r *http.Request) {
	tripID, _, ok := s.requireTripAccess(w, r)
	if !ok {
		return
	}

	roster, err := s.svc.ListAttendees(r.Context(), tripID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]attendeeResponse, 0, len(roster))
	for _, a := range roster {
		out = append(out, toAttendeeResponse(a))
	}
	writeData(w, out)
}
