package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"tripledger/internal/store"
)

// AuthStore resolves bearer tokens to attendees and checks trip membership.
type AuthStore interface {
	AttendeeForToken(ctx context.Context, token string) (string, error)
	IsMember(ctx context.Context, tripID, attendeeID string) (bool, error)
}

// authenticate resolves the Authorization header to an attendee ID.
// On failure it writes the 401 response and returns ok=false.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return "", false
	}

	attendeeID, err := s.auth.AttendeeForToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrTokenExpired) {
			writeError(w, http.StatusUnauthorized, "invalid or expired session")
			return "", false
		}
		slog.ErrorContext(r.Context(), "Session lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return "", false
	}
	return attendeeID, true
}

// requireTripAccess authenticates the caller and verifies they belong to
// the trip in the URL. Membership is checked before any ledger work so
// non-members cannot probe trip contents.
func (s *Server) requireTripAccess(w http.ResponseWriter, r *http.Request) (tripID, attendeeID string, ok bool) {
	tripID = r.PathValue("tripId")
	if uuid.Validate(tripID) != nil {
		writeError(w, http.StatusBadRequest, "malformed trip id")
		return "", "", false
	}

	attendeeID, ok = s.authenticate(w, r)
	if !ok {
		return "", "", false
	}

	member, err := s.auth.IsMember(r.Context(), tripID, attendeeID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Membership check failed",
			"trip_id", tripID,
			"attendee_id", attendeeID,
			"error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return "", "", false
	}
	if !member {
		writeError(w, http.StatusForbidden, "not a member of this trip")
		return "", "", false
	}

	return tripID, attendeeID, true
}
