package http

import (
	"net/http"

	"tripledger/internal/core"
	"tripledger/internal/paylink"
)

type paymentLinkPayload struct {
	Platform    string `json:"platform"`
	Recipient   string `json:"recipient"`
	AmountCents int64  `json:"amount_cents"`
	Memo        string `json:"memo,omitempty"`
}

type paymentLinkResponse struct {
	Platform     string `json:"platform"`
	Link         string `json:"link,omitempty"`
	FallbackText string `json:"fallbackText"`
}

// handlePaymentLinks generates a settlement deep link. Not trip-scoped,
// but still requires a valid session.
func (s *Server) handlePaymentLinks(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}

	var body paymentLinkPayload
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := paylink.Generate(paylink.Request{
		Platform:  paylink.Platform(body.Platform),
		Recipient: sanitizeInput(body.Recipient),
		Amount:    core.Money{Cents: body.AmountCents},
		Memo:      body.Memo,
	})
	if err != nil {
		// Generate only fails on bad input (platform, amount, recipient)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeData(w, paymentLinkResponse{
		Platform:     string(result.Platform),
		Link:         result.Link,
		FallbackText: result.FallbackText,
	})
}
