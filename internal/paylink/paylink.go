// Package paylink generates deep links for settling up on common
// peer-to-peer payment platforms.
package paylink

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"tripledger/internal/core"
)

type Platform string

const (
	Venmo   Platform = "venmo"
	PayPal  Platform = "paypal"
	CashApp Platform = "cashapp"
	Zelle   Platform = "zelle"
)

var ErrUnknownPlatform = errors.New("unknown payment platform")

// Request describes a settlement link to generate.
type Request struct {
	Platform  Platform
	Recipient string
	Amount    core.Money
	Memo      string
}

// Result holds the generated link. Link is empty for platforms without
// deep-link support (Zelle); FallbackText is always usable.
type Result struct {
	Platform     Platform
	Link         string
	FallbackText string
}

// Generate builds a payment link for the requested platform.
//
// Venmo recipients get an "@" prefix and Cash App recipients a "$" prefix
// when missing; memos are URL-encoded. Amounts render with two decimals.
func Generate(req Request) (Result, error) {
	if err := req.Amount.Validate(); err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(req.Recipient) == "" {
		return Result{}, errors.New("empty recipient")
	}

	amount := core.FormatCents(req.Amount.Cents)
	switch req.Platform {
	case Venmo:
		recipient := ensurePrefix(req.Recipient, "@")
		link := fmt.Sprintf("venmo://paycharge?txn=pay&recipients=%s&amount=%s&note=%s",
			recipient, amount, url.QueryEscape(req.Memo))
		return Result{
			Platform:     Venmo,
			Link:         link,
			FallbackText: fmt.Sprintf("Pay %s $%s via Venmo: %s", recipient, amount, req.Memo),
		}, nil
	case PayPal:
		return Result{
			Platform:     PayPal,
			Link:         fmt.Sprintf("https://paypal.me/%s/%s", req.Recipient, amount),
			FallbackText: fmt.Sprintf("Pay %s $%s via PayPal: %s", req.Recipient, amount, req.Memo),
		}, nil
	case CashApp:
		recipient := ensurePrefix(req.Recipient, "$")
		return Result{
			Platform:     CashApp,
			Link:         fmt.Sprintf("https://cash.app/%s/%s", recipient, amount),
			FallbackText: fmt.Sprintf("Pay %s $%s via Cash App: %s", recipient, amount, req.Memo),
		}, nil
	case Zelle:
		// Zelle has no deep-link scheme.
		return Result{
			Platform:     Zelle,
			FallbackText: fmt.Sprintf("Pay %s $%s via Zelle", req.Recipient, amount),
		}, nil
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownPlatform, req.Platform)
	}
}

func ensurePrefix(recipient, prefix string) string {
	if strings.HasPrefix(recipient, prefix) {
		return recipient
	}
	return prefix + recipient
}
