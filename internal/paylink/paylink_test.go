package paylink

import (
	"strings"
	"testing"

	"tripledger/internal/core"
)

func TestGenerateVenmo(t *testing.T) {
	res, err := Generate(Request{
		Platform:  Venmo,
		Recipient: "@mike_j",
		Amount:    core.Money{Cents: 15000},
		Memo:      "Trip expenses",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "venmo://paycharge?txn=pay&recipients=@mike_j&amount=150.00&note=Trip+expenses"
	if res.Link != want {
		t.Fatalf("link=%q, want %q", res.Link, want)
	}
}

func TestGenerateVenmoAddsAtPrefix(t *testing.T) {
	res, err := Generate(Request{Platform: Venmo, Recipient: "mike_j", Amount: core.Money{Cents: 15000}, Memo: "Trip"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.Link, "recipients=@mike_j") {
		t.Fatalf("link missing @ prefix: %q", res.Link)
	}
}

func TestGenerateVenmoEncodesMemo(t *testing.T) {
	res, err := Generate(Request{Platform: Venmo, Recipient: "@mike_j", Amount: core.Money{Cents: 15000}, Memo: "Trip & dinner"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.Link, "note=Trip+%26+dinner") {
		t.Fatalf("memo not encoded: %q", res.Link)
	}
}

func TestGeneratePayPal(t *testing.T) {
	res, err := Generate(Request{Platform: PayPal, Recipient: "mike@email.com", Amount: core.Money{Cents: 15000}, Memo: "Trip expenses"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Link != "https://paypal.me/mike@email.com/150.00" {
		t.Fatalf("link=%q", res.Link)
	}
}

func TestGenerateCashAppAddsDollarPrefix(t *testing.T) {
	res, err := Generate(Request{Platform: CashApp, Recipient: "mikej", Amount: core.Money{Cents: 2550}, Memo: "Gas"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Link != "https://cash.app/$mikej/25.50" {
		t.Fatalf("link=%q", res.Link)
	}
}

func TestGenerateZelleHasNoLink(t *testing.T) {
	res, err := Generate(Request{Platform: Zelle, Recipient: "mike@email.com", Amount: core.Money{Cents: 15000}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Link != "" {
		t.Fatalf("zelle should have no deep link, got %q", res.Link)
	}
	if !strings.Contains(res.FallbackText, "150.00") {
		t.Fatalf("fallback text missing amount: %q", res.FallbackText)
	}
}

func TestGenerateRejectsBadInput(t *testing.T) {
	if _, err := Generate(Request{Platform: "wire", Recipient: "x", Amount: core.Money{Cents: 100}}); err == nil {
		t.Fatalf("expected error for unknown platform")
	}
	if _, err := Generate(Request{Platform: Venmo, Recipient: "x", Amount: core.Money{Cents: 0}}); err == nil {
		t.Fatalf("expected error for zero amount")
	}
	if _, err := Generate(Request{Platform: Venmo, Recipient: "  ", Amount: core.Money{Cents: 100}}); err == nil {
		t.Fatalf("expected error for empty recipient")
	}
}
