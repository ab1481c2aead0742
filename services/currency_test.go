package services

import (
	"math"
	"testing"
)

func TestDetectCurrency(t *testing.T) {
	tests := []struct {
		text       string
		wantAmount float64
		wantCode   string
		wantOK     bool
	}{
		{"QAR 1,850", 1850, "QAR", true},
		{"1850 QAR", 1850, "QAR", true},
		{"£350 total", 350, "GBP", true},
		{"$499.99", 499.99, "USD", true},
		{"USD 1,200", 1200, "USD", true},
		{"ر.ق 2,450", 2450, "QAR", true},
		{"د.إ 1500", 1500, "AED", true},
		{"from €420 return", 420, "EUR", true},
		{"₹25,000", 25000, "INR", true},
		// No marker: bare digits parsed in the reference currency.
		{"2150", 2150, "QAR", true},
		{"Fare: 1,980 per adult", 1980, "QAR", true},
		// Nothing numeric at all.
		{"Sold out", 0, "QAR", false},
		{"", 0, "QAR", false},
	}

	for _, tt := range tests {
		amount, code, ok := DetectCurrency(tt.text)
		if ok != tt.wantOK {
			t.Errorf("DetectCurrency(%q) ok = %v; want %v", tt.text, ok, tt.wantOK)
			continue
		}
		if !ok {
			continue
		}
		if amount != tt.wantAmount || code != tt.wantCode {
			t.Errorf("DetectCurrency(%q) = %.2f %s; want %.2f %s",
				tt.text, amount, code, tt.wantAmount, tt.wantCode)
		}
	}
}

func TestDetectCurrencyPrefersNumberThenToken(t *testing.T) {
	// Both orders appear; the number-then-token match must win.
	amount, code, ok := DetectCurrency("1850 QAR (about $508)")
	if !ok || amount != 1850 || code != "QAR" {
		t.Errorf("got %.2f %s ok=%v; want 1850 QAR", amount, code, ok)
	}
}

func TestRateTableToReference(t *testing.T) {
	rates := NewRateTable(nil)

	tests := []struct {
		amount float64
		code   string
		want   int
	}{
		{1850, "QAR", 1850},
		{350, "GBP", 1610},
		{100, "USD", 364},
		{100.4, "QAR", 100},
		{100.5, "QAR", 101},
		// Unknown code passes through at 1.0.
		{777, "XXX", 777},
	}

	for _, tt := range tests {
		got := rates.ToReference(tt.amount, tt.code)
		if got != tt.want {
			t.Errorf("ToReference(%.2f, %s) = %d; want %d", tt.amount, tt.code, got, tt.want)
		}
	}
}

func TestRateTableOverrides(t *testing.T) {
	rates := NewRateTable(map[string]float64{"gbp": 5.0, "BAD": -1})

	if got := rates.Rate("GBP"); got != 5.0 {
		t.Errorf("Rate(GBP) = %v; want override 5.0", got)
	}
	// Non-positive overrides are ignored, not applied.
	if got := rates.Rate("BAD"); got != 1.0 {
		t.Errorf("Rate(BAD) = %v; want 1.0", got)
	}
	// Untouched entries keep the built-in rate.
	if got := rates.Rate("USD"); got != 3.64 {
		t.Errorf("Rate(USD) = %v; want 3.64", got)
	}
}

func TestRateTableRoundTripConsistency(t *testing.T) {
	rates := NewRateTable(nil)
	for code, rate := range defaultRates {
		back := float64(rates.ToReference(1000, code)) / rate
		if math.Abs(back-1000) > 1.0/rate {
			t.Errorf("%s: 1000 units round-trips to %.2f", code, back)
		}
	}
}
