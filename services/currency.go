package services

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ReferenceCurrency is the currency every extracted price is converted to.
const ReferenceCurrency = "QAR"

// currencyTokens maps a textual marker (symbol, ISO code or Arabic
// abbreviation) to its ISO currency code.
var currencyTokens = map[string]string{
	"QAR": "QAR", "USD": "USD", "GBP": "GBP", "EUR": "EUR",
	"AED": "AED", "SAR": "SAR", "KWD": "KWD", "EGP": "EGP",
	"TRY": "TRY", "PKR": "PKR", "INR": "INR", "MYR": "MYR", "THB": "THB",
	"$": "USD", "£": "GBP", "€": "EUR", "₹": "INR", "₺": "TRY", "﷼": "QAR",
	"ر.ق": "QAR", "د.إ": "AED", "ر.س": "SAR", "ج.م": "EGP", "د.ك": "KWD",
}

const numberPattern = `([0-9][0-9,]*(?:\.[0-9]+)?)`

var (
	// Tried in order: number-then-token, then token-then-number. The first
	// pattern that matches and parses to a positive amount wins.
	numThenToken  = regexp.MustCompile(`(?i)` + numberPattern + `\s*` + tokenAlternation())
	tokenThenNum  = regexp.MustCompile(`(?i)` + tokenAlternation() + `\s*` + numberPattern)
	bareNumberRun = regexp.MustCompile(`[0-9][0-9,.]*`)
)

// tokenAlternation builds a capture group matching any known currency marker.
// Longer tokens come first so "QAR" is not eaten by a shorter alternative;
// letter-only tokens get word boundaries so codes inside words don't match.
func tokenAlternation() string {
	tokens := make([]string, 0, len(currencyTokens))
	for tok := range currencyTokens {
		tokens = append(tokens, tok)
	}
	sort.Slice(tokens, func(i, j int) bool {
		if len(tokens[i]) != len(tokens[j]) {
			return len(tokens[i]) > len(tokens[j])
		}
		return tokens[i] < tokens[j]
	})

	alts := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		quoted := regexp.QuoteMeta(tok)
		if isLetters(tok) {
			quoted = `\b` + quoted + `\b`
		}
		alts = append(alts, quoted)
	}
	return "(" + strings.Join(alts, "|") + ")"
}

func isLetters(s string) bool {
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return s != ""
}

// DetectCurrency parses free-form price text and returns the amount together
// with the detected currency code. When no currency marker is present the
// digits are parsed as a bare number in the reference currency. The boolean
// reports whether any positive amount was found at all.
func DetectCurrency(text string) (float64, string, bool) {
	if m := numThenToken.FindStringSubmatch(text); m != nil {
		if amount, ok := parseAmount(m[1]); ok {
			return amount, tokenCode(m[2]), true
		}
	}
	if m := tokenThenNum.FindStringSubmatch(text); m != nil {
		if amount, ok := parseAmount(m[2]); ok {
			return amount, tokenCode(m[1]), true
		}
	}

	// Bare-number fallback: strip everything that is not a digit or
	// separator and assume the reference currency.
	if m := bareNumberRun.FindString(text); m != "" {
		if amount, ok := parseAmount(m); ok {
			return amount, ReferenceCurrency, true
		}
	}
	return 0, ReferenceCurrency, false
}

// parseAmount strips thousands commas and parses the remainder. Comma is
// always a separator here, never a decimal point.
func parseAmount(s string) (float64, bool) {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.Trim(s, ".")
	amount, err := strconv.ParseFloat(s, 64)
	if err != nil || amount <= 0 {
		return 0, false
	}
	return amount, true
}

func tokenCode(tok string) string {
	if code, ok := currencyTokens[strings.ToUpper(tok)]; ok {
		return code
	}
	if code, ok := currencyTokens[tok]; ok {
		return code
	}
	return ReferenceCurrency
}

// defaultRates maps currency code → multiplier to QAR. Approximate and
// manually curated; config can override individual entries.
var defaultRates = map[string]float64{
	"QAR": 1.0,
	"USD": 3.64,
	"EUR": 3.95,
	"GBP": 4.60,
	"AED": 0.99,
	"SAR": 0.97,
	"KWD": 11.90,
	"EGP": 0.075,
	"TRY": 0.11,
	"PKR": 0.013,
	"INR": 0.044,
	"MYR": 0.78,
	"THB": 0.10,
}

// RateTable converts detected currencies to the reference currency.
type RateTable struct {
	rates map[string]float64
}

// NewRateTable returns the built-in table with the given overrides applied.
func NewRateTable(overrides map[string]float64) *RateTable {
	rates := make(map[string]float64, len(defaultRates))
	for code, rate := range defaultRates {
		rates[code] = rate
	}
	for code, rate := range overrides {
		if rate > 0 {
			rates[strings.ToUpper(code)] = rate
		}
	}
	return &RateTable{rates: rates}
}

// Rate returns the multiplier to the reference currency. Unknown codes get
// 1.0: the amount is assumed to already be in the reference currency.
func (t *RateTable) Rate(code string) float64 {
	if rate, ok := t.rates[strings.ToUpper(code)]; ok {
		return rate
	}
	return 1.0
}

// ToReference converts an amount in the given currency to a whole number of
// reference-currency units.
func (t *RateTable) ToReference(amount float64, code string) int {
	return int(math.Round(amount * t.Rate(code)))
}
