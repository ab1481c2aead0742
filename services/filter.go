package services

import (
	"strings"

	"cpi-scraper/models"
)

// Candidate is one in-range price extracted from page text, kept with the
// text it came from so fare-type labeling can break ties.
type Candidate struct {
	Amount    int
	Currency  string
	Text      string
	RoundTrip bool
}

// Bounds is an inclusive reference-currency price window.
type Bounds struct {
	Min int
	Max int
}

// longHaulDestinations classifies routes by destination IATA code. Everything
// else is treated as short-haul.
var longHaulDestinations = map[string]bool{
	"LHR": true,
	"JFK": true,
	"KUL": true,
	"BKK": true,
	"BOM": true,
}

var oneWayKeywords = []string{
	"one way", "one-way", "oneway", "ذهاب فقط",
}

var roundTripKeywords = []string{
	"round trip", "round-trip", "roundtrip", "return", "total", "ذهاب وعودة",
}

// PlausibilityFilter rejects amounts that cannot be a round-trip economy fare
// for the route: wrong-currency reads, one-way fares, baggage fees, page
// numbers and multi-passenger sums all fall outside the per-class windows.
type PlausibilityFilter struct {
	longHaul  Bounds
	shortHaul Bounds
}

// NewPlausibilityFilter returns a filter with the stock fare windows.
func NewPlausibilityFilter() *PlausibilityFilter {
	return &PlausibilityFilter{
		longHaul:  Bounds{Min: 1200, Max: 25000},
		shortHaul: Bounds{Min: 400, Max: 9000},
	}
}

// IsLongHaul reports whether the route's destination is in the long-haul set.
func (f *PlausibilityFilter) IsLongHaul(route models.Route) bool {
	return longHaulDestinations[strings.ToUpper(route.DestinationCode)]
}

// RouteBounds returns the fare window for the route's distance class.
func (f *PlausibilityFilter) RouteBounds(route models.Route) Bounds {
	if f.IsLongHaul(route) {
		return f.longHaul
	}
	return f.shortHaul
}

// InRange reports whether the converted amount is plausible for the route.
func (f *PlausibilityFilter) InRange(route models.Route, amount int) bool {
	b := f.RouteBounds(route)
	return amount >= b.Min && amount <= b.Max
}

// IsOneWay reports whether the source text carries a one-way fare marker.
// Such candidates are rejected outright.
func IsOneWay(text string) bool {
	return containsAny(text, oneWayKeywords)
}

// IsRoundTrip reports whether the source text carries a round-trip marker.
// Labeled candidates are preferred, not required.
func IsRoundTrip(text string) bool {
	return containsAny(text, roundTripKeywords)
}

func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Check runs the full per-candidate policy: one-way texts are rejected, then
// the converted amount must sit inside the route's fare window. The returned
// candidate carries the round-trip label for later resolution.
func (f *PlausibilityFilter) Check(route models.Route, amount int, currency, text string) (Candidate, bool) {
	if IsOneWay(text) {
		return Candidate{}, false
	}
	if !f.InRange(route, amount) {
		return Candidate{}, false
	}
	return Candidate{
		Amount:    amount,
		Currency:  currency,
		Text:      text,
		RoundTrip: IsRoundTrip(text),
	}, true
}

// Resolve picks the winning candidate: labeled round-trip candidates beat
// unlabeled ones, ties go to the lowest amount (cheapest valid fare).
func Resolve(candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		switch {
		case c.RoundTrip && !best.RoundTrip:
			best = c
		case c.RoundTrip == best.RoundTrip && c.Amount < best.Amount:
			best = c
		}
	}
	return best, true
}
