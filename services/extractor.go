package services

import (
	"regexp"
	"strings"

	"cpi-scraper/models"
	"cpi-scraper/utils"
)

// Page is the rendered-page handle the extractor reads from. The browser
// layer substitutes the parent element's text whenever a matched element's
// own text contains no digits.
type Page interface {
	// Texts returns the text of up to max elements matching the selector.
	Texts(selector string, max int) ([]string, error)
	// Markup returns the raw page markup for the fallback scan.
	Markup() (string, error)
}

const maxElementsPerSelector = 10

// markupPricePatterns are tried against the raw page markup when no selector
// yields a candidate. Each pattern's first group is a currency-tagged amount.
var markupPricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`QAR\s*([0-9]{1,3}(?:,[0-9]{3})*)`),
	regexp.MustCompile(`ر\.ق\s*([0-9]{1,3}(?:,[0-9]{3})*)`),
	regexp.MustCompile(`([0-9]{1,3}(?:,[0-9]{3})+(?:\.[0-9]{2})?)`),
	regexp.MustCompile(`\b([0-9]{3,6})\b`),
}

const maxMarkupMatchesPerPattern = 20

// Extractor combines currency detection, conversion and plausibility
// filtering to pick the best price off a rendered page.
type Extractor struct {
	rates  *RateTable
	filter *PlausibilityFilter
	logger *utils.Logger
}

// NewExtractor creates an Extractor using the given rate table.
func NewExtractor(rates *RateTable, logger *utils.Logger) *Extractor {
	return &Extractor{
		rates:  rates,
		filter: NewPlausibilityFilter(),
		logger: logger,
	}
}

// Filter exposes the plausibility filter, for callers that classify routes.
func (e *Extractor) Filter() *PlausibilityFilter { return e.filter }

// Extract applies the selectors in order against the page and returns the
// best candidate's reference-currency price. Selector scanning stops at the
// first selector that produces at least one in-range candidate. When no
// selector matches, the raw markup is scanned for currency-tagged numbers and
// the lowest in-range value wins. A missing price is reported via the bool,
// not an error; the error is reserved for page-handle faults.
func (e *Extractor) Extract(page Page, route models.Route, selectors []string) (int, bool, error) {
	for _, selector := range selectors {
		texts, err := page.Texts(selector, maxElementsPerSelector)
		if err != nil {
			return 0, false, err
		}

		var candidates []Candidate
		for _, text := range texts {
			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}
			amount, currency, ok := DetectCurrency(text)
			if !ok {
				continue
			}
			converted := e.rates.ToReference(amount, currency)
			if c, ok := e.filter.Check(route, converted, currency, text); ok {
				candidates = append(candidates, c)
			}
		}

		if len(candidates) > 0 {
			best, _ := Resolve(candidates)
			e.logger.Debug("[extract] %s→%s: %d %s via selector %q",
				route.OriginCode, route.DestinationCode, best.Amount, ReferenceCurrency, truncateSelector(selector))
			return best.Amount, true, nil
		}
	}

	return e.extractFromMarkup(page, route)
}

// extractFromMarkup is the last-resort scan over raw page markup.
func (e *Extractor) extractFromMarkup(page Page, route models.Route) (int, bool, error) {
	markup, err := page.Markup()
	if err != nil {
		return 0, false, err
	}

	for _, pattern := range markupPricePatterns {
		matches := pattern.FindAllStringSubmatch(markup, maxMarkupMatchesPerPattern)
		lowest, found := 0, false
		for _, m := range matches {
			amount, currency, ok := DetectCurrency(m[1])
			if !ok {
				continue
			}
			converted := e.rates.ToReference(amount, currency)
			if !e.filter.InRange(route, converted) {
				continue
			}
			if !found || converted < lowest {
				lowest, found = converted, true
			}
		}
		if found {
			e.logger.Debug("[extract] %s→%s: %d %s from page markup",
				route.OriginCode, route.DestinationCode, lowest, ReferenceCurrency)
			return lowest, true, nil
		}
	}
	return 0, false, nil
}

func truncateSelector(s string) string {
	if len(s) <= 50 {
		return s
	}
	return s[:47] + "..."
}
