// Package hotels collects nightly rates for the tracked Doha hotel basket
// from booking.com.
package hotels

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"cpi-scraper/config"
	"cpi-scraper/models"
	"cpi-scraper/scraper/browser"
	"cpi-scraper/storage"
	"cpi-scraper/utils"
)

const (
	sourceName = "booking.com"
	location   = "Doha, Qatar"
	searchBase = "https://www.booking.com/searchresults.html"

	// Prices below this are star ratings, review scores and other
	// number-bearing noise, never a nightly rate.
	minNightlyRate = 50
)

// priceReadyExpr is polled after navigation until a rate element renders.
const priceReadyExpr = `document.querySelector("span[data-testid='price-and-discounted-price'], [data-testid='price'], .bui-price-display__value, .prco-valign-middle-helper") !== null`

// priceSelectors are tried in order on each result page; booking.com has
// shipped several generations of price markup and old ones still appear.
var priceSelectors = []string{
	"span[data-testid='price-and-discounted-price']",
	".bui-price-display__value",
	".prco-valign-middle-helper",
	".bui-price-display",
	"[data-testid='price']",
	".hprt-price-price",
}

// nameSelectors locate the property name the site actually matched, kept on
// the quote for cross-checking the search result.
var nameSelectors = []string{
	"[data-testid='title']",
	"h2.pc-header__title",
	".hp__hotel-name",
	"[data-testid='hotel-name']",
}

var rateDigits = regexp.MustCompile(`[0-9][0-9.,]*`)

// Scraper drives one full hotel-rate collection run, one property at a time
// through a single browser session.
type Scraper struct {
	cfg    *config.Config
	logger *utils.Logger
	hotels []models.Hotel
	book   *storage.HotelWorkbook
}

// New creates a ready-to-use hotel Scraper. book may be nil to skip workbook
// persistence.
func New(cfg *config.Config, logger *utils.Logger, hotels []models.Hotel,
	book *storage.HotelWorkbook) *Scraper {
	return &Scraper{cfg: cfg, logger: logger, hotels: hotels, book: book}
}

// Run executes the full run: a one-night stay starting tomorrow, priced for
// every hotel in the basket. Per-hotel failures are logged and skipped; only
// a browser-session fault or context cancellation aborts the run.
func (s *Scraper) Run(ctx context.Context) (*models.HotelResult, error) {
	s.logger.Info("[hotels] Starting run — %d hotels", len(s.hotels))

	session, err := browser.NewSession(s.cfg, s.logger)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	runDate := time.Now()
	checkin, checkout := stayDates(runDate)
	s.logger.Info("[hotels] Stay: %s to %s", checkin.Format("2006-01-02"), checkout.Format("2006-01-02"))

	result := &models.HotelResult{Timestamp: runDate, Source: sourceName, Location: location}
	delay := time.Duration(s.cfg.RequestDelayMs) * time.Millisecond

	for _, hotel := range s.hotels {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		quote, found := s.scrapeHotel(session, ctx, hotel, checkin, checkout)
		if found {
			result.Quotes = append(result.Quotes, quote)
		}
		time.Sleep(delay)
	}

	s.logger.Info("[hotels] Run complete — %d/%d hotels priced", len(result.Quotes), len(s.hotels))

	if s.book != nil && len(result.Quotes) > 0 {
		if err := s.book.Write(s.hotels, *result); err != nil {
			s.logger.Error("[hotels] Workbook write failed: %v", err)
		}
	}
	return result, nil
}

func (s *Scraper) scrapeHotel(sess *browser.Session, ctx context.Context,
	hotel models.Hotel, checkin, checkout time.Time) (models.HotelQuote, bool) {

	s.logger.Info("[hotels] Scraping %s", hotel.NameEn)

	page, err := sess.Open(ctx, searchURL(hotel, checkin, checkout), priceReadyExpr)
	if err != nil {
		s.logger.Error("[hotels] %s: %v", hotel.NameEn, err)
		return models.HotelQuote{}, false
	}
	defer page.Close()

	price, ok := s.extractPrice(page)
	if !ok {
		s.logger.Warn("[hotels] %s: no plausible rate on page", hotel.NameEn)
		return models.HotelQuote{}, false
	}

	listed := s.listedName(page)
	s.logger.Info("[hotels] %s: %.2f QAR", hotel.NameEn, price)
	return models.HotelQuote{
		HotelAr:    hotel.NameAr,
		HotelEn:    hotel.NameEn,
		ListedName: listed,
		PriceQAR:   price,
		Timestamp:  time.Now(),
	}, true
}

// extractPrice scans the price selectors in order and takes the first text
// that parses to a plausible nightly rate.
func (s *Scraper) extractPrice(page *browser.Page) (float64, bool) {
	for _, selector := range priceSelectors {
		texts, err := page.Texts(selector, 5)
		if err != nil {
			s.logger.Debug("[hotels] Selector %q failed: %v", selector, err)
			continue
		}
		for _, text := range texts {
			if price, ok := parseRate(text); ok {
				return price, true
			}
		}
	}
	return 0, false
}

func (s *Scraper) listedName(page *browser.Page) string {
	for _, selector := range nameSelectors {
		texts, err := page.Texts(selector, 1)
		if err == nil && len(texts) > 0 && texts[0] != "" {
			return texts[0]
		}
	}
	return ""
}

// parseRate pulls the first number out of a price element's text. Rates
// below the sanity floor are rejected.
func parseRate(text string) (float64, bool) {
	match := rateDigits.FindString(text)
	if match == "" {
		return 0, false
	}
	price, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil || price < minNightlyRate {
		return 0, false
	}
	return price, true
}

// stayDates returns the priced stay: check in tomorrow, check out the day
// after, one night.
func stayDates(now time.Time) (time.Time, time.Time) {
	checkin := now.AddDate(0, 0, 1)
	return checkin, checkin.AddDate(0, 0, 1)
}

// searchURL builds the booking.com results URL for a one-night stay at the
// hotel, scoped to Doha so name collisions elsewhere do not surface.
func searchURL(hotel models.Hotel, checkin, checkout time.Time) string {
	q := url.Values{}
	q.Set("ss", hotel.NameEn+" Doha")
	q.Set("checkin", checkin.Format("2006-01-02"))
	q.Set("checkout", checkout.Format("2006-01-02"))
	q.Set("group_adults", "2")
	q.Set("no_rooms", "1")
	q.Set("group_children", "0")
	q.Set("selected_currency", "QAR")
	return fmt.Sprintf("%s?%s", searchBase, q.Encode())
}
