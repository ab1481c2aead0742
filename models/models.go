package models

import "time"

// Route is one origin/destination/duration commodity definition tracked over
// time. Identity is the Code; routes are immutable during a run.
type Route struct {
	Code            string `json:"code"`
	Origin          string `json:"origin"`
	OriginCode      string `json:"origin_code"`
	Destination     string `json:"destination"`
	DestinationCode string `json:"destination_code"`
	CommodityAr     string `json:"commodity_ar"`
	DurationMonths  int    `json:"duration_months"`
}

// SourceKind distinguishes carrier sites from travel aggregators.
type SourceKind string

const (
	KindAirline    SourceKind = "airline"
	KindAggregator SourceKind = "aggregator"
)

// Source is a carrier or aggregator website queried for a price.
// ID is the stable identifier used to select the per-source scraper;
// SourceCode is the CPI source code and is NOT unique across sources.
type Source struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	NameAr     string     `json:"name_ar"`
	SourceCode string     `json:"source_code"`
	Kind       SourceKind `json:"type"`
}

// PriceObservation is one successfully extracted fare, already converted to
// the reference currency and rounded. Created once, never mutated.
type PriceObservation struct {
	RouteCode  string    `json:"route_code"`
	Source     string    `json:"source"`
	SourceAr   string    `json:"source_ar"`
	SourceCode string    `json:"source_code"`
	Airline    string    `json:"airline"`
	Price      int       `json:"price"`
	Currency   string    `json:"currency"`
	Timestamp  time.Time `json:"timestamp"`
}

// RouteResult pairs a route with the observations collected for it.
type RouteResult struct {
	Route  Route              `json:"route"`
	Prices []PriceObservation `json:"prices"`
}

// RunResult is one full scrape run, built fresh each run and serialized to
// the JSON snapshot before being merged into the workbook.
type RunResult struct {
	Timestamp time.Time     `json:"timestamp"`
	Routes    []RouteResult `json:"routes"`
}

// TotalObservations counts observations across all routes.
func (r *RunResult) TotalObservations() int {
	n := 0
	for _, rr := range r.Routes {
		n += len(rr.Prices)
	}
	return n
}

// Hotel is one tracked property. The Arabic name is the CPI label and the
// row identity in the workbook; the English name drives the site search.
type Hotel struct {
	NameAr string `json:"name_ar"`
	NameEn string `json:"name_en"`
}

// HotelQuote is one nightly rate found for a hotel. ListedName is the
// property name as the booking site displayed it, kept for cross-checking
// that the search landed on the right hotel.
type HotelQuote struct {
	HotelAr    string    `json:"hotel_ar"`
	HotelEn    string    `json:"hotel_en"`
	ListedName string    `json:"listed_name,omitempty"`
	PriceQAR   float64   `json:"price_qar"`
	Timestamp  time.Time `json:"timestamp"`
}

// HotelResult is one hotel scrape run.
type HotelResult struct {
	Timestamp time.Time    `json:"timestamp"`
	Source    string       `json:"source"`
	Location  string       `json:"location"`
	Quotes    []HotelQuote `json:"quotes"`
}

// GoldQuote is one karat's per-gram price from the gold price page.
type GoldQuote struct {
	Karat    int     `json:"karat"`
	PriceQAR float64 `json:"price_qar"`
	PriceUSD float64 `json:"price_usd,omitempty"`
	Unit     string  `json:"unit"`
}

// GoldResult is one gold scrape run.
type GoldResult struct {
	Timestamp time.Time   `json:"timestamp"`
	Source    string      `json:"source"`
	Quotes    []GoldQuote `json:"quotes"`
}
