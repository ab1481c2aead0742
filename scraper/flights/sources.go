package flights

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"cpi-scraper/catalog"
	"cpi-scraper/models"
)

// defaultSelectors are tried in order on sites without a known result
// markup. Broad attribute matches first, bare class names last.
var defaultSelectors = []string{
	"[class*='price']",
	"[class*='fare']",
	"[data-testid*='price']",
	".price",
	".fare",
}

// navigator knows how to reach a source's result page for a route.
// Sources whose search cannot be driven by URL alone (form-only sites)
// return ok=false from SearchURL and are skipped.
type navigator interface {
	// SearchURL builds the round-trip economy search URL for one adult.
	SearchURL(route models.Route, dep, ret time.Time) (url string, ok bool)
	// Selectors returns the price selectors to try, in order.
	Selectors() []string
}

// navigators maps catalog source IDs to their navigator. The CPI source
// code cannot key this map: several aggregators share one code.
var navigators = map[string]navigator{
	catalog.SourceQatarAirways:   qatarAirways{},
	catalog.SourceBritishAirways: britishAirways{},
	catalog.SourceMalaysia:       formOnly{},
	catalog.SourceKuwaitAirways:  formOnly{},
	catalog.SourceTurkish:        formOnly{},
	catalog.SourcePIA:            formOnly{},
	catalog.SourceCheapAir:       cheapAir{},
	catalog.SourceEDreams:        eDreams{},
	catalog.SourceKayak:          kayak{},
	catalog.SourceITAMatrix:      itaMatrix{},
}

const isoDate = "2006-01-02"

// travelDates derives the departure and return dates: departure one month
// out, return after the route's stay duration.
func travelDates(route models.Route, now time.Time) (time.Time, time.Time) {
	months := route.DurationMonths
	if months <= 0 {
		months = 6
	}
	dep := now.AddDate(0, 0, 30)
	ret := dep.AddDate(0, 0, months*30)
	return dep, ret
}

type qatarAirways struct{}

func (qatarAirways) SearchURL(route models.Route, dep, ret time.Time) (string, bool) {
	url := fmt.Sprintf("https://www.qatarairways.com/app/booking/flight-selection?"+
		"widget=QR&searchType=F&addTaxToFare=Y&minPurTime=0&selLang=en&"+
		"tripType=R&fromStation=%s&toStation=%s&"+
		"departing=%s&returning=%s&bookingClass=E&"+
		"adults=1&children=0&infants=0&ofw=0&teenager=0&flexibleDate=off&allowRedemption=N",
		route.OriginCode, route.DestinationCode,
		dep.Format(isoDate), ret.Format(isoDate))
	return url, true
}

func (qatarAirways) Selectors() []string { return defaultSelectors }

type britishAirways struct{}

func (britishAirways) SearchURL(route models.Route, dep, ret time.Time) (string, bool) {
	url := fmt.Sprintf("https://www.britishairways.com/nx/b/airselect/en/usa/book/search?"+
		"trip=round&arrivalDate=%s&departureDate=%s&"+
		"from=%s&to=%s&"+
		"travelClass=economy&adults=1&youngAdults=0&children=0&infants=0&bound=outbound",
		ret.Format(isoDate), dep.Format(isoDate),
		route.OriginCode, route.DestinationCode)
	return url, true
}

func (britishAirways) Selectors() []string { return defaultSelectors }

type kayak struct{}

func (kayak) SearchURL(route models.Route, dep, ret time.Time) (string, bool) {
	url := fmt.Sprintf("https://www.kayak.ae/flights/%s-%s/%s/%s?ucs=bzx8kr&sort=bestflight_a",
		route.OriginCode, route.DestinationCode,
		dep.Format(isoDate), ret.Format(isoDate))
	return url, true
}

// KAYAK's result markup is better known, so its selector list is richer
// and more specific than the default.
func (kayak) Selectors() []string {
	return []string{
		"[data-test-id='price']",
		"[data-testid='price']",
		".price-text",
		".Flights-Price-FlightPrice",
		"[class*='price']",
		"[class*='Price']",
		".result-price",
		"[data-test-id='result-price']",
		"span[class*='price']",
		"div[class*='price']",
	}
}

type eDreams struct{}

func (eDreams) SearchURL(route models.Route, dep, ret time.Time) (string, bool) {
	// eDreams routes its result view through the URL hash.
	url := fmt.Sprintf("https://www.edreams.qa/travel/#results/"+
		"type=R;from=%s;to=%s;dep=%s;ret=%s;"+
		"buyPath=FLIGHTS_HOME_SEARCH_FORM;internalSearch=true",
		route.OriginCode, route.DestinationCode,
		dep.Format(isoDate), ret.Format(isoDate))
	return url, true
}

func (eDreams) Selectors() []string {
	return append(append([]string{}, defaultSelectors...), "[class*='Price']")
}

type cheapAir struct{}

func (cheapAir) SearchURL(route models.Route, dep, ret time.Time) (string, bool) {
	// The listing lives on cheapoair.com and wants US-style dates.
	const usDate = "01/02/2006"
	url := fmt.Sprintf("https://www.cheapoair.com/air/listing?"+
		"&d1=%s&r1=%s&dt1=%s&dtype1=A&rtype1=C&"+
		"d2=%s&r2=%s&dt2=%s&dtype2=C&rtype2=A&"+
		"tripType=ROUNDTRIP&cl=ECONOMY&ad=1&se=0&ch=0&infs=0&infl=0",
		route.OriginCode, route.DestinationCode, dep.Format(usDate),
		route.DestinationCode, route.OriginCode, ret.Format(usDate))
	return url, true
}

func (cheapAir) Selectors() []string { return defaultSelectors }

type itaMatrix struct{}

// matrixSearch mirrors the JSON payload ITA Matrix encodes into its
// search query parameter.
type matrixSearch struct {
	Type    string        `json:"type"`
	Slices  []matrixSlice `json:"slices"`
	Options matrixOptions `json:"options"`
	Pax     matrixPax     `json:"pax"`
}

type matrixOptions struct {
	Cabin               string `json:"cabin"`
	Stops               string `json:"stops"`
	ExtraStops          string `json:"extraStops"`
	AllowAirportChanges string `json:"allowAirportChanges"`
	ShowOnlyAvailable   string `json:"showOnlyAvailable"`
}

type matrixPax struct {
	Adults string `json:"adults"`
}

type matrixSlice struct {
	Origin []string    `json:"origin"`
	Dest   []string    `json:"dest"`
	Dates  matrixDates `json:"dates"`
}

type matrixDates struct {
	SearchDateType           string   `json:"searchDateType"`
	DepartureDate            string   `json:"departureDate"`
	DepartureDateType        string   `json:"departureDateType"`
	DepartureDateModifier    string   `json:"departureDateModifier"`
	DeparturePreferredTimes  []string `json:"departureDatePreferredTimes"`
	ReturnDate               string   `json:"returnDate"`
	ReturnDateType           string   `json:"returnDateType"`
	ReturnDateModifier       string   `json:"returnDateModifier"`
	ReturnDatePreferredTimes []string `json:"returnDatePreferredTimes"`
}

func (itaMatrix) SearchURL(route models.Route, dep, ret time.Time) (string, bool) {
	search := matrixSearch{
		Type: "round-trip",
		Slices: []matrixSlice{{
			Origin: []string{route.OriginCode},
			Dest:   []string{route.DestinationCode},
			Dates: matrixDates{
				SearchDateType:           "specific",
				DepartureDate:            dep.Format(isoDate),
				DepartureDateType:        "depart",
				DepartureDateModifier:    "0",
				DeparturePreferredTimes:  []string{},
				ReturnDate:               ret.Format(isoDate),
				ReturnDateType:           "depart",
				ReturnDateModifier:       "0",
				ReturnDatePreferredTimes: []string{},
			},
		}},
	}
	search.Options.Cabin = "COACH"
	search.Options.Stops = "-1"
	search.Options.ExtraStops = "1"
	search.Options.AllowAirportChanges = "true"
	search.Options.ShowOnlyAvailable = "true"
	search.Pax.Adults = "1"

	payload, err := json.Marshal(search)
	if err != nil {
		return "", false
	}
	encoded := base64.StdEncoding.EncodeToString(payload)
	return "https://matrix.itasoftware.com/flights?search=" + encoded, true
}

func (itaMatrix) Selectors() []string { return defaultSelectors }

// formOnly marks sources whose sites only expose a search form; those
// cannot be reached by URL and are skipped by the orchestrator.
type formOnly struct{}

func (formOnly) SearchURL(models.Route, time.Time, time.Time) (string, bool) { return "", false }

func (formOnly) Selectors() []string { return defaultSelectors }
