package flights

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strings"
	"testing"
	"time"

	"cpi-scraper/catalog"
	"cpi-scraper/models"
)

var testRoute = models.Route{
	Code: "007331101", Origin: "Doha", OriginCode: "DOH",
	Destination: "London", DestinationCode: "LHR", DurationMonths: 6,
}

var (
	testDep = time.Date(2026, time.September, 25, 0, 0, 0, 0, time.UTC)
	testRet = time.Date(2027, time.March, 24, 0, 0, 0, 0, time.UTC)
)

func TestTravelDates(t *testing.T) {
	now := time.Date(2026, time.August, 26, 9, 0, 0, 0, time.UTC)

	dep, ret := travelDates(testRoute, now)
	if got := now.AddDate(0, 0, 30); !dep.Equal(got) {
		t.Errorf("departure = %v; want 30 days out (%v)", dep, got)
	}
	if got := dep.AddDate(0, 0, 180); !ret.Equal(got) {
		t.Errorf("return = %v; want 6×30 days after departure (%v)", ret, got)
	}

	// Missing duration falls back to six months.
	_, ret = travelDates(models.Route{OriginCode: "DOH", DestinationCode: "CAI"}, now)
	if got := now.AddDate(0, 0, 30+180); !ret.Equal(got) {
		t.Errorf("default-duration return = %v; want %v", ret, got)
	}
}

func TestEverySourceHasANavigator(t *testing.T) {
	for _, source := range catalog.DefaultSources() {
		if _, ok := navigators[source.ID]; !ok {
			t.Errorf("source %q has no navigator", source.ID)
		}
	}
}

func TestQatarAirwaysSearchURL(t *testing.T) {
	raw, ok := qatarAirways{}.SearchURL(testRoute, testDep, testRet)
	if !ok {
		t.Fatal("expected a search URL")
	}

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse URL: %v", err)
	}
	q := u.Query()

	checks := map[string]string{
		"fromStation":  "DOH",
		"toStation":    "LHR",
		"departing":    "2026-09-25",
		"returning":    "2027-03-24",
		"tripType":     "R",
		"bookingClass": "E",
		"adults":       "1",
	}
	for key, want := range checks {
		if got := q.Get(key); got != want {
			t.Errorf("%s = %q; want %q", key, got, want)
		}
	}
}

func TestBritishAirwaysSearchURL(t *testing.T) {
	raw, ok := britishAirways{}.SearchURL(testRoute, testDep, testRet)
	if !ok {
		t.Fatal("expected a search URL")
	}

	u, _ := url.Parse(raw)
	q := u.Query()
	if q.Get("trip") != "round" || q.Get("travelClass") != "economy" {
		t.Errorf("trip=%q travelClass=%q; want round/economy", q.Get("trip"), q.Get("travelClass"))
	}
	if q.Get("departureDate") != "2026-09-25" || q.Get("arrivalDate") != "2027-03-24" {
		t.Errorf("dates = %q / %q", q.Get("departureDate"), q.Get("arrivalDate"))
	}
}

func TestKayakSearchURL(t *testing.T) {
	raw, ok := kayak{}.SearchURL(testRoute, testDep, testRet)
	if !ok {
		t.Fatal("expected a search URL")
	}
	want := "https://www.kayak.ae/flights/DOH-LHR/2026-09-25/2027-03-24?ucs=bzx8kr&sort=bestflight_a"
	if raw != want {
		t.Errorf("URL = %q; want %q", raw, want)
	}
}

func TestEDreamsSearchURL(t *testing.T) {
	raw, ok := eDreams{}.SearchURL(testRoute, testDep, testRet)
	if !ok {
		t.Fatal("expected a search URL")
	}
	// Parameters ride in the hash fragment, not the query string.
	for _, part := range []string{"#results/", "from=DOH", "to=LHR", "dep=2026-09-25", "ret=2027-03-24", "type=R"} {
		if !strings.Contains(raw, part) {
			t.Errorf("URL %q missing %q", raw, part)
		}
	}
}

func TestCheapAirSearchURLUsesUSDates(t *testing.T) {
	raw, ok := cheapAir{}.SearchURL(testRoute, testDep, testRet)
	if !ok {
		t.Fatal("expected a search URL")
	}
	if !strings.Contains(raw, "dt1=09/25/2026") || !strings.Contains(raw, "dt2=03/24/2027") {
		t.Errorf("URL %q does not carry MM/DD/YYYY dates", raw)
	}
	// Return leg swaps the airports.
	if !strings.Contains(raw, "d1=DOH&r1=LHR") || !strings.Contains(raw, "d2=LHR&r2=DOH") {
		t.Errorf("URL %q legs are wrong", raw)
	}
}

func TestITAMatrixSearchURLEncodesPayload(t *testing.T) {
	raw, ok := itaMatrix{}.SearchURL(testRoute, testDep, testRet)
	if !ok {
		t.Fatal("expected a search URL")
	}

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse URL: %v", err)
	}
	payload, err := base64.StdEncoding.DecodeString(u.Query().Get("search"))
	if err != nil {
		t.Fatalf("decode search payload: %v", err)
	}

	var search matrixSearch
	if err := json.Unmarshal(payload, &search); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if search.Type != "round-trip" || len(search.Slices) != 1 {
		t.Fatalf("payload = %+v", search)
	}
	slice := search.Slices[0]
	if slice.Origin[0] != "DOH" || slice.Dest[0] != "LHR" {
		t.Errorf("slice airports = %v → %v", slice.Origin, slice.Dest)
	}
	if slice.Dates.DepartureDate != "2026-09-25" || slice.Dates.ReturnDate != "2027-03-24" {
		t.Errorf("slice dates = %q / %q", slice.Dates.DepartureDate, slice.Dates.ReturnDate)
	}
	if search.Options.Cabin != "COACH" || search.Pax.Adults != "1" {
		t.Errorf("options = %+v pax = %+v", search.Options, search.Pax)
	}
}

func TestFormOnlySourcesAreSkipped(t *testing.T) {
	for _, id := range []string{
		catalog.SourceMalaysia, catalog.SourceKuwaitAirways,
		catalog.SourceTurkish, catalog.SourcePIA,
	} {
		nav := navigators[id]
		if _, ok := nav.SearchURL(testRoute, testDep, testRet); ok {
			t.Errorf("%s should report no automatable search", id)
		}
	}
}

func TestAirlineFor(t *testing.T) {
	airline := models.Source{ID: "x", Name: "Qatar Airways", Kind: models.KindAirline}
	aggregator := models.Source{ID: "y", Name: "KAYAK", Kind: models.KindAggregator}

	if got := airlineFor(airline); got != "Qatar Airways" {
		t.Errorf("airlineFor(airline) = %q", got)
	}
	if got := airlineFor(aggregator); got != airlineVarious {
		t.Errorf("airlineFor(aggregator) = %q; want %q", got, airlineVarious)
	}
}
