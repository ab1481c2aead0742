package hotels

import (
	"net/url"
	"testing"
	"time"

	"cpi-scraper/models"
)

func TestSearchURL(t *testing.T) {
	hotel := models.Hotel{NameAr: "فندق لي بارك", NameEn: "Le Park Hotel"}
	checkin := time.Date(2026, time.August, 5, 0, 0, 0, 0, time.UTC)
	checkout := time.Date(2026, time.August, 6, 0, 0, 0, 0, time.UTC)

	raw := searchURL(hotel, checkin, checkout)
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse URL: %v", err)
	}
	if u.Host != "www.booking.com" || u.Path != "/searchresults.html" {
		t.Errorf("endpoint = %s%s; want www.booking.com/searchresults.html", u.Host, u.Path)
	}

	q := u.Query()
	checks := map[string]string{
		"ss":                "Le Park Hotel Doha",
		"checkin":           "2026-08-05",
		"checkout":          "2026-08-06",
		"group_adults":      "2",
		"no_rooms":          "1",
		"group_children":    "0",
		"selected_currency": "QAR",
	}
	for key, want := range checks {
		if got := q.Get(key); got != want {
			t.Errorf("%s = %q; want %q", key, got, want)
		}
	}
}

func TestStayDates(t *testing.T) {
	now := time.Date(2026, time.August, 4, 9, 30, 0, 0, time.UTC)
	checkin, checkout := stayDates(now)

	if checkin.Format("2006-01-02") != "2026-08-05" {
		t.Errorf("checkin = %s; want 2026-08-05", checkin.Format("2006-01-02"))
	}
	if checkout.Format("2006-01-02") != "2026-08-06" {
		t.Errorf("checkout = %s; want 2026-08-06", checkout.Format("2006-01-02"))
	}
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		text  string
		want  float64
		found bool
	}{
		{"QAR 1,450", 1450, true},
		{"QAR 212.50", 212.50, true},
		{"ر.ق 950 per night", 950, true},
		{"From QAR 86 taxes included", 86, true},
		{"8.4 Very Good", 0, false}, // review score, under the floor
		{"4 stars", 0, false},
		{"Sold out", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, found := parseRate(tt.text)
		if got != tt.want || found != tt.found {
			t.Errorf("parseRate(%q) = (%v, %v); want (%v, %v)", tt.text, got, found, tt.want, tt.found)
		}
	}
}

func TestEveryHotelSearchIsDohaScoped(t *testing.T) {
	checkin := time.Date(2026, time.August, 5, 0, 0, 0, 0, time.UTC)
	checkout := checkin.AddDate(0, 0, 1)

	hotel := models.Hotel{NameAr: "Gulf Pearl Hotel Apartments", NameEn: "Gulf Pearl Hotel Apartments"}
	u, err := url.Parse(searchURL(hotel, checkin, checkout))
	if err != nil {
		t.Fatalf("parse URL: %v", err)
	}
	if got := u.Query().Get("ss"); got != "Gulf Pearl Hotel Apartments Doha" {
		t.Errorf("ss = %q; want the hotel name suffixed with Doha", got)
	}
}
