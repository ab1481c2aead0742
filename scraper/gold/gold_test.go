package gold

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"cpi-scraper/utils"
)

const goldPageHTML = `
<html><body>
<h1>أسعار الذهب في قطر</h1>
<table>
  <tr><th>النوع</th><th>ريال قطري</th><th>دولار</th></tr>
  <tr><td>جرام الذهب عيار 24</td><td>310.50</td><td>85.30</td></tr>
  <tr><td>جرام الذهب عيار 22</td><td>284.75</td><td>78.20</td></tr>
  <tr><td>جرام الذهب عيار 21</td><td>271.70</td><td>74.65</td></tr>
  <tr><td>جرام الذهب عيار 18</td><td>232.90</td><td>63.95</td></tr>
  <tr><td>جرام الذهب عيار 14</td><td>181.15</td><td>49.75</td></tr>
  <tr><td>أونصة الذهب</td><td>9,655.00</td><td>2,652.00</td></tr>
</table>
</body></html>`

func TestExtractFromTables(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(goldPageHTML))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	quotes := extractFromTables(doc)
	if len(quotes) != 5 {
		t.Fatalf("got %d quotes; want 5", len(quotes))
	}

	byKarat := make(map[int]float64)
	for _, q := range quotes {
		byKarat[q.Karat] = q.PriceQAR
		if q.Unit != "gram" {
			t.Errorf("karat %d unit = %q; want gram", q.Karat, q.Unit)
		}
	}

	tests := []struct {
		karat int
		want  float64
	}{
		{24, 310.50},
		{22, 284.75},
		{21, 271.70},
		{14, 181.15},
	}
	for _, tt := range tests {
		if got := byKarat[tt.karat]; got != tt.want {
			t.Errorf("karat %d QAR = %v; want %v", tt.karat, got, tt.want)
		}
	}

	for _, q := range quotes {
		if q.Karat == 24 && q.PriceUSD != 85.30 {
			t.Errorf("24k USD = %v; want 85.30", q.PriceUSD)
		}
	}
}

func TestExtractFromText(t *testing.T) {
	text := `سعر جرام الذهب عيار 24 اليوم 310.50 ريال قطري (85.30 دولار)
	سعر جرام الذهب عيار 21 اليوم 271.70 ريال قطري (74.65 دولار)
	عيار 10 99.10 27.20`

	quotes := extractFromText(text)
	if len(quotes) != 2 {
		t.Fatalf("got %d quotes; want 2 (karat 10 is not tracked)", len(quotes))
	}
	if quotes[0].Karat != 24 || quotes[0].PriceQAR != 310.50 || quotes[0].PriceUSD != 85.30 {
		t.Errorf("first quote = %+v", quotes[0])
	}
}

func TestScrapeAgainstServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(goldPageHTML))
	}))
	defer srv.Close()

	s := New(utils.NewLogger())
	s.url = srv.URL

	result, err := s.Scrape()
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if len(result.Quotes) != 5 {
		t.Errorf("got %d quotes; want 5", len(result.Quotes))
	}
	if result.Source != srv.URL {
		t.Errorf("source = %q; want server URL", result.Source)
	}
}

func TestScrapeBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := New(utils.NewLogger())
	s.url = srv.URL

	if _, err := s.Scrape(); err == nil {
		t.Error("Scrape should fail on a non-200 response")
	}
}

func TestMatchKarat(t *testing.T) {
	tests := []struct {
		row    string
		karat  int
		wantOK bool
	}{
		{"جرام الذهب عيار 24 310.50 85.30", 24, true},
		{"عيار 18 232.90", 18, true},
		{"أونصة الذهب 9655.00 2652.00", 0, false},
		{"جنيه الذهب 3650.75", 0, false},
	}

	for _, tt := range tests {
		karat, ok := matchKarat(tt.row)
		if ok != tt.wantOK || (ok && karat != tt.karat) {
			t.Errorf("matchKarat(%q) = %d/%v; want %d/%v", tt.row, karat, ok, tt.karat, tt.wantOK)
		}
	}
}
