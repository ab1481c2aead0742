package services

import (
	"testing"

	"cpi-scraper/models"
)

var (
	londonRoute = models.Route{Code: "007331101", OriginCode: "DOH", DestinationCode: "LHR", DurationMonths: 6}
	dubaiRoute  = models.Route{Code: "007331104", OriginCode: "DOH", DestinationCode: "DXB", DurationMonths: 6}
)

func TestFilterInRange(t *testing.T) {
	f := NewPlausibilityFilter()

	tests := []struct {
		route  models.Route
		amount int
		want   bool
	}{
		// Long-haul window is 1200–25000.
		{londonRoute, 1200, true},
		{londonRoute, 25000, true},
		{londonRoute, 1199, false},
		{londonRoute, 25001, false},
		// 350 reads like a baggage fee, not a DOH-LHR return.
		{londonRoute, 350, false},
		// Short-haul window is 400–9000.
		{dubaiRoute, 400, true},
		{dubaiRoute, 9000, true},
		{dubaiRoute, 399, false},
		{dubaiRoute, 12000, false},
	}

	for _, tt := range tests {
		got := f.InRange(tt.route, tt.amount)
		if got != tt.want {
			t.Errorf("InRange(%s, %d) = %v; want %v",
				tt.route.DestinationCode, tt.amount, got, tt.want)
		}
	}
}

func TestFilterIsLongHaul(t *testing.T) {
	f := NewPlausibilityFilter()

	if !f.IsLongHaul(londonRoute) {
		t.Error("LHR should be long-haul")
	}
	if f.IsLongHaul(dubaiRoute) {
		t.Error("DXB should be short-haul")
	}
	// Case-insensitive on the IATA code.
	if !f.IsLongHaul(models.Route{DestinationCode: "jfk"}) {
		t.Error("jfk should be long-haul regardless of case")
	}
}

func TestFilterRejectsOneWay(t *testing.T) {
	f := NewPlausibilityFilter()

	tests := []struct {
		text string
		want bool
	}{
		{"QAR 2,500 one way", false},
		{"QAR 2,500 one-way", false},
		{"QAR 2,500 ذهاب فقط", false},
		{"QAR 2,500 round trip", true},
		{"QAR 2,500", true},
	}

	for _, tt := range tests {
		_, ok := f.Check(londonRoute, 2500, "QAR", tt.text)
		if ok != tt.want {
			t.Errorf("Check(%q) accepted = %v; want %v", tt.text, ok, tt.want)
		}
	}
}

func TestFareTypeKeywords(t *testing.T) {
	if !IsRoundTrip("£350 total") {
		t.Error(`"total" should mark a round-trip fare`)
	}
	if !IsRoundTrip("Return from QAR 1,850") {
		t.Error(`"return" should mark a round-trip fare`)
	}
	if !IsOneWay("ONEWAY special") {
		t.Error("keyword match should be case-insensitive")
	}
	if IsRoundTrip("QAR 1,850") {
		t.Error("unlabeled text should not be marked round-trip")
	}
}

func TestResolvePrefersRoundTrip(t *testing.T) {
	candidates := []Candidate{
		{Amount: 1500, Text: "QAR 1,500"},
		{Amount: 2100, Text: "QAR 2,100 round trip", RoundTrip: true},
		{Amount: 1800, Text: "QAR 1,800"},
	}

	best, ok := Resolve(candidates)
	if !ok {
		t.Fatal("Resolve returned no winner")
	}
	if best.Amount != 2100 {
		t.Errorf("winner = %d; want labeled round-trip 2100 over cheaper unlabeled", best.Amount)
	}
}

func TestResolveTieGoesToLowest(t *testing.T) {
	candidates := []Candidate{
		{Amount: 2100, RoundTrip: true},
		{Amount: 1900, RoundTrip: true},
		{Amount: 2500, RoundTrip: true},
	}

	best, _ := Resolve(candidates)
	if best.Amount != 1900 {
		t.Errorf("winner = %d; want lowest 1900", best.Amount)
	}

	unlabeled := []Candidate{{Amount: 3000}, {Amount: 1400}}
	best, _ = Resolve(unlabeled)
	if best.Amount != 1400 {
		t.Errorf("winner = %d; want lowest 1400", best.Amount)
	}
}

func TestResolveEmpty(t *testing.T) {
	if _, ok := Resolve(nil); ok {
		t.Error("Resolve(nil) should report no winner")
	}
}
