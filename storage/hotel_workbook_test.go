package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"cpi-scraper/catalog"
	"cpi-scraper/models"
	"cpi-scraper/utils"
)

var testHotels = []models.Hotel{
	{NameAr: "فندق فور سيزونز الدوحة", NameEn: "Four Seasons Hotel Doha"},
	{NameAr: "فندق جراند حياة الدوحة", NameEn: "Grand Hyatt Doha"},
	{NameAr: "فندق لي بارك", NameEn: "Le Park Hotel"},
}

func testHotelResult(ts time.Time) models.HotelResult {
	return models.HotelResult{
		Timestamp: ts,
		Source:    "booking.com",
		Location:  "Doha, Qatar",
		Quotes: []models.HotelQuote{
			{HotelAr: testHotels[0].NameAr, HotelEn: testHotels[0].NameEn, PriceQAR: 1450.00, Timestamp: ts},
			{HotelAr: testHotels[2].NameAr, HotelEn: testHotels[2].NameEn, PriceQAR: 212.50, Timestamp: ts},
		},
	}
}

func TestHotelWorkbookWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hotel_prices.xlsx")
	h := NewHotelWorkbook(path, utils.NewLogger())

	// 2026-08-04 is a Tuesday; its week starts Monday 2026-08-03.
	ts := time.Date(2026, time.August, 4, 12, 0, 0, 0, time.UTC)
	if err := h.Write(testHotels, testHotelResult(ts)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	if got, _ := f.GetCellValue(catalog.HotelSheetName, "B1"); got != "أسبوع 2026-08-03" {
		t.Errorf("B1 week label = %q; want أسبوع 2026-08-03", got)
	}
	if got, _ := f.GetCellValue(catalog.HotelSheetName, "B2"); got != "2026-08-04" {
		t.Errorf("B2 date = %q; want 2026-08-04", got)
	}
	if got, _ := f.GetCellValue(catalog.HotelSheetName, "A2"); got != "الفندق" {
		t.Errorf("A2 corner = %q", got)
	}

	// The full basket is labeled even when only some hotels priced.
	for i, hotel := range testHotels {
		got, _ := f.GetCellValue(catalog.HotelSheetName, cellName(t, hotelNameCol, hotelFirstRow+i))
		if got != hotel.NameAr {
			t.Errorf("row %d label = %q; want %q", hotelFirstRow+i, got, hotel.NameAr)
		}
	}

	raw := excelize.Options{RawCellValue: true}
	if got, _ := f.GetCellValue(catalog.HotelSheetName, "B3", raw); got != "1450" {
		t.Errorf("B3 price = %q; want 1450", got)
	}
	if got, _ := f.GetCellValue(catalog.HotelSheetName, "B4", raw); got != "" {
		t.Errorf("B4 = %q; want empty (hotel not priced)", got)
	}
	if got, _ := f.GetCellValue(catalog.HotelSheetName, "B5", raw); got != "212.5" {
		t.Errorf("B5 price = %q; want 212.5", got)
	}
}

func TestHotelWorkbookUpdatesSameDayInPlace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hotel_prices.xlsx")
	h := NewHotelWorkbook(path, utils.NewLogger())
	ts := time.Date(2026, time.August, 4, 12, 0, 0, 0, time.UTC)

	if err := h.Write(testHotels, testHotelResult(ts)); err != nil {
		t.Fatalf("first write: %v", err)
	}

	rerun := testHotelResult(ts.Add(3 * time.Hour))
	rerun.Quotes[0].PriceQAR = 1500.00
	if err := h.Write(testHotels, rerun); err != nil {
		t.Fatalf("second write: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	raw := excelize.Options{RawCellValue: true}
	if got, _ := f.GetCellValue(catalog.HotelSheetName, "B3", raw); got != "1500" {
		t.Errorf("B3 price = %q; want 1500", got)
	}
	if got, _ := f.GetCellValue(catalog.HotelSheetName, "C2"); got != "" {
		t.Errorf("C2 = %q; want empty (same day reuses its column)", got)
	}
}

func TestHotelWorkbookAppendsNewDayColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hotel_prices.xlsx")
	h := NewHotelWorkbook(path, utils.NewLogger())
	ts := time.Date(2026, time.August, 4, 12, 0, 0, 0, time.UTC)

	if err := h.Write(testHotels, testHotelResult(ts)); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := h.Write(testHotels, testHotelResult(ts.AddDate(0, 0, 7))); err != nil {
		t.Fatalf("second write: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	if got, _ := f.GetCellValue(catalog.HotelSheetName, "C1"); got != "أسبوع 2026-08-10" {
		t.Errorf("C1 week label = %q; want أسبوع 2026-08-10", got)
	}
	if got, _ := f.GetCellValue(catalog.HotelSheetName, "C2"); got != "2026-08-11" {
		t.Errorf("C2 date = %q; want 2026-08-11", got)
	}
	raw := excelize.Options{RawCellValue: true}
	if got, _ := f.GetCellValue(catalog.HotelSheetName, "C3", raw); got != "1450" {
		t.Errorf("C3 price = %q; want 1450", got)
	}
}

func TestHotelWorkbookAppendsUnknownHotelRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hotel_prices.xlsx")
	h := NewHotelWorkbook(path, utils.NewLogger())
	ts := time.Date(2026, time.August, 4, 12, 0, 0, 0, time.UTC)

	result := testHotelResult(ts)
	result.Quotes = append(result.Quotes, models.HotelQuote{
		HotelAr: "فندق جديد", HotelEn: "New Hotel", PriceQAR: 600.00, Timestamp: ts,
	})
	if err := h.Write(testHotels, result); err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	row := hotelFirstRow + len(testHotels)
	got, _ := f.GetCellValue(catalog.HotelSheetName, cellName(t, hotelNameCol, row))
	if got != "فندق جديد" {
		t.Errorf("appended row label = %q; want فندق جديد", got)
	}
	raw := excelize.Options{RawCellValue: true}
	if price, _ := f.GetCellValue(catalog.HotelSheetName, cellName(t, 2, row), raw); price != "600" {
		t.Errorf("appended row price = %q; want 600", price)
	}
}

func TestMondayOf(t *testing.T) {
	tests := []struct {
		day  time.Time
		want string
	}{
		{time.Date(2026, time.August, 3, 0, 0, 0, 0, time.UTC), "2026-08-03"},  // Monday
		{time.Date(2026, time.August, 4, 0, 0, 0, 0, time.UTC), "2026-08-03"},  // Tuesday
		{time.Date(2026, time.August, 9, 0, 0, 0, 0, time.UTC), "2026-08-03"},  // Sunday
		{time.Date(2026, time.August, 10, 0, 0, 0, 0, time.UTC), "2026-08-10"}, // next Monday
	}

	for _, tt := range tests {
		if got := mondayOf(tt.day).Format("2006-01-02"); got != tt.want {
			t.Errorf("mondayOf(%s) = %s; want %s", tt.day.Format("2006-01-02"), got, tt.want)
		}
	}
}
