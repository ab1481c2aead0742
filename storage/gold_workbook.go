package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"cpi-scraper/models"
	"cpi-scraper/utils"
)

const goldSheetName = "Gold Prices"

const (
	goldDayNameRow = 1
	goldDateRow    = 2
	goldKaratCol   = 1
)

// karatRows pins each tracked karat to a fixed sheet row.
var karatRows = map[int]int{14: 3, 18: 4, 21: 5, 22: 6, 24: 7}

var arabicDays = map[time.Weekday]string{
	time.Monday:    "الاثنين",
	time.Tuesday:   "الثلاثاء",
	time.Wednesday: "الأربعاء",
	time.Thursday:  "الخميس",
	time.Friday:    "الجمعة",
	time.Saturday:  "السبت",
	time.Sunday:    "الأحد",
}

var arabicMonths = map[time.Month]string{
	time.January: "يناير", time.February: "فبراير", time.March: "مارس",
	time.April: "أبريل", time.May: "مايو", time.June: "يونيو",
	time.July: "يوليو", time.August: "أغسطس", time.September: "سبتمبر",
	time.October: "أكتوبر", time.November: "نوفمبر", time.December: "ديسمبر",
}

// GoldWorkbook is the gold price sheet: karat labels down column A, one
// column per capture date (Arabic day name on row 1, month + day on row 2).
type GoldWorkbook struct {
	path   string
	logger *utils.Logger
}

// NewGoldWorkbook creates a layout manager for the gold workbook at path.
func NewGoldWorkbook(path string, logger *utils.Logger) *GoldWorkbook {
	return &GoldWorkbook{path: path, logger: logger}
}

// GoldDateLabel renders the row-2 column header ("يناير 4").
func GoldDateLabel(t time.Time) string {
	return fmt.Sprintf("%s %d", arabicMonths[t.Month()], t.Day())
}

// Write merges one gold run into the workbook: prices land in the column for
// the capture date, re-running on the same day updates that column in place.
func (g *GoldWorkbook) Write(result models.GoldResult) error {
	f, created, err := g.openOrCreate()
	if err != nil {
		return err
	}
	defer f.Close()

	day := result.Timestamp
	dateCol, err := g.ensureDateColumn(f, GoldDateLabel(day))
	if err != nil {
		return err
	}

	dayCell, _ := excelize.CoordinatesToCellName(dateCol, goldDayNameRow)
	if err := g.setHeaderCell(f, dayCell, arabicDays[day.Weekday()]); err != nil {
		return err
	}
	dateCell, _ := excelize.CoordinatesToCellName(dateCol, goldDateRow)
	if err := g.setHeaderCell(f, dateCell, GoldDateLabel(day)); err != nil {
		return err
	}

	numFmt := "0.00"
	priceStyle, err := f.NewStyle(&excelize.Style{
		CustomNumFmt: &numFmt,
		Alignment:    &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	written := 0
	for _, q := range result.Quotes {
		row, ok := karatRows[q.Karat]
		if !ok {
			continue
		}
		price := q.PriceUSD
		if price == 0 {
			price = q.PriceQAR
		}
		cell, _ := excelize.CoordinatesToCellName(dateCol, row)
		if err := f.SetCellValue(goldSheetName, cell, price); err != nil {
			return err
		}
		if err := f.SetCellStyle(goldSheetName, cell, cell, priceStyle); err != nil {
			return err
		}
		written++
	}

	if err := f.SetColWidth(goldSheetName, "A", "A", 12); err != nil {
		return err
	}
	colName, _ := excelize.ColumnNumberToName(dateCol)
	if err := f.SetColWidth(goldSheetName, colName, colName, 18); err != nil {
		return err
	}

	if created {
		err = f.SaveAs(g.path)
	} else {
		err = f.Save()
	}
	if err != nil {
		return fmt.Errorf("gold workbook: save %q: %w", g.path, err)
	}
	g.logger.Info("[gold] Wrote %d prices to %s (column %s)", written, g.path, GoldDateLabel(day))
	return nil
}

func (g *GoldWorkbook) openOrCreate() (*excelize.File, bool, error) {
	if _, err := os.Stat(g.path); err == nil {
		f, err := excelize.OpenFile(g.path)
		if err != nil {
			return nil, false, fmt.Errorf("gold workbook: open %q: %w", g.path, err)
		}
		return f, false, nil
	}

	if err := os.MkdirAll(filepath.Dir(g.path), 0755); err != nil {
		return nil, false, fmt.Errorf("gold workbook: create output dir: %w", err)
	}
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", goldSheetName); err != nil {
		return nil, false, err
	}
	rtl := true
	if err := f.SetSheetView(goldSheetName, 0, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
		return nil, false, err
	}
	if err := g.writeKaratLabels(f); err != nil {
		return nil, false, err
	}
	return f, true, nil
}

// writeKaratLabels puts the karat names down column A and the corner header
// on the date row. 22K carries the red bold styling of the reference sheet.
func (g *GoldWorkbook) writeKaratLabels(f *excelize.File) error {
	corner, _ := excelize.CoordinatesToCellName(goldKaratCol, goldDateRow)
	if err := g.setHeaderCell(f, corner, "نوع العيار"); err != nil {
		return err
	}

	for karat, row := range karatRows {
		cell, _ := excelize.CoordinatesToCellName(goldKaratCol, row)
		if err := f.SetCellValue(goldSheetName, cell, fmt.Sprintf("%d", karat)); err != nil {
			return err
		}
		font := &excelize.Font{Bold: true}
		if karat == 22 {
			font.Color = "FF0000"
		}
		style, err := f.NewStyle(&excelize.Style{
			Font:      font,
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFE4B5"}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		})
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(goldSheetName, cell, cell, style); err != nil {
			return err
		}
	}
	return nil
}

func (g *GoldWorkbook) setHeaderCell(f *excelize.File, cell, value string) error {
	if err := f.SetCellValue(goldSheetName, cell, value); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFFF00"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	return f.SetCellStyle(goldSheetName, cell, cell, style)
}

// ensureDateColumn finds the column on the date row whose text matches the
// label, appending after the last used column otherwise.
func (g *GoldWorkbook) ensureDateColumn(f *excelize.File, label string) (int, error) {
	grid, err := f.GetRows(goldSheetName)
	if err != nil {
		return 0, err
	}

	lastUsed := goldKaratCol
	if goldDateRow-1 < len(grid) {
		row := grid[goldDateRow-1]
		for col := goldKaratCol + 1; col <= len(row); col++ {
			text := strings.TrimSpace(row[col-1])
			if text == "" {
				continue
			}
			lastUsed = col
			if text == label {
				return col, nil
			}
		}
	}
	return lastUsed + 1, nil
}
