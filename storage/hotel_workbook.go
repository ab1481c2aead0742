package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"cpi-scraper/catalog"
	"cpi-scraper/models"
	"cpi-scraper/utils"
)

const (
	hotelWeekRow  = 1
	hotelDateRow  = 2
	hotelNameCol  = 1
	hotelFirstRow = 3
)

// HotelWorkbook is the hotel price sheet: hotel names down column A, one
// column per capture date. Row 1 labels the column's week (Monday of that
// week), row 2 carries the exact capture date used for column matching.
type HotelWorkbook struct {
	path   string
	logger *utils.Logger
}

// NewHotelWorkbook creates a layout manager for the hotel workbook at path.
func NewHotelWorkbook(path string, logger *utils.Logger) *HotelWorkbook {
	return &HotelWorkbook{path: path, logger: logger}
}

// HotelWeekLabel renders the row-1 header for the week containing t.
func HotelWeekLabel(t time.Time) string {
	return "أسبوع " + mondayOf(t).Format("2006-01-02")
}

// mondayOf returns the Monday of t's week.
func mondayOf(t time.Time) time.Time {
	offset := (int(t.Weekday()) - int(time.Monday) + 7) % 7
	return t.AddDate(0, 0, -offset)
}

// Write merges one hotel run into the workbook. Prices land in the column
// for the capture date; re-running on the same day updates it in place.
// Hotels are matched by Arabic name in column A, so the row set stays stable
// across runs regardless of which hotels yielded a price.
func (h *HotelWorkbook) Write(hotels []models.Hotel, result models.HotelResult) error {
	f, created, err := h.openOrCreate(hotels)
	if err != nil {
		return err
	}
	defer f.Close()

	day := result.Timestamp
	dateLabel := day.Format("2006-01-02")
	dateCol, err := h.ensureDateColumn(f, dateLabel)
	if err != nil {
		return err
	}

	weekCell, _ := excelize.CoordinatesToCellName(dateCol, hotelWeekRow)
	if err := h.setHeaderCell(f, weekCell, HotelWeekLabel(day)); err != nil {
		return err
	}
	dateCell, _ := excelize.CoordinatesToCellName(dateCol, hotelDateRow)
	if err := h.setHeaderCell(f, dateCell, dateLabel); err != nil {
		return err
	}

	rows, err := h.hotelRows(f)
	if err != nil {
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
		row, ok := rows[q.HotelAr]
		if !ok {
			row = len(rows) + hotelFirstRow
			if err := h.writeHotelLabel(f, row, q.HotelAr); err != nil {
				return err
			}
			rows[q.HotelAr] = row
		}
		cell, _ := excelize.CoordinatesToCellName(dateCol, row)
		if err := f.SetCellValue(catalog.HotelSheetName, cell, q.PriceQAR); err != nil {
			return err
		}
		if err := f.SetCellStyle(catalog.HotelSheetName, cell, cell, priceStyle); err != nil {
			return err
		}
		written++
	}

	if err := f.SetColWidth(catalog.HotelSheetName, "A", "A", 30); err != nil {
		return err
	}
	colName, _ := excelize.ColumnNumberToName(dateCol)
	if err := f.SetColWidth(catalog.HotelSheetName, colName, colName, 18); err != nil {
		return err
	}

	if created {
		err = f.SaveAs(h.path)
	} else {
		err = f.Save()
	}
	if err != nil {
		return fmt.Errorf("hotel workbook: save %q: %w", h.path, err)
	}
	h.logger.Info("[hotels] Wrote %d prices to %s (column %s)", written, h.path, dateLabel)
	return nil
}

func (h *HotelWorkbook) openOrCreate(hotels []models.Hotel) (*excelize.File, bool, error) {
	if _, err := os.Stat(h.path); err == nil {
		f, err := excelize.OpenFile(h.path)
		if err != nil {
			return nil, false, fmt.Errorf("hotel workbook: open %q: %w", h.path, err)
		}
		return f, false, nil
	}

	if err := os.MkdirAll(filepath.Dir(h.path), 0755); err != nil {
		return nil, false, fmt.Errorf("hotel workbook: create output dir: %w", err)
	}
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", catalog.HotelSheetName); err != nil {
		return nil, false, err
	}
	rtl := true
	if err := f.SetSheetView(catalog.HotelSheetName, 0, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
		return nil, false, err
	}

	corner, _ := excelize.CoordinatesToCellName(hotelNameCol, hotelDateRow)
	if err := h.setHeaderCell(f, corner, "الفندق"); err != nil {
		return nil, false, err
	}
	for i, hotel := range hotels {
		if err := h.writeHotelLabel(f, hotelFirstRow+i, hotel.NameAr); err != nil {
			return nil, false, err
		}
	}
	return f, true, nil
}

// writeHotelLabel puts one hotel name in column A with the label styling.
func (h *HotelWorkbook) writeHotelLabel(f *excelize.File, row int, name string) error {
	cell, _ := excelize.CoordinatesToCellName(hotelNameCol, row)
	if err := f.SetCellValue(catalog.HotelSheetName, cell, name); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFE4B5"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "right", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	return f.SetCellStyle(catalog.HotelSheetName, cell, cell, style)
}

func (h *HotelWorkbook) setHeaderCell(f *excelize.File, cell, value string) error {
	if err := f.SetCellValue(catalog.HotelSheetName, cell, value); err != nil {
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
	return f.SetCellStyle(catalog.HotelSheetName, cell, cell, style)
}

// hotelRows maps each hotel name in column A to its 1-based sheet row.
func (h *HotelWorkbook) hotelRows(f *excelize.File) (map[string]int, error) {
	grid, err := f.GetRows(catalog.HotelSheetName)
	if err != nil {
		return nil, err
	}
	rows := make(map[string]int)
	for r := hotelFirstRow - 1; r < len(grid); r++ {
		name := ""
		if len(grid[r]) > 0 {
			name = strings.TrimSpace(grid[r][0])
		}
		if name != "" {
			rows[name] = r + 1
		}
	}
	return rows, nil
}

// ensureDateColumn finds the column on the date row whose text matches the
// label, appending after the last used column otherwise.
func (h *HotelWorkbook) ensureDateColumn(f *excelize.File, label string) (int, error) {
	grid, err := f.GetRows(catalog.HotelSheetName)
	if err != nil {
		return 0, err
	}

	lastUsed := hotelNameCol
	if hotelDateRow-1 < len(grid) {
		row := grid[hotelDateRow-1]
		for col := hotelNameCol + 1; col <= len(row); col++ {
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
