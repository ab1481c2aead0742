package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"cpi-scraper/catalog"
	"cpi-scraper/models"
	"cpi-scraper/utils"
)

// Fixed columns A–F of the flight price block.
const (
	colCode = iota + 1
	colCommodity
	colClass
	colCPIFlag
	colSourceCode
	colAgency
)

const dateColStart = colAgency + 1

const (
	classEconomy       = "Economy"
	cpiFlagObservation = "Y"
	cpiFlagAverage     = "N-averages"
	airlineVarious     = "Various"
)

// ScheduledDays are the days of month a scrape run is scheduled for. The
// blank store pre-creates one date column per scheduled day.
var ScheduledDays = []int{4, 10, 17, 24}

var flightHeaders = []string{
	"Code",
	"Commodity",
	"الدرجة المقابلة لها في الخطوط (Class equivalent in airlines)",
	"CPI-Flag",
	"رمز المصدر (Source Code)",
	"وكالات الخطوط (Flight Agencies)",
}

// Workbook is the sheet layout manager: it owns the single-sheet flight
// price workbook and guarantees the stable physical layout — route block on
// top, flight header row below it, one column per run-date label, contiguous
// per-route blocks with merged commodity cells.
type Workbook struct {
	path   string
	logger *utils.Logger
}

// NewWorkbook creates a layout manager for the workbook at path. The file is
// created on first write.
func NewWorkbook(path string, logger *utils.Logger) *Workbook {
	return &Workbook{path: path, logger: logger}
}

// DateLabel renders the canonical short form of a run date ("4-Jan").
func DateLabel(t time.Time) string {
	return t.Format("2-Jan")
}

// NormalizeDateLabel reduces header text to the canonical day-month form so
// "04-Jan", "4 Jan" and "4-jan" all resolve to "4-Jan". Returns "" when the
// text is not a date label.
func NormalizeDateLabel(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, " ", "-"))
	parts := strings.Split(s, "-")
	if len(parts) < 2 {
		return ""
	}
	day, err := strconv.Atoi(strings.TrimLeft(parts[0], "0"))
	if err != nil || day < 1 || day > 31 {
		return ""
	}
	month := parts[1]
	if len(month) < 3 {
		return ""
	}
	month = strings.ToUpper(month[:1]) + strings.ToLower(month[1:3])
	if _, err := time.Parse("Jan", month); err != nil {
		return ""
	}
	return fmt.Sprintf("%d-%s", day, month)
}

// ScheduledLabels returns the canonical labels of every scheduled run date
// from the given date through the end of the following calendar year.
func ScheduledLabels(from time.Time) []string {
	var labels []string
	for year := from.Year(); year <= from.Year()+1; year++ {
		for month := time.January; month <= time.December; month++ {
			for _, day := range ScheduledDays {
				d := time.Date(year, month, day, 0, 0, 0, 0, from.Location())
				if d.Day() != day { // day overflowed the month
					continue
				}
				if d.Before(from.Truncate(24 * time.Hour)) {
					continue
				}
				labels = append(labels, DateLabel(d))
			}
		}
	}
	return labels
}

// sheetRow is one physical row of a route's block.
type sheetRow struct {
	code       string
	commodity  string
	class      string
	cpiFlag    string
	sourceCode string
	agency     string
	price      int
	bold       bool
}

// buildRouteRows lays out a route's block in deterministic order:
// observations sorted by (airline, source), then one average row per airline
// with at least two observations, then the overall average.
func buildRouteRows(rr models.RouteResult) []sheetRow {
	obs := make([]models.PriceObservation, len(rr.Prices))
	copy(obs, rr.Prices)
	sort.Slice(obs, func(i, j int) bool {
		if obs[i].Airline != obs[j].Airline {
			return obs[i].Airline < obs[j].Airline
		}
		return obs[i].Source < obs[j].Source
	})

	rows := make([]sheetRow, 0, len(obs)+2)
	byAirline := make(map[string][]int)
	total := 0

	for _, o := range obs {
		rows = append(rows, sheetRow{
			code:       rr.Route.Code,
			commodity:  rr.Route.CommodityAr,
			class:      classEconomy,
			cpiFlag:    cpiFlagObservation,
			sourceCode: o.SourceCode,
			agency:     agencyLabel(o),
			price:      o.Price,
		})
		byAirline[o.Airline] = append(byAirline[o.Airline], o.Price)
		total += o.Price
	}

	airlines := make([]string, 0, len(byAirline))
	for airline, prices := range byAirline {
		if len(prices) >= 2 {
			airlines = append(airlines, airline)
		}
	}
	sort.Strings(airlines)

	for _, airline := range airlines {
		rows = append(rows, sheetRow{
			code:      rr.Route.Code,
			commodity: rr.Route.CommodityAr,
			class:     classEconomy,
			cpiFlag:   cpiFlagAverage,
			agency:    airlineAverageLabel(airline),
			price:     average(byAirline[airline]),
			bold:      true,
		})
	}

	if len(obs) > 0 {
		rows = append(rows, sheetRow{
			code:      rr.Route.Code,
			commodity: rr.Route.CommodityAr,
			class:     classEconomy,
			cpiFlag:   cpiFlagAverage,
			agency:    "متوسط المصادر",
			price:     roundDiv(total, len(obs)),
			bold:      true,
		})
	}
	return rows
}

func agencyLabel(o models.PriceObservation) string {
	agency := o.SourceAr
	if agency == "" {
		agency = o.Source
	}
	if o.Airline != "" && o.Airline != airlineVarious {
		return fmt.Sprintf("عبر %s %s", o.Airline, agency)
	}
	return agency
}

func airlineAverageLabel(airline string) string {
	if airline != "" && airline != airlineVarious {
		return "متوسط المصادر للخطوط " + airline
	}
	return "متوسط المصادر"
}

func average(prices []int) int {
	total := 0
	for _, p := range prices {
		total += p
	}
	return roundDiv(total, len(prices))
}

func roundDiv(total, n int) int {
	return int(float64(total)/float64(n) + 0.5)
}

// WriteRoute merges one route's run results into the workbook: read, modify,
// write. When the route's existing block already has the expected row count,
// only the run-date column is rewritten (update in place); otherwise the
// block is rewritten at the next free row and the commodity cell is merged
// across it.
func (w *Workbook) WriteRoute(runDate time.Time, rr models.RouteResult) error {
	f, err := w.openOrCreate()
	if err != nil {
		return err
	}
	defer f.Close()

	headerRow, err := w.ensureStructure(f)
	if err != nil {
		return err
	}

	dateCol, err := w.ensureDateColumn(f, headerRow, DateLabel(runDate))
	if err != nil {
		return err
	}

	rows := buildRouteRows(rr)
	if len(rows) == 0 {
		w.logger.Warn("[workbook] Route %s has no observations, nothing to write", rr.Route.Code)
		return w.save(f)
	}

	grid, err := f.GetRows(catalog.SheetName)
	if err != nil {
		return fmt.Errorf("workbook: read rows: %w", err)
	}

	start, count := findRouteBlock(grid, headerRow, rr.Route.Code)
	if count == len(rows) {
		w.logger.Info("[workbook] Route %s: updating %d rows in place (column %s)",
			rr.Route.Code, count, DateLabel(runDate))
		if err := w.writeDateColumn(f, start, dateCol, rows); err != nil {
			return err
		}
		return w.save(f)
	}

	if count > 0 {
		// Retire the stale block so the next run matches the rewritten one
		// instead of appending again.
		if err := w.blankRouteCodes(f, grid, headerRow, rr.Route.Code); err != nil {
			return err
		}
	}
	start = nextFreeRow(grid, headerRow)
	w.logger.Info("[workbook] Route %s: writing %d rows at row %d", rr.Route.Code, len(rows), start)
	if err := w.writeBlock(f, start, dateCol, rows); err != nil {
		return err
	}
	return w.save(f)
}

// blankRouteCodes clears every code cell carrying the route's code below the
// header row. Old rows keep their prices for the record but no longer take
// part in block matching.
func (w *Workbook) blankRouteCodes(f *excelize.File, grid [][]string, headerRow int, code string) error {
	for r := headerRow; r < len(grid); r++ {
		if gridCell(grid, r, 0) != code {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(colCode, r+1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(catalog.SheetName, cell, ""); err != nil {
			return err
		}
	}
	return nil
}

// findRouteBlock locates the route's contiguous block below the header row.
// Returns the 1-based first row and the row count (0 when absent).
func findRouteBlock(grid [][]string, headerRow int, code string) (int, int) {
	start, count := 0, 0
	for r := headerRow; r < len(grid); r++ { // grid index r is sheet row r+1
		if gridCell(grid, r, 0) == code {
			if start == 0 {
				start = r + 1
			}
			count++
		} else if start != 0 {
			break
		}
	}
	return start, count
}

func nextFreeRow(grid [][]string, headerRow int) int {
	last := headerRow
	for r := headerRow; r < len(grid); r++ {
		if gridCell(grid, r, 0) != "" {
			last = r + 1
		}
	}
	return last + 1
}

func gridCell(grid [][]string, row, col int) string {
	if row >= len(grid) || col >= len(grid[row]) {
		return ""
	}
	return strings.TrimSpace(grid[row][col])
}

// writeDateColumn rewrites only the run-date cells of an existing block.
func (w *Workbook) writeDateColumn(f *excelize.File, startRow, dateCol int, rows []sheetRow) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(dateCol, startRow+i)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(catalog.SheetName, cell, row.price); err != nil {
			return err
		}
		if err := w.stylePriceCell(f, cell, row.bold); err != nil {
			return err
		}
	}
	return nil
}

// writeBlock writes a full route block and merges the commodity cell
// vertically across it.
func (w *Workbook) writeBlock(f *excelize.File, startRow, dateCol int, rows []sheetRow) error {
	for i, row := range rows {
		r := startRow + i
		values := map[int]interface{}{
			colCode:       row.code,
			colCommodity:  row.commodity,
			colClass:      row.class,
			colCPIFlag:    row.cpiFlag,
			colSourceCode: row.sourceCode,
			colAgency:     row.agency,
			dateCol:       row.price,
		}
		for col, val := range values {
			cell, err := excelize.CoordinatesToCellName(col, r)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(catalog.SheetName, cell, val); err != nil {
				return err
			}
		}
		priceCell, _ := excelize.CoordinatesToCellName(dateCol, r)
		if err := w.stylePriceCell(f, priceCell, row.bold); err != nil {
			return err
		}
	}

	if len(rows) > 1 {
		top, _ := excelize.CoordinatesToCellName(colCommodity, startRow)
		bottom, _ := excelize.CoordinatesToCellName(colCommodity, startRow+len(rows)-1)
		if err := f.MergeCell(catalog.SheetName, top, bottom); err != nil {
			return fmt.Errorf("workbook: merge commodity cell: %w", err)
		}
	}
	return nil
}

func (w *Workbook) stylePriceCell(f *excelize.File, cell string, bold bool) error {
	numFmt := "0"
	style, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: bold},
		CustomNumFmt: &numFmt,
	})
	if err != nil {
		return err
	}
	return f.SetCellStyle(catalog.SheetName, cell, cell, style)
}

// openOrCreate opens the workbook, creating a fresh one (sheet renamed, RTL
// view) when the file does not exist yet.
func (w *Workbook) openOrCreate() (*excelize.File, error) {
	if _, err := os.Stat(w.path); err == nil {
		f, err := excelize.OpenFile(w.path)
		if err != nil {
			return nil, fmt.Errorf("workbook: open %q: %w", w.path, err)
		}
		return f, nil
	}

	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return nil, fmt.Errorf("workbook: create output dir: %w", err)
	}
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", catalog.SheetName); err != nil {
		return nil, err
	}
	if err := setRightToLeft(f); err != nil {
		return nil, err
	}
	return f, nil
}

func setRightToLeft(f *excelize.File) error {
	rtl := true
	return f.SetSheetView(catalog.SheetName, 0, &excelize.ViewOptions{RightToLeft: &rtl})
}

// ensureStructure guarantees the route block and the flight header row exist
// and returns the 1-based header row number.
func (w *Workbook) ensureStructure(f *excelize.File) (int, error) {
	grid, err := f.GetRows(catalog.SheetName)
	if err != nil {
		return 0, fmt.Errorf("workbook: read rows: %w", err)
	}

	// Header row is the row whose agency column carries the marker.
	for r := 0; r < len(grid); r++ {
		if strings.Contains(gridCell(grid, r, colAgency-1), catalog.FlightHeaderMarker) {
			return r + 1, nil
		}
	}

	routeRows := 0
	if gridCell(grid, 0, 0) != catalog.RouteBlockHeaders[0] {
		routeRows, err = w.writeRouteBlock(f, catalog.DefaultRoutes())
		if err != nil {
			return 0, err
		}
	} else {
		for r := 1; r < len(grid) && gridCell(grid, r, 0) != ""; r++ {
			routeRows++
		}
	}

	headerRow := routeRows + 2
	if err := w.writeFlightHeader(f, headerRow, nil); err != nil {
		return 0, err
	}
	return headerRow, nil
}

// writeRouteBlock writes the route catalog block at the top of the sheet and
// returns the number of data rows written.
func (w *Workbook) writeRouteBlock(f *excelize.File, routes []models.Route) (int, error) {
	headerStyle, err := w.headerStyle(f)
	if err != nil {
		return 0, err
	}
	for col, h := range catalog.RouteBlockHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(catalog.SheetName, cell, h); err != nil {
			return 0, err
		}
		if err := f.SetCellStyle(catalog.SheetName, cell, cell, headerStyle); err != nil {
			return 0, err
		}
	}
	for i, route := range routes {
		r := i + 2
		values := []interface{}{
			route.Code, route.CommodityAr, route.Origin, route.OriginCode,
			route.Destination, route.DestinationCode, route.DurationMonths,
		}
		for col, val := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, r)
			if err := f.SetCellValue(catalog.SheetName, cell, val); err != nil {
				return 0, err
			}
		}
	}
	return len(routes), nil
}

// writeFlightHeader writes the flight-price header row: six fixed headers
// plus one styled header per date label.
func (w *Workbook) writeFlightHeader(f *excelize.File, row int, dateLabels []string) error {
	headerStyle, err := w.headerStyle(f)
	if err != nil {
		return err
	}
	for col, h := range flightHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		if err := f.SetCellValue(catalog.SheetName, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(catalog.SheetName, cell, cell, headerStyle); err != nil {
			return err
		}
	}
	for i, label := range dateLabels {
		cell, _ := excelize.CoordinatesToCellName(dateColStart+i, row)
		if err := f.SetCellValue(catalog.SheetName, cell, label); err != nil {
			return err
		}
		if err := f.SetCellStyle(catalog.SheetName, cell, cell, headerStyle); err != nil {
			return err
		}
	}
	return w.setColumnWidths(f, dateColStart+len(dateLabels)-1)
}

// ensureDateColumn finds the column whose normalized header matches the
// label, appending a new styled header after the last used column when the
// label is new. Re-runs on the same calendar day resolve to the same column
// regardless of which revision wrote the header.
func (w *Workbook) ensureDateColumn(f *excelize.File, headerRow int, label string) (int, error) {
	grid, err := f.GetRows(catalog.SheetName)
	if err != nil {
		return 0, err
	}
	want := NormalizeDateLabel(label)

	lastUsed := dateColStart - 1
	if headerRow-1 < len(grid) {
		header := grid[headerRow-1]
		for col := dateColStart; col <= len(header); col++ {
			text := strings.TrimSpace(header[col-1])
			if text == "" {
				continue
			}
			lastUsed = col
			if NormalizeDateLabel(text) == want {
				return col, nil
			}
		}
	}

	col := lastUsed + 1
	cell, err := excelize.CoordinatesToCellName(col, headerRow)
	if err != nil {
		return 0, err
	}
	if err := f.SetCellValue(catalog.SheetName, cell, label); err != nil {
		return 0, err
	}
	headerStyle, err := w.headerStyle(f)
	if err != nil {
		return 0, err
	}
	if err := f.SetCellStyle(catalog.SheetName, cell, cell, headerStyle); err != nil {
		return 0, err
	}
	colName, _ := excelize.ColumnNumberToName(col)
	if err := f.SetColWidth(catalog.SheetName, colName, colName, 15); err != nil {
		return 0, err
	}
	w.logger.Debug("[workbook] Added date column %q at column %d", label, col)
	return col, nil
}

// InitStore regenerates a blank store: route block, flight header row and
// pre-created scheduled date columns through the end of next year. Any
// existing workbook is renamed aside first.
func (w *Workbook) InitStore(now time.Time, routes []models.Route) error {
	if _, err := os.Stat(w.path); err == nil {
		backup := strings.TrimSuffix(w.path, filepath.Ext(w.path)) +
			"_backup_" + now.Format("20060102_1504") + filepath.Ext(w.path)
		if err := os.Rename(w.path, backup); err != nil {
			return fmt.Errorf("workbook: back up existing file: %w", err)
		}
		w.logger.Info("[workbook] Backed up existing store to %s", backup)
	}

	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return fmt.Errorf("workbook: create output dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", catalog.SheetName); err != nil {
		return err
	}
	if err := setRightToLeft(f); err != nil {
		return err
	}

	n, err := w.writeRouteBlock(f, routes)
	if err != nil {
		return err
	}
	if err := w.writeFlightHeader(f, n+2, ScheduledLabels(now)); err != nil {
		return err
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("workbook: save %q: %w", w.path, err)
	}
	w.logger.Info("[workbook] Created blank store at %s (%d routes)", w.path, n)
	return nil
}

func (w *Workbook) headerStyle(f *excelize.File) (int, error) {
	border := []excelize.Border{
		{Type: "left", Style: 1, Color: "000000"},
		{Type: "right", Style: 1, Color: "000000"},
		{Type: "top", Style: 1, Color: "000000"},
		{Type: "bottom", Style: 1, Color: "000000"},
	}
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFFF00"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
}

func (w *Workbook) setColumnWidths(f *excelize.File, lastDateCol int) error {
	widths := map[string]float64{
		"A": 12, "B": 60, "C": 25, "D": 12, "E": 15, "F": 35,
	}
	for col, width := range widths {
		if err := f.SetColWidth(catalog.SheetName, col, col, width); err != nil {
			return err
		}
	}
	if lastDateCol >= dateColStart {
		first, _ := excelize.ColumnNumberToName(dateColStart)
		last, _ := excelize.ColumnNumberToName(lastDateCol)
		if err := f.SetColWidth(catalog.SheetName, first, last, 15); err != nil {
			return err
		}
	}
	return nil
}

// save writes the workbook back to disk, handling both the opened-file and
// freshly-created cases.
func (w *Workbook) save(f *excelize.File) error {
	if f.Path == "" {
		if err := f.SaveAs(w.path); err != nil {
			return fmt.Errorf("workbook: save %q: %w", w.path, err)
		}
		return nil
	}
	if err := f.Save(); err != nil {
		return fmt.Errorf("workbook: save %q: %w", w.path, err)
	}
	return nil
}
