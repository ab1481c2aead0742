package catalog

import (
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"cpi-scraper/models"
	"cpi-scraper/utils"
)

// SheetName is the single worksheet everything is written to.
const SheetName = "Flight Prices"

// RouteBlockHeaders is the header row of the route block at the top of the
// sheet. The first label doubles as the well-formedness check when loading.
var RouteBlockHeaders = []string{
	"Code", "Commodity", "Origin", "Origin_Code",
	"Destination", "Destination_Code", "Duration_Months",
}

// FlightHeaderMarker identifies the flight-price header row: the row whose
// column F contains this substring ends the route block.
const FlightHeaderMarker = "Flight Agencies"

const defaultDurationMonths = 6

var defaultRoutes = []models.Route{
	{Code: "007331101", Origin: "Doha", OriginCode: "DOH", Destination: "London", DestinationCode: "LHR",
		CommodityAr: "كلفة تذكرة دوحة _ لندن - دوحة لمدة 6 (Semi flexble التذكرة السياحية) أشهر", DurationMonths: 6},
	{Code: "007331102", Origin: "Doha", OriginCode: "DOH", Destination: "Cairo", DestinationCode: "CAI",
		CommodityAr: "كلفة تذكرة دوحة _ القاهرة - دوحة لمدة 6 (semi flexble التذكرة سياحية ( اشهر", DurationMonths: 6},
	{Code: "007331103", Origin: "Doha", OriginCode: "DOH", Destination: "Karachi", DestinationCode: "KHI",
		CommodityAr: "كلفة تذكرة دوحة_ كراتشي _ دوحة لمدة 6 اشهر ( التذكرة سياحية semi flexble)", DurationMonths: 6},
	{Code: "007331104", Origin: "Doha", OriginCode: "DOH", Destination: "Dubai", DestinationCode: "DXB",
		CommodityAr: "كلفة تذكرة دوحة_ دبي _ دوحة لمدة 6 اشهر ( التذكرة سياحية semi flexble)", DurationMonths: 6},
	{Code: "007331105", Origin: "Doha", OriginCode: "DOH", Destination: "Jeddah", DestinationCode: "JED",
		CommodityAr: "كلفة تذكرة دوحة_جدة _ دوحة لمدة 6 اشهر( التذكرة سياحية semi flexble)", DurationMonths: 6},
	{Code: "007331106", Origin: "Doha", OriginCode: "DOH", Destination: "Mumbai", DestinationCode: "BOM",
		CommodityAr: "كلفة تذكرة دوحة_ بومباي _ دوحة لمدة 6 اشهر ( التذكرة سياحية semi flexble)", DurationMonths: 6},
	{Code: "007331107", Origin: "Doha", OriginCode: "DOH", Destination: "Kuala Lumpur", DestinationCode: "KUL",
		CommodityAr: "كلفة تذكرة دوحة_كولا لمبور _ دوحة لمدة 6 اشهر( التذكرة سياحية semi flexble)", DurationMonths: 6},
	{Code: "007331108", Origin: "Doha", OriginCode: "DOH", Destination: "Istanbul", DestinationCode: "IST",
		CommodityAr: "كلفة تذكرة دوحة_ اسطنبول لمدة 6 اشهر ( التذكرة سياحية semi flexble)", DurationMonths: 6},
	{Code: "007331109", Origin: "Doha", OriginCode: "DOH", Destination: "Bangkok", DestinationCode: "BKK",
		CommodityAr: "كلفة تذكرة دوحة_ بانكوك _ دوحة لمدة 6 اشهر ( التذكرة سياحية semi flexble)", DurationMonths: 6},
	{Code: "007331110", Origin: "Doha", OriginCode: "DOH", Destination: "Tbilisi", DestinationCode: "TBS",
		CommodityAr: "كلفة تذكرة دوحة_تبليسي_ دوحة لمدة 6 اشهر ( التذكرة سياحية semi flexble)", DurationMonths: 6},
	{Code: "007331111", Origin: "Doha", OriginCode: "DOH", Destination: "New York", DestinationCode: "JFK",
		CommodityAr: "كلفة تذكرة دوحة_نيويورك دوحة لمدة 6 اشهر ( التذكرة سياحية semi flexble)", DurationMonths: 6},
}

// DefaultRoutes returns a copy of the built-in route list.
func DefaultRoutes() []models.Route {
	routes := make([]models.Route, len(defaultRoutes))
	copy(routes, defaultRoutes)
	return routes
}

// LoadRoutes reads the route block from the top of the workbook. Any missing
// file, missing sheet or malformed block silently falls back to the built-in
// defaults: an absent route block is expected, not an error.
func LoadRoutes(xlsxPath string, logger *utils.Logger) []models.Route {
	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		logger.Debug("[catalog] No workbook at %s, using default routes", xlsxPath)
		return DefaultRoutes()
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil || len(rows) < 2 {
		return DefaultRoutes()
	}
	if cell(rows[0], 0) != RouteBlockHeaders[0] {
		return DefaultRoutes()
	}

	var routes []models.Route
	for _, row := range rows[1:] {
		code := strings.TrimSpace(cell(row, 0))
		if code == "" || strings.Contains(cell(row, 5), FlightHeaderMarker) {
			break
		}
		// A second "Code" label means we ran into the flight header row.
		if code == RouteBlockHeaders[0] {
			break
		}
		routes = append(routes, models.Route{
			Code:            code,
			CommodityAr:     cell(row, 1),
			Origin:          cell(row, 2),
			OriginCode:      cell(row, 3),
			Destination:     cell(row, 4),
			DestinationCode: cell(row, 5),
			DurationMonths:  parseDuration(cell(row, 6)),
		})
	}

	if len(routes) == 0 {
		return DefaultRoutes()
	}
	logger.Info("[catalog] Loaded %d routes from %s", len(routes), xlsxPath)
	return routes
}

func parseDuration(raw string) int {
	months, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || months <= 0 {
		return defaultDurationMonths
	}
	return months
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}
