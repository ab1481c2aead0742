package flights

import (
	"context"
	"fmt"
	"time"

	"cpi-scraper/config"
	"cpi-scraper/models"
	"cpi-scraper/scraper/browser"
	"cpi-scraper/services"
	"cpi-scraper/storage"
	"cpi-scraper/utils"
)

// airlineVarious labels aggregator observations whose carrier is unknown.
const airlineVarious = "Various"

// priceReadyExpr is polled after navigation until something price-shaped is
// in the DOM.
const priceReadyExpr = `document.querySelector("[class*='price'], [class*='fare'], [class*='Price'], [data-testid*='price'], [data-test-id='price']") !== null`

// Scraper drives one full flight-price collection run: every route against
// every source, strictly sequentially, through a single browser session.
type Scraper struct {
	cfg       *config.Config
	logger    *utils.Logger
	extractor *services.Extractor
	routes    []models.Route
	sources   []models.Source
	book      *storage.Workbook
}

// New creates a ready-to-use flight Scraper. book may be nil to skip
// per-route workbook persistence.
func New(cfg *config.Config, logger *utils.Logger, extractor *services.Extractor,
	routes []models.Route, sources []models.Source, book *storage.Workbook) *Scraper {
	return &Scraper{
		cfg:       cfg,
		logger:    logger,
		extractor: extractor,
		routes:    routes,
		sources:   sources,
		book:      book,
	}
}

// Run executes the full run. Per-source failures are logged and skipped;
// only a browser-session fault or context cancellation aborts the run.
// Each route is persisted to the workbook as soon as its sources finish,
// so a mid-run crash keeps everything collected up to that route.
func (s *Scraper) Run(ctx context.Context) (*models.RunResult, error) {
	s.logger.Info("[flights] Starting run — %d routes × %d sources", len(s.routes), len(s.sources))

	session, err := browser.NewSession(s.cfg, s.logger)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	runDate := time.Now()
	result := &models.RunResult{Timestamp: runDate}
	delay := time.Duration(s.cfg.RequestDelayMs) * time.Millisecond

	for _, route := range s.routes {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		s.logger.Info("[%s] Route: %s - %s", route.Code, route.Origin, route.Destination)
		rr := models.RouteResult{Route: route}
		dep, ret := travelDates(route, runDate)

		for _, source := range s.sources {
			if err := ctx.Err(); err != nil {
				return result, err
			}

			obs, found := s.scrapeSource(session, ctx, route, source, dep, ret)
			if found {
				rr.Prices = append(rr.Prices, obs)
			}
			time.Sleep(delay)
		}

		s.logger.Info("[%s] Collected %d observations", route.Code, len(rr.Prices))
		result.Routes = append(result.Routes, rr)

		if s.book != nil && len(rr.Prices) > 0 {
			if err := s.book.WriteRoute(runDate, rr); err != nil {
				s.logger.Error("[%s] Workbook write failed: %v", route.Code, err)
			}
		}
	}

	s.logger.Info("[flights] Run complete — %d observations total", result.TotalObservations())
	return result, nil
}

// scrapeSource queries one source for one route. Every failure mode short of
// a dead browser is reported as a miss, never as an error.
func (s *Scraper) scrapeSource(sess *browser.Session, ctx context.Context,
	route models.Route, source models.Source, dep, ret time.Time) (models.PriceObservation, bool) {

	nav, ok := navigators[source.ID]
	if !ok {
		s.logger.Warn("[%s] No scraper registered for source %q", route.Code, source.ID)
		return models.PriceObservation{}, false
	}

	url, ok := nav.SearchURL(route, dep, ret)
	if !ok {
		s.logger.Debug("[%s] %s: search is form-only, skipping", route.Code, source.Name)
		return models.PriceObservation{}, false
	}

	s.logger.Info("[%s] Scraping %s", route.Code, source.Name)
	s.logger.Debug("[%s] Opening %s", route.Code, truncateURL(url))

	page, err := sess.Open(ctx, url, priceReadyExpr)
	if err != nil {
		s.logger.Error("[%s] %s: %v", route.Code, source.Name, err)
		return models.PriceObservation{}, false
	}
	defer page.Close()

	price, found, err := s.extractor.Extract(page, route, nav.Selectors())
	if err != nil {
		s.logger.Error("[%s] %s: extraction failed: %v", route.Code, source.Name, err)
		return models.PriceObservation{}, false
	}
	if !found {
		s.logger.Warn("[%s] %s: no plausible price on page", route.Code, source.Name)
		return models.PriceObservation{}, false
	}

	s.logger.Info("[%s] %s: %d %s", route.Code, source.Name, price, services.ReferenceCurrency)
	return models.PriceObservation{
		RouteCode:  route.Code,
		Source:     source.Name,
		SourceAr:   source.NameAr,
		SourceCode: source.SourceCode,
		Airline:    airlineFor(source),
		Price:      price,
		Currency:   services.ReferenceCurrency,
		Timestamp:  time.Now(),
	}, true
}

// airlineFor resolves the carrier column: airline sites sell their own seats,
// aggregators mix carriers.
func airlineFor(source models.Source) string {
	if source.Kind == models.KindAirline {
		return source.Name
	}
	return airlineVarious
}

func truncateURL(url string) string {
	if len(url) <= 100 {
		return url
	}
	return fmt.Sprintf("%s...", url[:100])
}
