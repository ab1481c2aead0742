package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"cpi-scraper/catalog"
	"cpi-scraper/config"
	"cpi-scraper/models"
	"cpi-scraper/scheduler"
	"cpi-scraper/scraper/flights"
	"cpi-scraper/scraper/gold"
	"cpi-scraper/scraper/hotels"
	"cpi-scraper/services"
	"cpi-scraper/storage"
	"cpi-scraper/utils"
)

func main() {
	initStore := flag.Bool("init-store", false, "back up the flight workbook and create a fresh one, then exit")
	goldOnly := flag.Bool("gold", false, "scrape gold prices instead of flights")
	hotelsOnly := flag.Bool("hotels", false, "scrape hotel prices instead of flights")
	schedule := flag.Bool("schedule", false, "keep running and collect on days 4, 10, 17 and 24 at 09:00")
	scheduleHotels := flag.Bool("schedule-hotels", false, "keep running and collect hotel prices every Monday at 09:00")
	flag.Parse()

	logger := utils.NewLogger()
	cfg := config.Load()

	logger.Info("=== CPI Price Scraper starting ===")
	logger.Info("Config — delay: %dms | page timeout: %ds | headless: %v",
		cfg.RequestDelayMs, cfg.PageTimeoutSec, cfg.Headless)

	if *goldOnly {
		if err := runGold(cfg, logger); err != nil {
			logger.Error("Gold run failed: %v", err)
			os.Exit(1)
		}
		return
	}

	if *scheduleHotels {
		sched := scheduler.NewWeekly(logger, func() error {
			return runHotels(cfg, logger)
		})
		if err := sched.Start(); err != nil {
			logger.Error("Hotel scheduler failed: %v", err)
			os.Exit(1)
		}
		return
	}

	if *hotelsOnly {
		if err := runHotels(cfg, logger); err != nil {
			logger.Error("Hotel run failed: %v", err)
			os.Exit(1)
		}
		return
	}

	routes := catalog.LoadRoutes(cfg.FlightXLSXPath, logger)
	sources := catalog.DefaultSources()
	logger.Info("Catalog — %d routes, %d sources", len(routes), len(sources))

	if *initStore {
		book := storage.NewWorkbook(cfg.FlightXLSXPath, logger)
		if err := book.InitStore(time.Now(), routes); err != nil {
			logger.Error("Store init failed: %v", err)
			os.Exit(1)
		}
		logger.Info("Fresh workbook created at %s", cfg.FlightXLSXPath)
		return
	}

	if *schedule {
		sched := scheduler.New(logger, cfg.LastRunPath, func() error {
			return runFlights(cfg, logger, routes, sources)
		})
		if err := sched.Start(); err != nil {
			logger.Error("Scheduler failed: %v", err)
			os.Exit(1)
		}
		return
	}

	if err := runFlights(cfg, logger, routes, sources); err != nil {
		logger.Error("Flight run failed: %v", err)
		os.Exit(1)
	}
}

// runFlights executes one full flight collection run and persists the
// results to every configured sink.
func runFlights(cfg *config.Config, logger *utils.Logger,
	routes []models.Route, sources []models.Source) error {

	book := storage.NewWorkbook(cfg.FlightXLSXPath, logger)
	rates := services.NewRateTable(cfg.RateOverrides)
	extractor := services.NewExtractor(rates, logger)

	scraper := flights.New(cfg, logger, extractor, routes, sources, book)
	result, err := scraper.Run(context.Background())
	if err != nil {
		return err
	}

	if err := storage.WriteSnapshot(cfg.FlightJSONPath, result); err != nil {
		logger.Error("JSON snapshot failed: %v", err)
	} else {
		logger.Info("Snapshot saved to %s", cfg.FlightJSONPath)
	}

	var observations []models.PriceObservation
	for _, rr := range result.Routes {
		observations = append(observations, rr.Prices...)
	}

	if len(observations) > 0 {
		writeObservations(cfg, logger, observations)
	} else {
		logger.Warn("No observations collected this run")
	}

	services.PrintSummary(result)

	fmt.Printf("  Done. Workbook → %s | Snapshot → %s\n\n",
		cfg.FlightXLSXPath, cfg.FlightJSONPath)
	return nil
}

// writeObservations appends the run's observations to the CSV archive and,
// when enabled, to PostgreSQL. Sink failures are logged, never fatal: the
// workbook is the primary store and was already written per route.
func writeObservations(cfg *config.Config, logger *utils.Logger, obs []models.PriceObservation) {
	csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
	if err != nil {
		logger.Error("Failed to create CSV writer: %v", err)
	} else {
		defer csvWriter.Close()
		if err := csvWriter.WriteObservations(obs); err != nil {
			logger.Error("CSV write failed: %v", err)
		} else {
			logger.Info("Observations appended to %s", cfg.CSVOutputPath)
		}
	}

	if !cfg.PostgresEnabled {
		return
	}

	pgWriter, err := storage.NewPostgresWriter(cfg.DSN())
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		return
	}
	defer pgWriter.Close()

	if err := pgWriter.WriteObservations(obs); err != nil {
		logger.Error("PostgreSQL write failed: %v", err)
	} else {
		logger.Info("Observations archived in PostgreSQL (table: price_observations)")
	}
}

// runHotels executes one full hotel collection run and persists the quotes
// to the hotel workbook and a JSON snapshot.
func runHotels(cfg *config.Config, logger *utils.Logger) error {
	hotelList := catalog.DefaultHotels()
	book := storage.NewHotelWorkbook(cfg.HotelXLSXPath, logger)

	scraper := hotels.New(cfg, logger, hotelList, book)
	result, err := scraper.Run(context.Background())
	if err != nil {
		return err
	}

	if err := storage.WriteSnapshot(cfg.HotelJSONPath, result); err != nil {
		logger.Error("JSON snapshot failed: %v", err)
	} else {
		logger.Info("Snapshot saved to %s", cfg.HotelJSONPath)
	}

	fmt.Printf("  Done. Hotel workbook → %s | Snapshot → %s\n\n",
		cfg.HotelXLSXPath, cfg.HotelJSONPath)
	return nil
}

// runGold scrapes the gold price page and persists the quotes to the gold
// workbook and a JSON snapshot.
func runGold(cfg *config.Config, logger *utils.Logger) error {
	scraper := gold.New(logger)
	result, err := scraper.Scrape()
	if err != nil {
		return err
	}
	if len(result.Quotes) == 0 {
		return fmt.Errorf("no gold quotes found on page")
	}

	book := storage.NewGoldWorkbook(cfg.GoldXLSXPath, logger)
	if err := book.Write(*result); err != nil {
		return err
	}
	logger.Info("Gold workbook updated at %s", cfg.GoldXLSXPath)

	if err := storage.WriteSnapshot(cfg.GoldJSONPath, result); err != nil {
		logger.Error("JSON snapshot failed: %v", err)
	} else {
		logger.Info("Snapshot saved to %s", cfg.GoldJSONPath)
	}

	fmt.Printf("  Done. Gold workbook → %s | Snapshot → %s\n\n",
		cfg.GoldXLSXPath, cfg.GoldJSONPath)
	return nil
}
