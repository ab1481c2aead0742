package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	PostgresEnabled  bool

	RequestDelayMs int
	PageTimeoutSec int
	Headless       bool

	FlightXLSXPath string
	FlightJSONPath string
	GoldXLSXPath   string
	GoldJSONPath   string
	HotelXLSXPath  string
	HotelJSONPath  string
	CSVOutputPath  string
	LastRunPath    string

	// RateOverrides patches the built-in currency table, e.g.
	// RATE_OVERRIDES="USD=3.64,GBP=4.60". The table is approximate and
	// manually curated; overriding it is the only update mechanism.
	RateOverrides map[string]float64

	ChromeBin string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "cpi_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),

		RequestDelayMs: getEnvInt("REQUEST_DELAY_MS", 3000),
		PageTimeoutSec: getEnvInt("PAGE_TIMEOUT_SEC", 45),
		Headless:       getEnvBool("HEADLESS", true),

		FlightXLSXPath: getEnv("FLIGHT_XLSX_PATH", "./output/flight_prices.xlsx"),
		FlightJSONPath: getEnv("FLIGHT_JSON_PATH", "./output/flight_prices.json"),
		GoldXLSXPath:   getEnv("GOLD_XLSX_PATH", "./output/gold_prices.xlsx"),
		GoldJSONPath:   getEnv("GOLD_JSON_PATH", "./output/gold_prices.json"),
		HotelXLSXPath:  getEnv("HOTEL_XLSX_PATH", "./output/hotel_prices.xlsx"),
		HotelJSONPath:  getEnv("HOTEL_JSON_PATH", "./output/hotel_prices.json"),
		CSVOutputPath:  getEnv("CSV_OUTPUT_PATH", "./output/observations.csv"),
		LastRunPath:    getEnv("LAST_RUN_PATH", "./output/last_run_date.txt"),

		RateOverrides: parseRates(getEnv("RATE_OVERRIDES", "")),

		ChromeBin: getEnv("CHROME_BIN", ""),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// parseRates parses "USD=3.64,GBP=4.60" into a code→multiplier map.
// Malformed entries are skipped.
func parseRates(raw string) map[string]float64 {
	rates := make(map[string]float64)
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			continue
		}
		val, err := strconv.ParseFloat(parts[1], 64)
		if err != nil || val <= 0 {
			continue
		}
		rates[strings.ToUpper(strings.TrimSpace(parts[0]))] = val
	}
	return rates
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
