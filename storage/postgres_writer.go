package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"cpi-scraper/models"
)

// PostgresWriter archives every observation into an append-only history
// table, so price series survive workbook edits.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS price_observations (
			id          SERIAL PRIMARY KEY,
			route_code  VARCHAR(20)  NOT NULL,
			source      TEXT         NOT NULL,
			source_code VARCHAR(20)  NOT NULL DEFAULT '',
			airline     TEXT         NOT NULL DEFAULT '',
			price       INTEGER      NOT NULL,
			currency    VARCHAR(8)   NOT NULL,
			captured_at TIMESTAMPTZ  NOT NULL,
			created_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_observations_route    ON price_observations(route_code);
		CREATE INDEX IF NOT EXISTS idx_observations_captured ON price_observations(captured_at);
	`)
	return err
}

// WriteObservations batch-inserts the run's observations. The table is
// append-only: history is never rewritten.
func (pw *PostgresWriter) WriteObservations(obs []models.PriceObservation) error {
	if len(obs) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(obs); i += batchSize {
		end := i + batchSize
		if end > len(obs) {
			end = len(obs)
		}
		if err := pw.insertBatch(obs[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []models.PriceObservation) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*7)

	for idx, o := range batch {
		base := idx * 7
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7))
		valueArgs = append(valueArgs,
			o.RouteCode, o.Source, o.SourceCode, o.Airline, o.Price, o.Currency, o.Timestamp)
	}

	query := fmt.Sprintf(`
		INSERT INTO price_observations (route_code, source, source_code, airline, price, currency, captured_at)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	return err
}

// FetchRouteHistory retrieves the archived observations for one route,
// oldest first.
func (pw *PostgresWriter) FetchRouteHistory(routeCode string) ([]models.PriceObservation, error) {
	rows, err := pw.db.Query(`
		SELECT route_code, source, source_code, airline, price, currency, captured_at
		FROM price_observations
		WHERE route_code = $1
		ORDER BY captured_at
	`, routeCode)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch history: %w", err)
	}
	defer rows.Close()

	var obs []models.PriceObservation
	for rows.Next() {
		var o models.PriceObservation
		if err := rows.Scan(
			&o.RouteCode, &o.Source, &o.SourceCode, &o.Airline,
			&o.Price, &o.Currency, &o.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		obs = append(obs, o)
	}
	return obs, rows.Err()
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
