package storage

import "cpi-scraper/models"

// ObservationWriter is the interface any observation sink must satisfy.
type ObservationWriter interface {
	WriteObservations(obs []models.PriceObservation) error
	Close() error
}
