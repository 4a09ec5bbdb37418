package fareprovider

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Tariff is one priced connection in a fare book.
// A nil TravelDate makes it the default for every day without a dated entry.
type Tariff struct {
	ID          uuid.UUID
	Origin      string
	Destination string
	TravelDate  *time.Time
	Price       float64
}

// TariffBook is a Provider backed by a table of tariffs.
type TariffBook interface {
	Provider
	PutTariff(ctx context.Context, t Tariff) error
}

// Validate checks the fields every book requires.
func (t Tariff) Validate() error {
	if strings.TrimSpace(t.Origin) == "" || strings.TrimSpace(t.Destination) == "" {
		return ErrInvalidTariff
	}
	if t.Price <= 0 {
		return ErrInvalidTariff
	}
	return nil
}

// StationKey folds a station name for lookups. Books store and query this key
// as computed here so every backend trims the same Unicode whitespace.
func StationKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// TravelDay truncates t to its calendar day in t's own location, expressed in UTC.
func TravelDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
