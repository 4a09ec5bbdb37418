package farebook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/railquote/fare-estimator-api/internal/domain"
	"github.com/railquote/fare-estimator-api/internal/ports/out/fareprovider"
)

type routeKey struct {
	origin      string
	destination string
	day         time.Time // zero for the default tariff
}

func keyOf(t fareprovider.Tariff) routeKey {
	k := routeKey{origin: fareprovider.StationKey(t.Origin), destination: fareprovider.StationKey(t.Destination)}
	if t.TravelDate != nil {
		k.day = fareprovider.TravelDay(*t.TravelDate)
	}
	return k
}

// Book is an in-memory implementation of fareprovider.TariffBook.
// It is safe for concurrent use.
type Book struct {
	mu sync.RWMutex

	byID  map[uuid.UUID]fareprovider.Tariff
	route map[routeKey]uuid.UUID
}

func NewBook() *Book {
	return &Book{
		byID:  make(map[uuid.UUID]fareprovider.Tariff),
		route: make(map[routeKey]uuid.UUID),
	}
}

// PutTariff inserts t, replacing any tariff with the same ID or the same route and day.
func (b *Book) PutTariff(ctx context.Context, t fareprovider.Tariff) error {
	_ = ctx
	if err := t.Validate(); err != nil {
		return err
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.TravelDate != nil {
		d := fareprovider.TravelDay(*t.TravelDate)
		t.TravelDate = &d
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if prev, ok := b.byID[t.ID]; ok {
		delete(b.route, keyOf(prev))
	}
	k := keyOf(t)
	if other, ok := b.route[k]; ok {
		delete(b.byID, other)
	}
	b.byID[t.ID] = t
	b.route[k] = t.ID
	return nil
}

func (b *Book) FetchBaseFare(ctx context.Context, trip domain.TripDetails) (float64, error) {
	_ = ctx
	k := routeKey{
		origin:      fareprovider.StationKey(trip.Origin),
		destination: fareprovider.StationKey(trip.Destination),
		day:         fareprovider.TravelDay(trip.TravelDate),
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if id, ok := b.route[k]; ok {
		return b.byID[id].Price, nil
	}
	k.day = time.Time{}
	if id, ok := b.route[k]; ok {
		return b.byID[id].Price, nil
	}
	return fareprovider.Unavailable, fareprovider.ErrNoFare
}

// Len returns the number of stored tariffs.
func (b *Book) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.byID)
}

type tariffJSON struct {
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	TravelDate  string  `json:"travelDate,omitempty"`
	Price       float64 `json:"price"`
}

// LoadJSON reads a JSON array of tariffs into b. travelDate, when present, is YYYY-MM-DD.
func (b *Book) LoadJSON(ctx context.Context, r io.Reader) error {
	var rows []tariffJSON
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return fmt.Errorf("decode tariffs: %w", err)
	}
	for i, row := range rows {
		t := fareprovider.Tariff{
			ID:          uuid.New(),
			Origin:      row.Origin,
			Destination: row.Destination,
			Price:       row.Price,
		}
		if row.TravelDate != "" {
			d, err := time.Parse(time.DateOnly, row.TravelDate)
			if err != nil {
				return fmt.Errorf("tariff %d: invalid travelDate: %w", i, err)
			}
			t.TravelDate = &d
		}
		if err := b.PutTariff(ctx, t); err != nil {
			return fmt.Errorf("tariff %d: %w", i, err)
		}
	}
	return nil
}
