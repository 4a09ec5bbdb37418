package farebook

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/railquote/fare-estimator-api/internal/adapters/postgres"
	"github.com/railquote/fare-estimator-api/internal/domain"
	"github.com/railquote/fare-estimator-api/internal/ports/out/fareprovider"
)

// Book is a Postgres implementation of fareprovider.TariffBook backed by base_fares.
type Book struct {
	pool *pgxpool.Pool
}

func NewBook(pool *pgxpool.Pool) *Book {
	return &Book{pool: pool}
}

func (b *Book) PutTariff(ctx context.Context, t fareprovider.Tariff) error {
	if b.pool == nil {
		return errors.New("nil postgres pool")
	}
	if err := t.Validate(); err != nil {
		return err
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	originKey := fareprovider.StationKey(t.Origin)
	destinationKey := fareprovider.StationKey(t.Destination)
	var day any
	if t.TravelDate != nil {
		day = fareprovider.TravelDay(*t.TravelDate)
	}

	return pgx.BeginFunc(ctx, b.pool, func(tx pgx.Tx) error {
		// A row for the same route and day under another id is replaced.
		_, err := tx.Exec(ctx, `
			DELETE FROM base_fares
			WHERE id <> $1
			  AND origin_key = $2
			  AND destination_key = $3
			  AND travel_date IS NOT DISTINCT FROM $4::date
		`, t.ID, originKey, destinationKey, day)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO base_fares (id, origin, destination, origin_key, destination_key, travel_date, price)
			VALUES ($1, $2, $3, $4, $5, $6::date, $7)
			ON CONFLICT (id) DO UPDATE SET
				origin = EXCLUDED.origin,
				destination = EXCLUDED.destination,
				origin_key = EXCLUDED.origin_key,
				destination_key = EXCLUDED.destination_key,
				travel_date = EXCLUDED.travel_date,
				price = EXCLUDED.price,
				updated_at = now()
		`, t.ID, t.Origin, t.Destination, originKey, destinationKey, day, t.Price)
		if err != nil {
			if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.CheckViolationCode {
				return fareprovider.ErrInvalidTariff
			}
			return err
		}
		return nil
	})
}

// FetchBaseFare returns the dated tariff for the travel day if one exists, else the route default.
func (b *Book) FetchBaseFare(ctx context.Context, trip domain.TripDetails) (float64, error) {
	if b.pool == nil {
		return fareprovider.Unavailable, errors.New("nil postgres pool")
	}

	var price float64
	err := b.pool.QueryRow(ctx, `
		SELECT price
		FROM base_fares
		WHERE origin_key = $1
		  AND destination_key = $2
		  AND (travel_date = $3::date OR travel_date IS NULL)
		ORDER BY travel_date NULLS LAST
		LIMIT 1
	`,
		fareprovider.StationKey(trip.Origin),
		fareprovider.StationKey(trip.Destination),
		fareprovider.TravelDay(trip.TravelDate),
	).Scan(&price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fareprovider.Unavailable, fareprovider.ErrNoFare
		}
		return fareprovider.Unavailable, fmt.Errorf("query base fare: %w", err)
	}
	return price, nil
}
