package contracttest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/railquote/fare-estimator-api/internal/domain"
	"github.com/railquote/fare-estimator-api/internal/ports/out/fareprovider"
)

type CleanupFunc = func()

type TariffBookFactory func(t *testing.T) (fareprovider.TariffBook, CleanupFunc)

func day(y int, m time.Month, d int) *time.Time {
	v := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &v
}

func trip(origin, destination string, at time.Time) domain.TripDetails {
	return domain.TripDetails{Origin: origin, Destination: destination, TravelDate: at}
}

// RunTariffBook exercises the lookup rules every tariff-backed fare provider must follow.
func RunTariffBook(t *testing.T, newBook TariffBookFactory) {
	t.Helper()
	ctx := context.Background()

	book, cleanup := newBook(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	// Station names are unique per run so a shared database never leaks rows between suites.
	suffix := uuid.NewString()[:8]
	origin := "Lyon Part-Dieu " + suffix
	destination := "Marseille St-Charles " + suffix

	seed := []fareprovider.Tariff{
		{ID: uuid.New(), Origin: origin, Destination: destination, Price: 64},
		{ID: uuid.New(), Origin: origin, Destination: destination, TravelDate: day(2026, time.July, 14), Price: 112.5},
	}
	for _, tr := range seed {
		if err := book.PutTariff(ctx, tr); err != nil {
			t.Fatalf("PutTariff: %v", err)
		}
	}

	t.Run("default tariff applies to undated days", func(t *testing.T) {
		got, err := book.FetchBaseFare(ctx, trip(origin, destination, time.Date(2026, time.May, 3, 10, 15, 0, 0, time.UTC)))
		if err != nil {
			t.Fatalf("FetchBaseFare: %v", err)
		}
		if got != 64 {
			t.Fatalf("fare=%v, want 64", got)
		}
	})

	t.Run("dated tariff wins on its day", func(t *testing.T) {
		got, err := book.FetchBaseFare(ctx, trip(origin, destination, time.Date(2026, time.July, 14, 23, 59, 0, 0, time.UTC)))
		if err != nil {
			t.Fatalf("FetchBaseFare: %v", err)
		}
		if got != 112.5 {
			t.Fatalf("fare=%v, want 112.5", got)
		}
	})

	t.Run("day is taken in the travel date's location", func(t *testing.T) {
		paris := time.FixedZone("CEST", 2*60*60)
		// 00:30 local on the 14th is still the 13th in UTC.
		got, err := book.FetchBaseFare(ctx, trip(origin, destination, time.Date(2026, time.July, 14, 0, 30, 0, 0, paris)))
		if err != nil {
			t.Fatalf("FetchBaseFare: %v", err)
		}
		if got != 112.5 {
			t.Fatalf("fare=%v, want 112.5", got)
		}
	})

	t.Run("station names are matched loosely", func(t *testing.T) {
		got, err := book.FetchBaseFare(ctx, trip("  "+strings.ToUpper(origin)+" ", destination, time.Date(2026, time.May, 3, 0, 0, 0, 0, time.UTC)))
		if err != nil {
			t.Fatalf("FetchBaseFare: %v", err)
		}
		if got != 64 {
			t.Fatalf("fare=%v, want 64", got)
		}
	})

	t.Run("tabs and newlines around station names are ignored", func(t *testing.T) {
		got, err := book.FetchBaseFare(ctx, trip("\t"+origin+"\n", "\r\n"+destination+"\t", time.Date(2026, time.May, 3, 0, 0, 0, 0, time.UTC)))
		if err != nil {
			t.Fatalf("FetchBaseFare: %v", err)
		}
		if got != 64 {
			t.Fatalf("fare=%v, want 64", got)
		}
	})

	t.Run("stored names with surrounding whitespace match trimmed lookups", func(t *testing.T) {
		padded := fareprovider.Tariff{ID: uuid.New(), Origin: origin + "\t", Destination: "\n" + destination, TravelDate: day(2026, time.August, 1), Price: 71}
		if err := book.PutTariff(ctx, padded); err != nil {
			t.Fatalf("PutTariff: %v", err)
		}
		got, err := book.FetchBaseFare(ctx, trip(origin, destination, time.Date(2026, time.August, 1, 9, 0, 0, 0, time.UTC)))
		if err != nil || got != 71 {
			t.Fatalf("fare=%v err=%v, want 71", got, err)
		}
	})

	t.Run("direction matters", func(t *testing.T) {
		got, err := book.FetchBaseFare(ctx, trip(destination, origin, time.Date(2026, time.May, 3, 0, 0, 0, 0, time.UTC)))
		if !errors.Is(err, fareprovider.ErrNoFare) {
			t.Fatalf("err=%v, want ErrNoFare", err)
		}
		if got != fareprovider.Unavailable {
			t.Fatalf("fare=%v, want sentinel", got)
		}
	})

	t.Run("overwrite by id", func(t *testing.T) {
		updated := seed[0]
		updated.Price = 70
		if err := book.PutTariff(ctx, updated); err != nil {
			t.Fatalf("PutTariff overwrite: %v", err)
		}
		got, err := book.FetchBaseFare(ctx, trip(origin, destination, time.Date(2026, time.May, 3, 0, 0, 0, 0, time.UTC)))
		if err != nil || got != 70 {
			t.Fatalf("fare=%v err=%v, want 70", got, err)
		}
	})

	t.Run("invalid tariffs are rejected", func(t *testing.T) {
		bad := []fareprovider.Tariff{
			{ID: uuid.New(), Origin: " ", Destination: destination, Price: 10},
			{ID: uuid.New(), Origin: origin, Destination: destination, Price: 0},
		}
		for _, tr := range bad {
			if err := book.PutTariff(ctx, tr); !errors.Is(err, fareprovider.ErrInvalidTariff) {
				t.Fatalf("PutTariff(%+v) err=%v, want ErrInvalidTariff", tr, err)
			}
		}
	})

	t.Run("concurrent lookups", func(t *testing.T) {
		var wg sync.WaitGroup
		errs := make(chan error, 16)
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := book.FetchBaseFare(ctx, trip(origin, destination, time.Date(2026, time.July, 14, 8, 0, 0, 0, time.UTC))); err != nil {
					errs <- err
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			t.Fatalf("concurrent FetchBaseFare: %v", err)
		}
	})
}
