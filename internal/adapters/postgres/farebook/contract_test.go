package farebook

import (
	"context"
	"testing"
	"time"

	"github.com/railquote/fare-estimator-api/internal/adapters/contracttest"
	"github.com/railquote/fare-estimator-api/internal/adapters/postgres/testutil"
	"github.com/railquote/fare-estimator-api/internal/domain"
	"github.com/railquote/fare-estimator-api/internal/ports/out/fareprovider"
)

func TestContract_PostgresTariffBook(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunTariffBook(t, func(t *testing.T) (fareprovider.TariffBook, func()) {
		t.Helper()
		return NewBook(pool), nil
	})
}

func TestBook_NilPool(t *testing.T) {
	t.Parallel()

	b := NewBook(nil)
	got, err := b.FetchBaseFare(context.Background(), domain.TripDetails{Origin: "Lille", Destination: "Paris", TravelDate: time.Now()})
	if err == nil || got != fareprovider.Unavailable {
		t.Fatalf("fare=%v err=%v, want sentinel and error", got, err)
	}
}
