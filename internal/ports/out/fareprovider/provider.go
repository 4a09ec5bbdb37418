package fareprovider

import (
	"context"

	"github.com/railquote/fare-estimator-api/internal/domain"
)

// Unavailable is the base fare value signalling that no usable price exists.
const Unavailable float64 = -1

// Provider supplies the single reference price for a trip.
//
// Implementations return Unavailable (with or without an error) when the upstream
// cannot price the trip. Any non-negative value is a base fare shared by every
// passenger of the request.
type Provider interface {
	FetchBaseFare(ctx context.Context, trip domain.TripDetails) (float64, error)
}

// Func adapts a plain function to Provider.
type Func func(ctx context.Context, trip domain.TripDetails) (float64, error)

func (f Func) FetchBaseFare(ctx context.Context, trip domain.TripDetails) (float64, error) {
	return f(ctx, trip)
}

// IsUsable reports whether fare can be used as a base fare.
func IsUsable(fare float64) bool {
	return fare >= 0
}
