package estimator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/railquote/fare-estimator-api/internal/domain"
	clockport "github.com/railquote/fare-estimator-api/internal/ports/out/clock"
	"github.com/railquote/fare-estimator-api/internal/ports/out/fareprovider"
)

type Service struct {
	fares fareprovider.Provider
	clk   clockport.Clock
	log   *zap.Logger
}

// NewService wires the estimator. A nil logger discards output.
func NewService(fares fareprovider.Provider, clk clockport.Clock, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		fares: fares,
		clk:   clk,
		log:   log.Named("estimator"),
	}
}

// Estimate returns the total price of req.
func (s *Service) Estimate(ctx context.Context, req domain.TripRequest) (float64, error) {
	q, err := s.Quote(ctx, req)
	if err != nil {
		return 0, err
	}
	return q.Total, nil
}

// Quote prices req and returns the per-passenger breakdown along with the total.
//
// An empty passenger list is always free and is not validated. Otherwise the
// trip is validated, the base fare fetched once, and each passenger priced in
// order; a negative age stops pricing at that passenger.
func (s *Service) Quote(ctx context.Context, req domain.TripRequest) (Quote, error) {
	if len(req.Passengers) == 0 {
		return Quote{Lines: []Line{}}, nil
	}

	now := s.clk.Now()
	if err := validateTrip(req.Details, now); err != nil {
		s.log.Debug("trip rejected", zap.String("reason", err.Message))
		return Quote{}, err
	}

	base, err := s.fetchBaseFare(ctx, req.Details)
	if err != nil {
		return Quote{}, err
	}

	passengers := domain.AssignPassengerIDs(req.Passengers)
	family := familyMembers(passengers)
	window := windowBetween(now, req.Details.TravelDate)

	q := Quote{BaseFare: base, Lines: make([]Line, 0, len(passengers))}
	var flags groupFlags
	for _, p := range passengers {
		if p.Age < 0 {
			s.log.Debug("passenger rejected", zap.String("passenger_id", string(p.ID)), zap.Float64("age", p.Age))
			return Quote{}, invalidInput(ReasonAge, map[string]any{"passengerId": string(p.ID)})
		}
		if isNewborn(p.Age) {
			q.Lines = append(q.Lines, Line{PassengerID: p.ID, Newborn: true})
			continue
		}

		member := family[p.ID]
		price := applyAgeTier(p, base, base, member)
		price = applyAdvancePurchase(price, base, window)
		price = applyOverrides(p, price, base, member)

		q.Total += price
		q.Lines = append(q.Lines, Line{PassengerID: p.ID, Price: price, FamilyMember: member})
		flags.observe(p, member, len(passengers))
	}

	q.GroupAdjustment = flags.adjustment(base)
	q.Total += q.GroupAdjustment

	s.log.Debug("trip priced",
		zap.Float64("base_fare", base),
		zap.Int("passengers", len(passengers)),
		zap.Int("days_to_travel", window.Days),
		zap.Float64("group_adjustment", q.GroupAdjustment),
		zap.Float64("total", q.Total),
	)
	return q, nil
}

func (s *Service) fetchBaseFare(ctx context.Context, trip domain.TripDetails) (float64, error) {
	base, err := s.fares.FetchBaseFare(ctx, trip)
	if err != nil || !fareprovider.IsUsable(base) {
		s.log.Warn("base fare unavailable",
			zap.String("origin", trip.Origin),
			zap.String("destination", trip.Destination),
			zap.Float64("fare", base),
			zap.Error(err),
		)
		return 0, apiFailure(err)
	}
	return base, nil
}

func validateTrip(d domain.TripDetails, now time.Time) *Error {
	if domain.IsBlank(d.Origin) {
		return invalidInput(ReasonStartCity, map[string]any{"field": "origin"})
	}
	if domain.IsBlank(d.Destination) {
		return invalidInput(ReasonDestination, map[string]any{"field": "destination"})
	}
	if d.TravelDate.Before(startOfDay(now)) {
		return invalidInput(ReasonDate, map[string]any{"field": "travelDate"})
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
