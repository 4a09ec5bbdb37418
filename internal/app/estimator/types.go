package estimator

import "github.com/railquote/fare-estimator-api/internal/domain"

// Line is the price contributed by one passenger.
type Line struct {
	PassengerID domain.PassengerID
	Price       float64

	// Newborn passengers travel free and skip every other rule.
	Newborn      bool
	FamilyMember bool
}

// Quote is the full result of pricing a TripRequest.
type Quote struct {
	BaseFare float64
	Lines    []Line

	// GroupAdjustment is the couple or half-couple reduction (zero or negative).
	GroupAdjustment float64
	Total           float64
}
