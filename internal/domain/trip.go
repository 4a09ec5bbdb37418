package domain

import "time"

// TripDetails describes the journey being priced.
type TripDetails struct {
	Origin      string
	Destination string
	TravelDate  time.Time
}

// TripRequest is one estimate call: a trip and the passengers travelling on it.
// Passenger order does not change the price, only the order rules are evaluated in.
type TripRequest struct {
	Details    TripDetails
	Passengers []Passenger
}
