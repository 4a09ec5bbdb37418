package domain

import "github.com/google/uuid"

// PassengerID identifies a passenger within a single estimate request.
// It carries no meaning across requests.
type PassengerID string

// NewPassengerID returns a random identifier.
func NewPassengerID() PassengerID {
	return PassengerID(uuid.NewString())
}

// AssignPassengerIDs returns a copy of ps in which every passenger has an ID
// unique within the slice. Blank IDs and repeats of an earlier ID get a fresh one.
func AssignPassengerIDs(ps []Passenger) []Passenger {
	out := make([]Passenger, len(ps))
	seen := make(map[PassengerID]bool, len(ps))
	for i, p := range ps {
		if p.ID == "" || seen[p.ID] {
			p.ID = NewPassengerID()
		}
		seen[p.ID] = true
		out[i] = p
	}
	return out
}
