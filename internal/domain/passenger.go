package domain

import "fmt"

type DiscountCard string

const (
	DiscountCardSenior      DiscountCard = "Senior"
	DiscountCardTrainStroke DiscountCard = "TrainStroke" // staff card
	DiscountCardCouple      DiscountCard = "Couple"
	DiscountCardHalfCouple  DiscountCard = "HalfCouple"
	DiscountCardFamily      DiscountCard = "Family"
)

// DiscountCards lists every known card in a stable order.
func DiscountCards() []DiscountCard {
	return []DiscountCard{
		DiscountCardSenior,
		DiscountCardTrainStroke,
		DiscountCardCouple,
		DiscountCardHalfCouple,
		DiscountCardFamily,
	}
}

// ParseDiscountCard maps a wire tag to a DiscountCard.
func ParseDiscountCard(s string) (DiscountCard, error) {
	for _, c := range DiscountCards() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown discount card %q", s)
}

// Passenger is a traveller in a TripRequest.
//
// Age is in years and may be fractional (0.5 is a six month old). A negative
// age is accepted here and rejected when the request is priced.
type Passenger struct {
	ID   PassengerID
	Name string

	// FamilyGroup explicitly links passengers travelling on one Family card.
	// When empty, Name is used as the grouping key.
	FamilyGroup string

	Age           float64
	DiscountCards []DiscountCard
}

func (p Passenger) HasCard(c DiscountCard) bool {
	for _, have := range p.DiscountCards {
		if have == c {
			return true
		}
	}
	return false
}

// FamilyKey is the label used to group this passenger with Family card holders.
// An empty key never matches another passenger.
func (p Passenger) FamilyKey() string {
	if g := NormalizeHumanName(p.FamilyGroup); g != "" {
		return "group:" + g
	}
	if n := NormalizeHumanName(p.Name); n != "" {
		return "name:" + n
	}
	return ""
}
