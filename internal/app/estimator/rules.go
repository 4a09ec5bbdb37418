package estimator

import (
	"math"
	"time"

	"github.com/railquote/fare-estimator-api/internal/domain"
)

// Ratios are fractions of the base fare.
const (
	discount10Percent = 0.1
	discount20Percent = 0.2
	discount30Percent = 0.3
	discount40Percent = 0.4
	increase20Percent = 0.2
	increase2Percent  = 0.02

	infantFare = 9.0
	staffFare  = 1.0
)

// Age brackets, in years.
const (
	newbornAgeBelow = 1
	infantAgeBelow  = 4
	minorAgeMax     = 17
	minorAgeBelow   = 18
	seniorAgeMin    = 70
)

// Advance-purchase tiers.
const (
	earlyBookingDays = 30
	rampAfterDays    = 5
	rampPivotDays    = 20
	lastMinuteHours  = 6
)

func isNewborn(age float64) bool { return age < newbornAgeBelow }

// isInfant covers everything above zero; newborns are filtered before this is asked.
func isInfant(age float64) bool { return age > 0 && age < infantAgeBelow }

func isMinorTier(age float64) bool { return age <= minorAgeMax }

func isMinor(age float64) bool { return age < minorAgeBelow }

func isSenior(age float64) bool { return age >= seniorAgeMin }

func applyAgeTier(p domain.Passenger, price, base float64, familyMember bool) float64 {
	switch {
	case isMinorTier(p.Age):
		price -= base * discount40Percent
	case isSenior(p.Age):
		price -= base * discount20Percent
		if p.HasCard(domain.DiscountCardSenior) && !familyMember {
			price -= base * discount20Percent
		}
	default:
		price += base * increase20Percent
	}
	return price
}

// bookingWindow is the distance between now and departure, rounded up.
type bookingWindow struct {
	Days  int
	Hours int
}

func windowBetween(now, travel time.Time) bookingWindow {
	d := travel.Sub(now)
	if d < 0 {
		d = -d
	}
	return bookingWindow{
		Days:  int(math.Ceil(float64(d) / float64(24*time.Hour))),
		Hours: int(math.Ceil(float64(d) / float64(time.Hour))),
	}
}

func applyAdvancePurchase(price, base float64, w bookingWindow) float64 {
	switch {
	case w.Days >= earlyBookingDays:
		price -= base * discount20Percent
	case w.Days > rampAfterDays:
		price += float64(rampPivotDays-w.Days) * increase2Percent * base
	case w.Hours > lastMinuteHours:
		price += base
	default:
		// Departures within a few hours are cheaper than 1-5 days out.
		price -= base * discount20Percent
	}
	return price
}

func applyOverrides(p domain.Passenger, price, base float64, familyMember bool) float64 {
	if isInfant(p.Age) {
		price = infantFare
	}
	if p.HasCard(domain.DiscountCardTrainStroke) {
		price = staffFare
	}
	if familyMember {
		price -= base * discount30Percent
	}
	return price
}

// groupFlags accumulates the request-wide facts the group discounts depend on.
// Every field is only ever switched on, so the result does not depend on order.
type groupFlags struct {
	minor      bool
	couple     bool
	halfCouple bool
}

func (g *groupFlags) observe(p domain.Passenger, familyMember bool, groupSize int) {
	if isMinor(p.Age) {
		g.minor = true
	}
	if groupSize == 2 && p.HasCard(domain.DiscountCardCouple) && !familyMember {
		g.couple = true
	}
	if groupSize == 1 && p.HasCard(domain.DiscountCardHalfCouple) && !familyMember {
		g.halfCouple = true
	}
}

// adjustment returns the amount to add to the summed passenger prices.
func (g groupFlags) adjustment(base float64) float64 {
	if g.minor {
		return 0
	}
	switch {
	case g.couple:
		return -(base * discount20Percent * 2)
	case g.halfCouple:
		return -(base * discount10Percent)
	}
	return 0
}
