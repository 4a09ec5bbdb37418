package estimator

import "github.com/railquote/fare-estimator-api/internal/domain"

// familyMembers returns the passengers covered by a Family card in ps.
//
// A card holder always covers themselves. Other passengers join when their
// family key (explicit group, else name) equals a holder's key.
func familyMembers(ps []domain.Passenger) map[domain.PassengerID]bool {
	keys := make(map[string]bool)
	out := make(map[domain.PassengerID]bool)
	for _, p := range ps {
		if !p.HasCard(domain.DiscountCardFamily) {
			continue
		}
		out[p.ID] = true
		if k := p.FamilyKey(); k != "" {
			keys[k] = true
		}
	}
	for _, p := range ps {
		if k := p.FamilyKey(); k != "" && keys[k] {
			out[p.ID] = true
		}
	}
	return out
}
