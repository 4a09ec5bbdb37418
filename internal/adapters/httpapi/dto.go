package httpapi

import (
	"strings"
	"time"

	"github.com/oapi-codegen/nullable"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/railquote/fare-estimator-api/internal/app/estimator"
	"github.com/railquote/fare-estimator-api/internal/domain"
)

const currencyEUR = "EUR"

type PassengerRequest struct {
	Id            *openapi_types.UUID       `json:"id,omitempty"`
	Age           *float64                  `json:"age" validate:"required"`
	DiscountCards []string                  `json:"discountCards" validate:"omitempty,dive,discount_card"`
	Name          nullable.Nullable[string] `json:"name,omitempty"`
	FamilyGroup   nullable.Nullable[string] `json:"familyGroup,omitempty"`
}

// EstimateRequest is the body of POST /estimates.
// Blank cities and a missing travel date are left to the estimator, which reports them with its own reasons.
type EstimateRequest struct {
	Origin      string             `json:"origin"`
	Destination string             `json:"destination"`
	TravelDate  time.Time          `json:"travelDate"`
	Passengers  []PassengerRequest `json:"passengers" validate:"dive"`
}

type LineResponse struct {
	PassengerId  string  `json:"passengerId"`
	Price        float64 `json:"price"`
	Newborn      bool    `json:"newborn"`
	FamilyMember bool    `json:"familyMember"`
}

type EstimateResponse struct {
	Total           float64        `json:"total"`
	Currency        string         `json:"currency"`
	PassengerCount  int            `json:"passengerCount"`
	BaseFare        float64        `json:"baseFare"`
	GroupAdjustment float64        `json:"groupAdjustment"`
	Lines           []LineResponse `json:"lines"`
}

func (in EstimateRequest) toDomain() (domain.TripRequest, error) {
	out := domain.TripRequest{
		Details: domain.TripDetails{
			Origin:      in.Origin,
			Destination: in.Destination,
			TravelDate:  in.TravelDate,
		},
		Passengers: make([]domain.Passenger, 0, len(in.Passengers)),
	}
	for _, p := range in.Passengers {
		dp := domain.Passenger{
			Name:        optionalString(p.Name),
			FamilyGroup: optionalString(p.FamilyGroup),
		}
		if p.Id != nil {
			dp.ID = domain.PassengerID(p.Id.String())
		}
		if p.Age != nil {
			dp.Age = *p.Age
		}
		for _, raw := range p.DiscountCards {
			c, err := domain.ParseDiscountCard(raw)
			if err != nil {
				return domain.TripRequest{}, err
			}
			dp.DiscountCards = append(dp.DiscountCards, c)
		}
		out.Passengers = append(out.Passengers, dp)
	}
	return out, nil
}

func optionalString(v nullable.Nullable[string]) string {
	s, err := v.Get()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func toEstimateResponse(q estimator.Quote) EstimateResponse {
	lines := make([]LineResponse, 0, len(q.Lines))
	for _, l := range q.Lines {
		lines = append(lines, LineResponse{
			PassengerId:  string(l.PassengerID),
			Price:        l.Price,
			Newborn:      l.Newborn,
			FamilyMember: l.FamilyMember,
		})
	}
	return EstimateResponse{
		Total:           q.Total,
		Currency:        currencyEUR,
		PassengerCount:  len(q.Lines),
		BaseFare:        q.BaseFare,
		GroupAdjustment: q.GroupAdjustment,
		Lines:           lines,
	}
}
