package fareprovider

import "errors"

var (
	ErrNoFare        = errors.New("no fare for trip")
	ErrInvalidTariff = errors.New("invalid tariff")
)
