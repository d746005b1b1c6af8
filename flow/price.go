package flow

import (
	"errors"

	"skybook-cli/model"
)

const (
	taxRate    = 0.08
	serviceFee = 24.99
)

// ErrNoTrips is returned by price derivation when no fares are available.
var ErrNoTrips = errors.New("no trips available")

// PriceBreakdown is the derived pricing of a booking. It is always computed
// on demand from the current fares and passenger count, never stored.
type PriceBreakdown struct {
	BasePrice  float64
	Tax        float64
	ServiceFee float64
	Total      float64
}

// ComputePrice derives the breakdown: base = sum of fare prices across trips
// multiplied by the passenger count, tax = 8% of base, plus a fixed service
// fee. Values are kept unrounded; rounding happens at display time only.
func ComputePrice(fares []model.Trip, passengerCount int) (PriceBreakdown, error) {
	if len(fares) == 0 {
		return PriceBreakdown{}, ErrNoTrips
	}

	perPassenger := 0.0
	for _, fare := range fares {
		perPassenger += fare.Price
	}

	base := perPassenger * float64(passengerCount)
	tax := base * taxRate
	return PriceBreakdown{
		BasePrice:  base,
		Tax:        tax,
		ServiceFee: serviceFee,
		Total:      base + tax + serviceFee,
	}, nil
}
