package model

import (
	"net/url"

	"github.com/spf13/cast"
)

const (
	TripTypeRoundTrip = "roundTrip"
	TripTypeOneWay    = "oneWay"
)

const (
	CabinEconomy  = "economy"
	CabinPremium  = "premium"
	CabinBusiness = "business"
	CabinFirst    = "first"
)

// CabinClasses lists the fare tiers in display order.
func CabinClasses() []string {
	return []string{CabinEconomy, CabinPremium, CabinBusiness, CabinFirst}
}

// TripSelection is the immutable input of a checkout flow: which trips are
// being booked, for how many passengers, in which cabin. A ReturnTripId of
// zero means one way.
type TripSelection struct {
	TripType     string
	OutboundId   int
	ReturnTripId int
	Passengers   int
	CabinClass   string
}

// TripIds returns the identifiers to fetch from the catalog, outbound first.
func (s TripSelection) TripIds() []int {
	ids := make([]int, 0, 2)
	if s.OutboundId != 0 {
		ids = append(ids, s.OutboundId)
	}
	if s.ReturnTripId != 0 {
		ids = append(ids, s.ReturnTripId)
	}
	return ids
}

// ParseTripSelection reads a selection from navigation-style query
// parameters: tripType, tripone, triptwo (optional), passengers, cabinClass.
// Missing or malformed values degrade rather than fail: an absent tripone
// simply yields a selection with no trips, and the passenger count is
// clamped to at least one.
func ParseTripSelection(values url.Values) TripSelection {
	selection := TripSelection{
		TripType:     values.Get("tripType"),
		OutboundId:   cast.ToInt(values.Get("tripone")),
		ReturnTripId: cast.ToInt(values.Get("triptwo")),
		Passengers:   cast.ToInt(values.Get("passengers")),
		CabinClass:   values.Get("cabinClass"),
	}
	if selection.TripType != TripTypeRoundTrip {
		selection.TripType = TripTypeOneWay
	}
	if selection.TripType == TripTypeOneWay {
		selection.ReturnTripId = 0
	}
	if selection.Passengers < 1 {
		selection.Passengers = 1
	}
	if selection.CabinClass == "" {
		selection.CabinClass = CabinEconomy
	}
	return selection
}

// ParseTripSelectionQuery parses a raw query string, for deep-link entry.
func ParseTripSelectionQuery(query string) (TripSelection, error) {
	values, err := url.ParseQuery(query)
	if err != nil {
		return TripSelection{}, err
	}
	return ParseTripSelection(values), nil
}

// Query renders the selection back into the navigation-parameter format.
func (s TripSelection) Query() string {
	values := url.Values{}
	values.Set("tripType", s.TripType)
	if s.OutboundId != 0 {
		values.Set("tripone", cast.ToString(s.OutboundId))
	}
	if s.ReturnTripId != 0 {
		values.Set("triptwo", cast.ToString(s.ReturnTripId))
	}
	values.Set("passengers", cast.ToString(s.Passengers))
	values.Set("cabinClass", s.CabinClass)
	return values.Encode()
}
