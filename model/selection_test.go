package model

import (
	"net/url"
	"testing"
)

func TestParseTripSelection_RoundTrip(t *testing.T) {
	values := url.Values{}
	values.Set("tripType", TripTypeRoundTrip)
	values.Set("tripone", "501")
	values.Set("triptwo", "502")
	values.Set("passengers", "2")
	values.Set("cabinClass", CabinBusiness)

	selection := ParseTripSelection(values)
	if selection.TripType != TripTypeRoundTrip {
		t.Fatalf("unexpected trip type: %q", selection.TripType)
	}
	if selection.OutboundId != 501 || selection.ReturnTripId != 502 {
		t.Fatalf("unexpected trip ids: %+v", selection)
	}
	if selection.Passengers != 2 || selection.CabinClass != CabinBusiness {
		t.Fatalf("unexpected selection: %+v", selection)
	}
	if ids := selection.TripIds(); len(ids) != 2 || ids[0] != 501 || ids[1] != 502 {
		t.Fatalf("unexpected trip ids: %v", ids)
	}
}

func TestParseTripSelection_DegradesMalformedValues(t *testing.T) {
	values := url.Values{}
	values.Set("tripType", "weird")
	values.Set("tripone", "abc")
	values.Set("passengers", "-3")

	selection := ParseTripSelection(values)
	if selection.TripType != TripTypeOneWay {
		t.Fatalf("expected one way fallback, got %q", selection.TripType)
	}
	if selection.OutboundId != 0 {
		t.Fatalf("expected no outbound id, got %d", selection.OutboundId)
	}
	if selection.Passengers != 1 {
		t.Fatalf("expected passenger count clamped to 1, got %d", selection.Passengers)
	}
	if selection.CabinClass != CabinEconomy {
		t.Fatalf("expected economy fallback, got %q", selection.CabinClass)
	}
	if ids := selection.TripIds(); len(ids) != 0 {
		t.Fatalf("expected no trip ids, got %v", ids)
	}
}

func TestParseTripSelection_OneWayDropsReturnTrip(t *testing.T) {
	values := url.Values{}
	values.Set("tripType", TripTypeOneWay)
	values.Set("tripone", "501")
	values.Set("triptwo", "502")

	selection := ParseTripSelection(values)
	if selection.ReturnTripId != 0 {
		t.Fatalf("expected return trip dropped for one way, got %d", selection.ReturnTripId)
	}
}

func TestParseTripSelectionQuery(t *testing.T) {
	selection, err := ParseTripSelectionQuery("tripType=roundTrip&tripone=501&triptwo=502&passengers=2&cabinClass=economy")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if selection.OutboundId != 501 || selection.ReturnTripId != 502 || selection.Passengers != 2 {
		t.Fatalf("unexpected selection: %+v", selection)
	}

	if _, err := ParseTripSelectionQuery("%zz"); err == nil {
		t.Fatal("expected error for malformed query")
	}
}

func TestSelectionQuery_RoundTrips(t *testing.T) {
	selection := TripSelection{
		TripType:     TripTypeRoundTrip,
		OutboundId:   501,
		ReturnTripId: 502,
		Passengers:   2,
		CabinClass:   CabinFirst,
	}
	parsed, err := ParseTripSelectionQuery(selection.Query())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if parsed != selection {
		t.Fatalf("expected %+v, got %+v", selection, parsed)
	}
}
