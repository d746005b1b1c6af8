package model

import (
	"fmt"
	"time"
)

type Airline struct {
	Id   int    `json:"id"`
	Name string `json:"name"`
}

type Flight struct {
	Id           int     `json:"id"`
	FlightNumber string  `json:"flight_number"`
	Airline      Airline `json:"airline_id"`
}

// Trip is one scheduled flight leg with fare and seat-inventory data, as
// projected by the catalog.
type Trip struct {
	Id                  int       `json:"id"`
	Flight              Flight    `json:"flight_id"`
	Departure           time.Time `json:"departure"`
	Arrival             time.Time `json:"arrival"`
	Origin              Airport   `json:"origin"`
	Destination         Airport   `json:"destination"`
	AvailableSeats      int       `json:"available_seats"`
	Passengers          int       `json:"passengers"`
	Price               float64   `json:"price"`
	EconomySeats        int       `json:"economy_seats"`
	PremiumEconomySeats int       `json:"premium_economy_seats"`
	BusinessSeats       int       `json:"business_seats"`
	FirstSeats          int       `json:"first_seats"`
}

// Duration formats the scheduled departure-to-arrival span as hh:mm.
func (t Trip) Duration() string {
	if t.Departure.IsZero() || t.Arrival.IsZero() {
		return ""
	}
	minutes := int(t.Arrival.Sub(t.Departure).Minutes())
	if minutes < 0 {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// FormatTime renders a schedule timestamp as HH:mm.
func FormatTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format("15:04")
}

// FormatLongDate renders a schedule timestamp as "2 January 2006".
func FormatLongDate(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format("2 January 2006")
}
