package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestListAirports_OK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/airports" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
  {"id": 1, "name": "John F. Kennedy International", "code": "JFK"},
  {"id": 2, "name": "Heathrow", "code": "LHR"}
]`))
	}))
	defer server.Close()

	client := newTestClient(server)

	airports, err := client.ListAirports(context.Background())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(airports) != 2 {
		t.Fatalf("expected 2 airports, got %d", len(airports))
	}
	if airports[0].Code != "JFK" {
		t.Fatalf("unexpected airport code: %s", airports[0].Code)
	}
}

func TestGetTripsByIds_BatchesIdentifiers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/trips" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("id"); got != "in.(501,502)" {
			t.Fatalf("unexpected id filter: %s", got)
		}
		if r.URL.Query().Get("select") == "" {
			t.Fatal("expected a select projection")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
  {
    "id": 501,
    "flight_id": {"id": 7, "flight_number": "BA2490", "airline_id": {"id": 3, "name": "British Airways"}},
    "departure": "2026-06-12T08:45:00Z",
    "arrival": "2026-06-12T21:05:00Z",
    "origin": {"id": 1, "name": "John F. Kennedy International", "code": "JFK"},
    "destination": {"id": 2, "name": "Heathrow", "code": "LHR"},
    "available_seats": 42,
    "price": 549.99
  },
  {"id": 502, "price": 130.0}
]`))
	}))
	defer server.Close()

	client := newTestClient(server)

	trips, err := client.GetTripsByIds(context.Background(), []int{501, 502})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(trips) != 2 {
		t.Fatalf("expected 2 trips, got %d", len(trips))
	}
	if trips[0].Flight.FlightNumber != "BA2490" {
		t.Fatalf("unexpected flight number: %s", trips[0].Flight.FlightNumber)
	}
	if trips[0].Flight.Airline.Name != "British Airways" {
		t.Fatalf("unexpected airline: %s", trips[0].Flight.Airline.Name)
	}
	if trips[0].Origin.Code != "JFK" || trips[0].Destination.Code != "LHR" {
		t.Fatalf("unexpected route: %+v", trips[0])
	}
}

func TestGetTripsByIds_RequiresIds(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))
	defer server.Close()

	client := newTestClient(server)
	if _, err := client.GetTripsByIds(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty id set")
	}
}

func TestSearchTrips_FiltersByRouteAndDay(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if got := query.Get("origin"); got != "eq.1" {
			t.Fatalf("unexpected origin filter: %s", got)
		}
		if got := query.Get("destination"); got != "eq.2" {
			t.Fatalf("unexpected destination filter: %s", got)
		}
		departures := query["departure"]
		if len(departures) != 2 || departures[0] != "gte.2026-06-12" || departures[1] != "lt.2026-06-13" {
			t.Fatalf("unexpected departure filters: %v", departures)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": 501, "price": 200.0}]`))
	}))
	defer server.Close()

	client := newTestClient(server)

	date := time.Date(2026, 6, 12, 0, 0, 0, 0, time.UTC)
	trips, err := client.SearchTrips(context.Background(), 1, 2, date)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(trips) != 1 || trips[0].Id != 501 {
		t.Fatalf("unexpected trips: %+v", trips)
	}
}
