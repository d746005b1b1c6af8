package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"skybook-cli/model"
)

const tripSelect = "id,flight_id(id,flight_number,airline_id(id,name)),departure,arrival," +
	"origin(id,name,code),destination(id,name,code),available_seats,passengers,price," +
	"economy_seats,premium_economy_seats,business_seats,first_seats"

// ListAirports returns the airport catalog.
func (c *Client) ListAirports(ctx context.Context) ([]model.Airport, error) {
	endpoint := fmt.Sprintf("%s/airports?select=id,name,code&order=name.asc", c.catalogURL)

	var airports []model.Airport
	if err := c.getJSON(ctx, endpoint, &airports); err != nil {
		return nil, err
	}
	return airports, nil
}

// GetTripsByIds fetches the given trips in one batched read, projecting
// schedule, fare and descriptor fields. The catalog may return fewer records
// than identifiers requested; entries come back in catalog order.
func (c *Client) GetTripsByIds(ctx context.Context, ids []int) ([]model.Trip, error) {
	if len(ids) == 0 {
		return nil, errors.New("at least one trip id is required")
	}

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	query := url.Values{}
	query.Set("select", tripSelect)
	query.Set("id", fmt.Sprintf("in.(%s)", strings.Join(parts, ",")))
	endpoint := fmt.Sprintf("%s/trips?%s", c.catalogURL, query.Encode())

	var trips []model.Trip
	if err := c.getJSON(ctx, endpoint, &trips); err != nil {
		return nil, err
	}
	return trips, nil
}

// SearchTrips finds trips between two airports departing on the given day.
func (c *Client) SearchTrips(ctx context.Context, originId int, destinationId int, date time.Time) ([]model.Trip, error) {
	if originId == 0 || destinationId == 0 {
		return nil, errors.New("origin and destination are required")
	}

	query := url.Values{}
	query.Set("select", tripSelect)
	query.Set("origin", fmt.Sprintf("eq.%d", originId))
	query.Set("destination", fmt.Sprintf("eq.%d", destinationId))
	if !date.IsZero() {
		day := date.Format(time.DateOnly)
		query.Set("departure", fmt.Sprintf("gte.%s", day))
		query.Add("departure", fmt.Sprintf("lt.%s", date.AddDate(0, 0, 1).Format(time.DateOnly)))
	}
	query.Set("order", "departure.asc")
	endpoint := fmt.Sprintf("%s/trips?%s", c.catalogURL, query.Encode())

	var trips []model.Trip
	if err := c.getJSON(ctx, endpoint, &trips); err != nil {
		return nil, err
	}
	return trips, nil
}
