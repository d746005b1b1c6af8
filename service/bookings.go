package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"skybook-cli/model"
)

// CreateBooking persists one booking through the external booking API. Each
// call carries a fresh idempotency key, so a retried submission cannot
// double-book even if an earlier attempt succeeded after its response was
// lost.
func (c *Client) CreateBooking(ctx context.Context, req model.BookingRequest) (model.Booking, error) {
	if req.TripId == 0 {
		return model.Booking{}, errors.New("trip id is required")
	}
	endpoint := fmt.Sprintf("%s/bookings", c.bookingsURL)

	headers := http.Header{}
	headers.Set("Idempotency-Key", uuid.NewString())

	var response struct {
		NewBooking model.Booking `json:"newBooking"`
	}
	if err := c.doJSON(ctx, http.MethodPost, endpoint, headers, req, &response); err != nil {
		return model.Booking{}, err
	}
	if response.NewBooking.Id == 0 {
		return model.Booking{}, errors.New("booking api returned no booking id")
	}
	return response.NewBooking, nil
}

// ListBookings returns the authenticated user's booking history.
func (c *Client) ListBookings(ctx context.Context) ([]model.BookingSummary, error) {
	endpoint := fmt.Sprintf("%s/bookings", c.bookingsURL)

	var response struct {
		Bookings []model.BookingSummary `json:"bookings"`
	}
	if err := c.getJSON(ctx, endpoint, &response); err != nil {
		return nil, err
	}
	return response.Bookings, nil
}

// GetBooking fetches one booking with its trips and passengers expanded.
func (c *Client) GetBooking(ctx context.Context, id int) (model.Booking, error) {
	if id == 0 {
		return model.Booking{}, errors.New("booking id is required")
	}
	endpoint := fmt.Sprintf("%s/bookings/%d", c.bookingsURL, id)

	var response struct {
		Booking model.Booking `json:"booking"`
	}
	if err := c.getJSON(ctx, endpoint, &response); err != nil {
		return model.Booking{}, err
	}
	return response.Booking, nil
}

// CancelBooking asks the booking API to cancel the given booking.
func (c *Client) CancelBooking(ctx context.Context, id int) error {
	if id == 0 {
		return errors.New("booking id is required")
	}
	endpoint := fmt.Sprintf("%s/bookings/%d/cancel", c.bookingsURL, id)
	return c.doJSON(ctx, http.MethodPatch, endpoint, nil, nil, nil)
}
