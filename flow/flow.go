// Package flow implements the checkout state machine: passenger capture,
// payment capture and the single create-booking write. It owns no
// presentation and reaches the outside world only through the two consumer
// interfaces injected at construction.
package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"skybook-cli/model"
)

// Step is the current checkout step. Transitions are forward-only; there is
// no way back out of a step short of discarding the controller.
type Step int

const (
	StepPassengers Step = iota + 1
	StepPayment
	StepConfirmed
)

func (s Step) String() string {
	switch s {
	case StepPassengers:
		return "Passengers"
	case StepPayment:
		return "Payment"
	case StepConfirmed:
		return "Confirmation"
	default:
		return "Unknown"
	}
}

// FareSource reads trip fares from the external catalog.
type FareSource interface {
	GetTripsByIds(ctx context.Context, ids []int) ([]model.Trip, error)
}

// BookingCreator persists a booking through the external booking API.
type BookingCreator interface {
	CreateBooking(ctx context.Context, req model.BookingRequest) (model.Booking, error)
}

// ValidationError is a user-correctable rejection: the message is meant for
// display and no state changed.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// IsValidation reports whether err is user-correctable input validation.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// ErrSubmitInFlight is returned when a create-booking call is already
// outstanding for this flow instance.
var ErrSubmitInFlight = errors.New("booking submission already in progress")

// PassengerField addresses one editable field of a passenger record.
type PassengerField int

const (
	FieldFirstName PassengerField = iota
	FieldLastName
	FieldEmail
	FieldDateOfBirth
	FieldGender
)

// Controller drives one checkout flow for a fixed trip selection. It starts
// on the passenger step with a single blank passenger and moves forward
// through payment to confirmation. All methods are safe for use from
// asynchronous command goroutines.
type Controller struct {
	mu sync.RWMutex

	selection model.TripSelection
	catalog   FareSource
	bookings  BookingCreator
	logger    *slog.Logger

	fares       []model.Trip
	faresLoaded bool

	passengers []model.Passenger
	contact    model.ContactInfo
	payment    model.PaymentInfo

	step      Step
	inFlight  bool
	bookingId int
}

// New constructs a controller for the given selection. The logger may be
// nil, in which case the default logger is used.
func New(selection model.TripSelection, catalog FareSource, bookings BookingCreator, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		selection:  selection,
		catalog:    catalog,
		bookings:   bookings,
		logger:     logger,
		passengers: []model.Passenger{blankPassenger()},
		step:       StepPassengers,
	}
}

func blankPassenger() model.Passenger {
	return model.Passenger{Gender: model.GenderMale}
}

// Selection returns the immutable trip selection this flow was opened with.
func (c *Controller) Selection() model.TripSelection {
	return c.selection
}

// Step returns the current checkout step.
func (c *Controller) Step() Step {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.step
}

// BookingId returns the server-assigned booking identifier, or zero before
// the flow reaches confirmation.
func (c *Controller) BookingId() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bookingId
}

// Fares returns the fetched trip fares in catalog order.
func (c *Controller) Fares() []model.Trip {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fares := make([]model.Trip, len(c.fares))
	copy(fares, c.fares)
	return fares
}

// FaresLoaded reports whether the catalog read has completed successfully at
// least once.
func (c *Controller) FaresLoaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.faresLoaded
}

// Passengers returns a copy of the current passenger records.
func (c *Controller) Passengers() []model.Passenger {
	c.mu.RLock()
	defer c.mu.RUnlock()
	passengers := make([]model.Passenger, len(c.passengers))
	copy(passengers, c.passengers)
	return passengers
}

// Contact returns the booking-level contact info.
func (c *Controller) Contact() model.ContactInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.contact
}

// Payment returns the transient payment info.
func (c *Controller) Payment() model.PaymentInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.payment
}

// Submitting reports whether a create-booking call is outstanding.
func (c *Controller) Submitting() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inFlight
}

// LoadFares fetches the fares for the selected trips in one batched catalog
// read. It is invoked once when the flow opens and again only on an explicit
// retry; unrelated edits never trigger a refetch. On failure the fares stay
// unset, which keeps the payment step unreachable.
func (c *Controller) LoadFares(ctx context.Context) error {
	ids := c.selection.TripIds()
	if len(ids) == 0 {
		return &ValidationError{Reason: "no trips selected"}
	}

	trips, err := c.catalog.GetTripsByIds(ctx, ids)
	if err != nil {
		c.logger.Error("fare fetch failed", "trip_ids", ids, "error", err)
		return fmt.Errorf("load fares: %w", err)
	}

	c.mu.Lock()
	c.fares = trips
	c.faresLoaded = true
	c.mu.Unlock()
	return nil
}

// AddPassenger appends one blank passenger record. The collection may never
// exceed the passenger count declared in the selection; records are never
// removed once added.
func (c *Controller) AddPassenger() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.passengers) >= c.selection.Passengers {
		return &ValidationError{
			Reason: fmt.Sprintf("cannot exceed the declared passenger count of %d", c.selection.Passengers),
		}
	}
	c.passengers = append(c.passengers, blankPassenger())
	return nil
}

// SetPassengerField edits one field of one passenger record. No cross-field
// validation happens here; that is deferred to the step transition.
func (c *Controller) SetPassengerField(index int, field PassengerField, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.passengers) {
		return &ValidationError{Reason: fmt.Sprintf("no passenger at position %d", index+1)}
	}
	switch field {
	case FieldFirstName:
		c.passengers[index].FirstName = value
	case FieldLastName:
		c.passengers[index].LastName = value
	case FieldEmail:
		c.passengers[index].Email = value
	case FieldDateOfBirth:
		c.passengers[index].DateOfBirth = value
	case FieldGender:
		c.passengers[index].Gender = value
	default:
		return &ValidationError{Reason: "unknown passenger field"}
	}
	return nil
}

// SetContactEmail edits the booking-level contact email.
func (c *Controller) SetContactEmail(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.contact.Email = value
}

// SetContactPhone edits the booking-level contact phone.
func (c *Controller) SetContactPhone(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.contact.Phone = value
}

// SetCardNumber stores the card number, reformatted into space-separated
// groups of four digits.
func (c *Controller) SetCardNumber(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payment.CardNumber = FormatCardNumber(value)
}

// SetCardHolder stores the cardholder name as typed.
func (c *Controller) SetCardHolder(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payment.CardHolder = value
}

// SetExpiryDate stores the expiry, reformatted as MM/YY.
func (c *Controller) SetExpiryDate(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payment.ExpiryDate = FormatExpiry(value)
}

// SetCVV stores the CVV, digits only, at most three.
func (c *Controller) SetCVV(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payment.CVV = FormatCVV(value)
}

// Price derives the current price breakdown from the fetched fares and the
// passenger count. It is recomputed on every call and never cached.
func (c *Controller) Price() (PriceBreakdown, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ComputePrice(c.fares, len(c.passengers))
}

// ContinueToPayment moves the flow from the passenger step to the payment
// step. It is blocked while any passenger lacks a first name, last name or
// date of birth, while the contact email or phone is empty, or while fares
// have not loaded.
func (c *Controller) ContinueToPayment() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step != StepPassengers {
		return &ValidationError{Reason: "not on the passenger step"}
	}
	if !c.faresLoaded || len(c.fares) == 0 {
		return &ValidationError{Reason: "trip fares are not available yet"}
	}
	for i, passenger := range c.passengers {
		if passenger.FirstName == "" || passenger.LastName == "" || passenger.DateOfBirth == "" {
			return &ValidationError{
				Reason: fmt.Sprintf("passenger %d is missing a first name, last name or date of birth", i+1),
			}
		}
	}
	if c.contact.Email == "" || c.contact.Phone == "" {
		return &ValidationError{Reason: "contact email and phone are required"}
	}
	c.step = StepPayment
	return nil
}

// ConfirmPayment performs the payment-to-confirmation transition: it
// validates the payment fields, issues exactly one create-booking call and,
// on success, records the returned booking identifier. At most one call may
// be outstanding per flow instance; a failure leaves the flow on the payment
// step so the submission can be retried.
func (c *Controller) ConfirmPayment(ctx context.Context) error {
	req, err := c.beginSubmit()
	if err != nil {
		return err
	}

	booking, err := c.bookings.CreateBooking(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	if err != nil {
		c.logger.Error("booking submission failed", "trip_id", req.TripId, "error", err)
		return fmt.Errorf("create booking: %w", err)
	}
	c.bookingId = booking.Id
	c.step = StepConfirmed
	c.logger.Info("booking confirmed", "booking_id", booking.Id, "trip_id", req.TripId)
	return nil
}

// beginSubmit validates the payment step, assembles the payload and marks
// the submission in flight, all under the lock.
func (c *Controller) beginSubmit() (model.BookingRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step != StepPayment {
		return model.BookingRequest{}, &ValidationError{Reason: "not on the payment step"}
	}
	if c.inFlight {
		return model.BookingRequest{}, ErrSubmitInFlight
	}
	if c.payment.CardNumber == "" || c.payment.CardHolder == "" || c.payment.ExpiryDate == "" || c.payment.CVV == "" {
		return model.BookingRequest{}, &ValidationError{Reason: "all payment fields are required"}
	}

	price, err := ComputePrice(c.fares, len(c.passengers))
	if err != nil {
		return model.BookingRequest{}, &ValidationError{Reason: "trip fares are not available yet"}
	}

	passengers := make([]model.Passenger, len(c.passengers))
	copy(passengers, c.passengers)

	c.inFlight = true
	return model.BookingRequest{
		TripId:         c.selection.OutboundId,
		ReturnTripId:   c.selection.ReturnTripId,
		Email:          c.contact.Email,
		Phone:          c.contact.Phone,
		Price:          price.Total,
		NoOfPassengers: len(passengers),
		Passengers:     passengers,
		PaymentMode:    "card",
		BookingType:    c.selection.CabinClass,
	}, nil
}
