package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"skybook-cli/flow"
	"skybook-cli/model"
)

type fakeCatalog struct {
	trips []model.Trip
}

func (f fakeCatalog) GetTripsByIds(ctx context.Context, ids []int) ([]model.Trip, error) {
	return f.trips, nil
}

type fakeBookings struct {
	created model.BookingRequest
}

func (f *fakeBookings) CreateBooking(ctx context.Context, req model.BookingRequest) (model.Booking, error) {
	f.created = req
	return model.Booking{Id: 77, Status: "confirmed"}, nil
}

func newTestCheckout(t *testing.T, passengers int) (*checkoutModel, *fakeBookings) {
	t.Helper()
	selection := model.TripSelection{
		TripType:   model.TripTypeOneWay,
		OutboundId: 501,
		Passengers: passengers,
		CabinClass: model.CabinEconomy,
	}
	bookings := &fakeBookings{}
	controller := flow.New(selection, fakeCatalog{trips: []model.Trip{{Id: 501, Price: 200}}}, bookings, nil)
	if err := controller.LoadFares(context.Background()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	return newCheckout(controller), bookings
}

func typeInto(c *checkoutModel, text string) {
	for _, r := range text {
		_, _ = c.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func fillPassengerStep(c *checkoutModel) {
	f := c.flow
	_ = f.SetPassengerField(0, flow.FieldFirstName, "Ada")
	_ = f.SetPassengerField(0, flow.FieldLastName, "Lovelace")
	_ = f.SetPassengerField(0, flow.FieldDateOfBirth, "1990-12-10")
	f.SetContactEmail("ada@example.com")
	f.SetContactPhone("+1 555 0100")
}

func TestCheckout_FieldLayoutPerPassenger(t *testing.T) {
	c, _ := newTestCheckout(t, 1)

	// five passenger fields plus the two contact fields
	if len(c.fields) != 7 {
		t.Fatalf("expected 7 fields, got %d", len(c.fields))
	}
	if c.fields[len(c.fields)-1].kind != fieldContactPhone {
		t.Fatalf("expected contact phone last, got %+v", c.fields[len(c.fields)-1])
	}
}

func TestCheckout_AddPassengerRebuildsForm(t *testing.T) {
	c, _ := newTestCheckout(t, 2)
	_ = c.focusCmd()

	_, advanced := c.update(tea.KeyMsg{Type: tea.KeyCtrlA})
	if advanced {
		t.Fatal("adding a passenger must not advance the step")
	}
	if len(c.fields) != 12 {
		t.Fatalf("expected 12 fields after adding a passenger, got %d", len(c.fields))
	}

	// the declared count caps the form
	_, _ = c.update(tea.KeyMsg{Type: tea.KeyCtrlA})
	if len(c.fields) != 12 {
		t.Fatalf("expected the form capped at 12 fields, got %d", len(c.fields))
	}
	if c.note == "" {
		t.Fatal("expected a note about the passenger cap")
	}
}

func TestCheckout_TypingEditsFocusedField(t *testing.T) {
	c, _ := newTestCheckout(t, 1)
	_ = c.focusCmd()

	typeInto(c, "Ada")
	if got := c.flow.Passengers()[0].FirstName; got != "Ada" {
		t.Fatalf("expected first name %q, got %q", "Ada", got)
	}
}

func TestCheckout_GenderCycles(t *testing.T) {
	c, _ := newTestCheckout(t, 1)
	_ = c.focusCmd()

	// move to the gender field
	for c.fields[c.focus].kind != fieldGender {
		_, _ = c.update(tea.KeyMsg{Type: tea.KeyTab})
	}

	_, _ = c.update(tea.KeyMsg{Type: tea.KeyRight})
	if got := c.flow.Passengers()[0].Gender; got != model.GenderFemale {
		t.Fatalf("expected %q, got %q", model.GenderFemale, got)
	}
	_, _ = c.update(tea.KeyMsg{Type: tea.KeyLeft})
	if got := c.flow.Passengers()[0].Gender; got != model.GenderMale {
		t.Fatalf("expected %q, got %q", model.GenderMale, got)
	}
}

func TestCheckout_ContinueBlockedUntilComplete(t *testing.T) {
	c, _ := newTestCheckout(t, 1)
	_ = c.focusCmd()
	c.focus = len(c.fields) - 1

	_, advanced := c.update(tea.KeyMsg{Type: tea.KeyEnter})
	if advanced {
		t.Fatal("expected the step transition to be blocked")
	}
	if c.note == "" {
		t.Fatal("expected a validation note")
	}
	if c.flow.Step() != flow.StepPassengers {
		t.Fatalf("expected to stay on the passenger step, got %v", c.flow.Step())
	}
}

func TestCheckout_ContinueRebuildsPaymentForm(t *testing.T) {
	c, _ := newTestCheckout(t, 1)
	fillPassengerStep(c)
	_ = c.focusCmd()
	c.focus = len(c.fields) - 1

	_, advanced := c.update(tea.KeyMsg{Type: tea.KeyEnter})
	if !advanced {
		t.Fatalf("expected the step to advance, note: %q", c.note)
	}
	if c.flow.Step() != flow.StepPayment {
		t.Fatalf("expected the payment step, got %v", c.flow.Step())
	}
	if len(c.fields) != 4 || c.fields[0].kind != fieldCardNumber {
		t.Fatalf("unexpected payment form: %+v", c.fields)
	}
}

func TestCheckout_CardNumberFormattedWhileTyping(t *testing.T) {
	c, _ := newTestCheckout(t, 1)
	fillPassengerStep(c)
	c.focus = len(c.fields) - 1
	if _, advanced := c.update(tea.KeyMsg{Type: tea.KeyEnter}); !advanced {
		t.Fatalf("expected the step to advance, note: %q", c.note)
	}
	_ = c.focusCmd()

	typeInto(c, "41111111")
	if got := c.inputs[0].Value(); got != "4111 1111" {
		t.Fatalf("expected grouped card number, got %q", got)
	}
	if got := c.flow.Payment().CardNumber; got != "4111 1111" {
		t.Fatalf("expected formatted card number stored, got %q", got)
	}
}

func TestCheckout_SubmitIssuesBookingOnce(t *testing.T) {
	c, bookings := newTestCheckout(t, 1)
	fillPassengerStep(c)
	c.focus = len(c.fields) - 1
	if _, advanced := c.update(tea.KeyMsg{Type: tea.KeyEnter}); !advanced {
		t.Fatalf("expected the step to advance, note: %q", c.note)
	}

	c.flow.SetCardNumber("4111111111111111")
	c.flow.SetCardHolder("Ada Lovelace")
	c.flow.SetExpiryDate("0929")
	c.flow.SetCVV("123")
	c.focus = len(c.fields) - 1
	_ = c.focusCmd()

	cmd, _ := c.update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected a submit command, note: %q", c.note)
	}
	if !c.submitting {
		t.Fatal("expected the form to be marked submitting")
	}

	raw := cmd()
	msg, ok := raw.(submitMsg)
	if !ok {
		t.Fatalf("expected a submitMsg, got %T", raw)
	}
	if msg.err != nil {
		t.Fatalf("expected nil error, got %v", msg.err)
	}
	if msg.bookingId != 77 {
		t.Fatalf("expected booking 77, got %d", msg.bookingId)
	}
	if bookings.created.TripId != 501 || bookings.created.NoOfPassengers != 1 {
		t.Fatalf("unexpected booking payload: %+v", bookings.created)
	}

	// further keys are ignored while the submission is outstanding
	if cmd, _ := c.update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Fatal("expected no second submit while one is in flight")
	}
}
