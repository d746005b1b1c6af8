package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"

	"skybook-cli/model"
)

type bookingItem struct {
	summary model.BookingSummary
}

func (b bookingItem) Title() string {
	kind := "One way"
	if b.summary.ReturnTripId != 0 {
		kind = "Round trip"
	}
	return fmt.Sprintf("#%d • %s • %s", b.summary.Id, kind, b.summary.BookingType)
}

func (b bookingItem) Description() string {
	return fmt.Sprintf("%s • %s", statusLabel(b.summary.Status), formatPrice(b.summary.Price))
}

func (b bookingItem) FilterValue() string {
	return strings.ToLower(fmt.Sprintf("%d %s %s", b.summary.Id, b.summary.Status, b.summary.BookingType))
}

func buildBookingItems(bookings []model.BookingSummary) []list.Item {
	items := make([]list.Item, 0, len(bookings))
	// newest first
	for i := len(bookings) - 1; i >= 0; i-- {
		items = append(items, bookingItem{summary: bookings[i]})
	}
	return items
}

func statusLabel(status string) string {
	switch strings.ToLower(status) {
	case "cancelled":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render("Cancelled")
	case "confirmed":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Render("Confirmed")
	default:
		return status
	}
}

func (m appModel) bookingDetailView() string {
	booking := m.bookingDetail
	lines := []string{
		lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("Booking #%d", booking.Id)),
		"",
		fmt.Sprintf("Status      %s", statusLabel(booking.Status)),
		fmt.Sprintf("Cabin       %s", booking.BookingType),
		fmt.Sprintf("Total paid  %s", formatPrice(booking.Price)),
		fmt.Sprintf("Contact     %s • %s", booking.Email, booking.Phone),
	}

	if booking.Trip != nil {
		lines = append(lines, "", legView("Outbound", *booking.Trip))
	}
	if booking.ReturnTrip != nil {
		lines = append(lines, "", legView("Return", *booking.ReturnTrip))
	}

	if len(booking.Passengers) > 0 {
		lines = append(lines, "", hint(fmt.Sprintf("-- Passengers (%d) --", len(booking.Passengers))))
		for _, passenger := range booking.Passengers {
			entry := fmt.Sprintf("%s %s", passenger.FirstName, passenger.LastName)
			if passenger.DateOfBirth != "" {
				entry += " • " + passenger.DateOfBirth
			}
			lines = append(lines, entry)
		}
	}

	if m.cancelling {
		lines = append(lines, "", fmt.Sprintf("%s Cancelling...", m.spinner.View()))
	}
	return strings.Join(lines, "\n")
}

func legView(label string, trip model.Trip) string {
	head := hint(fmt.Sprintf("-- %s --", label))
	route := fmt.Sprintf("%s → %s", trip.Origin.Code, trip.Destination.Code)
	flight := strings.TrimSpace(fmt.Sprintf("%s %s", trip.Flight.Airline.Name, trip.Flight.FlightNumber))
	schedule := ""
	if !trip.Departure.IsZero() {
		schedule = fmt.Sprintf("%s • %s - %s",
			model.FormatLongDate(trip.Departure),
			model.FormatTime(trip.Departure),
			model.FormatTime(trip.Arrival),
		)
	}
	parts := []string{head, route}
	if flight != "" {
		parts = append(parts, flight)
	}
	if schedule != "" {
		parts = append(parts, schedule)
	}
	return strings.Join(parts, "\n")
}
