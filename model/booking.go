package model

const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderTrans  = "Trans"
)

// Genders lists the accepted passenger genders in display order.
func Genders() []string {
	return []string{GenderMale, GenderFemale, GenderTrans}
}

// Passenger is one traveller on a booking. Email is optional; the other
// fields are required before the flow may leave the passenger step.
type Passenger struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email,omitempty"`
	DateOfBirth string `json:"dateOfBirth"`
	Gender      string `json:"gender"`
}

// ContactInfo is the single booking-level contact, not per passenger.
type ContactInfo struct {
	Email string
	Phone string
}

// PaymentInfo is transient card data. It is never serialized or persisted;
// it exists only for the duration of the payment step.
type PaymentInfo struct {
	CardNumber string
	CardHolder string
	ExpiryDate string
	CVV        string
}

// BookingRequest is the create-booking payload of the booking API.
type BookingRequest struct {
	TripId         int         `json:"trip_id"`
	ReturnTripId   int         `json:"return_trip_id,omitempty"`
	Email          string      `json:"email"`
	Phone          string      `json:"phone"`
	Price          float64     `json:"price"`
	NoOfPassengers int         `json:"no_of_passengers"`
	Passengers     []Passenger `json:"passengers"`
	PaymentMode    string      `json:"payment_mode"`
	BookingType    string      `json:"booking_type"`
}

// BookingSummary is one row of the booking-history listing, where trips are
// returned as bare identifiers.
type BookingSummary struct {
	Id           int     `json:"id"`
	TripId       int     `json:"trip_id"`
	ReturnTripId int     `json:"return_trip_id"`
	Status       string  `json:"status"`
	Price        float64 `json:"price"`
	BookingType  string  `json:"booking_type"`
}

// BookingPassenger is a persisted passenger as the booking API returns it.
type BookingPassenger struct {
	Id          int    `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender"`
}

// Booking is a full booking record with trips expanded, as returned by the
// detail endpoint. ReturnTrip is nil for one-way bookings.
type Booking struct {
	Id             int                `json:"id"`
	Status         string             `json:"status"`
	Email          string             `json:"email"`
	Phone          string             `json:"phone"`
	Price          float64            `json:"price"`
	PaymentMode    string             `json:"payment_mode"`
	BookingType    string             `json:"booking_type"`
	NoOfPassengers int                `json:"no_of_passengers"`
	Trip           *Trip              `json:"trip_id"`
	ReturnTrip     *Trip              `json:"return_trip_id"`
	Passengers     []BookingPassenger `json:"passengers"`
}
