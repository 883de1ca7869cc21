package models

import "time"

// Booking statuses.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingCompleted = "completed"
)

// Payment statuses.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

// Accepted payment methods.
var PaymentMethods = map[string]bool{
	"cash":   true,
	"online": true,
	"upi":    true,
	"card":   true,
}

// Point is a pickup or drop location with an HH:MM time.
type Point struct {
	Location string `json:"location"`
	Time     string `json:"time"`
}

// PassengerDetail is one seat occupant; a booking carries exactly
// seats_booked of these.
type PassengerDetail struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
}

// ContactShare is a lazily disclosed contact plus the moment of disclosure.
type ContactShare struct {
	Name     string    `json:"name"`
	Phone    string    `json:"phone"`
	SharedAt time.Time `json:"sharedAt"`
}

// RatingEntry is one direction of the bidirectional booking rating.
type RatingEntry struct {
	Rating int    `json:"rating"`
	Review string `json:"review,omitempty"`
}

// Booking is a passenger's seat reservation against a trip.
// TripID and PassengerID are immutable after creation; TotalAmount is
// computed once at creation and never recomputed.
type Booking struct {
	ID          int64  `json:"id"`
	BookingCode string `json:"bookingCode"`
	TripID      int64  `json:"tripId"`
	PassengerID int64  `json:"passengerId"`

	SeatsBooked int   `json:"seatsBooked"`
	TotalAmount int64 `json:"totalAmount"`

	PickupPoint Point `json:"pickupPoint"`
	DropPoint   Point `json:"dropPoint"`

	PaymentMethod string `json:"paymentMethod"`
	PaymentStatus string `json:"paymentStatus"`
	TransactionID string `json:"transactionId,omitempty"`
	BookingStatus string `json:"bookingStatus"`

	OTPCode        string    `json:"-"`
	OTPGeneratedAt time.Time `json:"-"`
	OTPVerified    bool      `json:"otpVerified"`

	Note string `json:"note,omitempty"`

	CancellationReason string     `json:"cancellationReason,omitempty"`
	CancelledBy        string     `json:"cancelledBy,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	RefundAmount       int64      `json:"refundAmount"`

	RatingForDriver    *RatingEntry `json:"ratingForDriver,omitempty"`
	RatingForPassenger *RatingEntry `json:"ratingForPassenger,omitempty"`

	DriverContact    *ContactShare `json:"driverContact,omitempty"`
	PassengerContact *ContactShare `json:"passengerContact,omitempty"`

	Passengers []PassengerDetail `json:"passengerDetails,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Active reports whether the booking still holds seats on its trip.
func (b Booking) Active() bool {
	return b.BookingStatus != BookingCancelled && b.PaymentStatus != PaymentFailed
}
