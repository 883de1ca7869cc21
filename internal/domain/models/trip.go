package models

import "time"

// Trip statuses.
const (
	TripActive    = "active"
	TripCompleted = "completed"
	TripCancelled = "cancelled"
)

// Trip is a driver-published ride offering. BookedSeats and TotalEarnings
// mirror, in aggregate, the trip's non-cancelled bookings.
type Trip struct {
	ID            int64     `json:"id"`
	DriverID      int64     `json:"driverId"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureDate string    `json:"departureDate"` // YYYY-MM-DD
	DepartureTime string    `json:"departureTime"` // HH:MM
	PricePerSeat  int64     `json:"pricePerSeat"`
	TotalSeats    int       `json:"totalSeats"`
	BookedSeats   int       `json:"bookedSeats"`
	TotalEarnings int64     `json:"totalEarnings"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// RemainingSeats is capacity minus booked seats.
func (t Trip) RemainingSeats() int {
	return t.TotalSeats - t.BookedSeats
}

// TripPassenger is one roster entry of confirmed passengers on a trip.
type TripPassenger struct {
	ID          int64     `json:"id"`
	TripID      int64     `json:"tripId"`
	UserID      int64     `json:"userId"`
	SeatsBooked int       `json:"seatsBooked"`
	BookingDate time.Time `json:"bookingDate"`
}
