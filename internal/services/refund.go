package services

import "ridepool/internal/domain/models"

// RefundPolicy computes the refund for a cancellation from the minutes left
// until departure, the booking's payment state, and the paid amount.
type RefundPolicy func(minutesToDeparture int, paymentStatus string, totalAmount int64) int64

// DefaultRefundPolicy: full refund more than 24h out, half refund more than
// 12h out, nothing after that. Bookings never paid refund nothing.
func DefaultRefundPolicy(minutesToDeparture int, paymentStatus string, totalAmount int64) int64 {
	if paymentStatus != models.PaymentPaid {
		return 0
	}
	switch {
	case minutesToDeparture > 24*60:
		return totalAmount
	case minutesToDeparture > 12*60:
		return totalAmount / 2
	default:
		return 0
	}
}
