package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	intconfig "ridepool/internal/config"
	"ridepool/internal/domain"
	"ridepool/internal/domain/models"
	"ridepool/internal/notify"
	"ridepool/internal/repositories"
	"ridepool/internal/utils"

	"github.com/google/uuid"
)

const otpTTLMinutes = 30

// BookingService orchestrates the booking lifecycle. Every mutation touching
// both the booking and its trip runs in one transaction; the reversal of a
// booking's effect on trip counters lives in exactly one place
// (reverseTripEffects).
type BookingService struct {
	Bookings repositories.BookingRepository
	Trips    repositories.TripRepository
	Users    repositories.UserRepository
	DB       *sql.DB
	Notifier notify.Publisher
	Refund   RefundPolicy
	Now      func() time.Time
	NewOTP   func() string
	NewCode  func() string

	RequestID string
}

func (s BookingService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s BookingService) newOTP() string {
	if s.NewOTP != nil {
		return s.NewOTP()
	}
	return utils.GenerateOTP()
}

func (s BookingService) newCode() string {
	if s.NewCode != nil {
		return s.NewCode()
	}
	return uuid.NewString()
}

func (s BookingService) refund() RefundPolicy {
	if s.Refund != nil {
		return s.Refund
	}
	return DefaultRefundPolicy
}

func (s BookingService) publish(routingKey string, payload any) {
	if s.Notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.Notifier.Publish(ctx, routingKey, payload); err != nil {
		utils.LogEvent(s.RequestID, "booking", "notify", routingKey+" failed: "+err.Error())
	}
}

// CreateBookingInput is the validated payload for a new booking.
type CreateBookingInput struct {
	TripID        int64
	Seats         int
	PickupPoint   models.Point
	DropPoint     models.Point
	PaymentMethod string
	Passengers    []models.PassengerDetail
	Note          string
}

// Create books seats on a trip. Preconditions run in order, first failure
// wins: trip exists, trip active, requester is not the driver, capacity
// suffices, one passenger detail per seat.
func (s BookingService) Create(passengerID int64, in CreateBookingInput) (models.Booking, models.Trip, error) {
	var zeroT models.Trip
	var zeroB models.Booking

	if in.Seats < 1 || in.Seats > 7 {
		return zeroB, zeroT, domain.ValidationError{Field: "seatsBooked", Msg: "must be between 1 and 7"}
	}
	if !models.PaymentMethods[in.PaymentMethod] {
		return zeroB, zeroT, domain.ValidationError{Field: "paymentMethod", Msg: "unsupported method"}
	}
	for _, p := range []*models.Point{&in.PickupPoint, &in.DropPoint} {
		t, err := utils.ParseClock(p.Time)
		if err != nil {
			return zeroB, zeroT, domain.ValidationError{Field: "time", Msg: err.Error()}
		}
		p.Time = t
	}

	tx, err := s.db().Begin()
	if err != nil {
		return zeroB, zeroT, domain.InternalError{Err: err}
	}
	defer tx.Rollback()

	trip, err := s.Trips.GetByID(tx, in.TripID)
	if err != nil {
		return zeroB, zeroT, err
	}
	if trip.Status != models.TripActive {
		return zeroB, zeroT, domain.ValidationError{Field: "trip", Msg: "trip is not accepting bookings"}
	}
	if trip.DriverID == passengerID {
		return zeroB, zeroT, domain.ForbiddenError{Msg: "drivers cannot book their own trip"}
	}
	if trip.RemainingSeats() < in.Seats {
		return zeroB, zeroT, domain.ValidationError{
			Field: "seatsBooked",
			Msg:   fmt.Sprintf("only %d seats remaining", trip.RemainingSeats()),
		}
	}
	if len(in.Passengers) != in.Seats {
		return zeroB, zeroT, domain.ValidationError{
			Field: "passengerDetails",
			Msg:   "one entry per booked seat is required",
		}
	}

	now := s.now()
	b := models.Booking{
		BookingCode:    s.newCode(),
		TripID:         trip.ID,
		PassengerID:    passengerID,
		SeatsBooked:    in.Seats,
		TotalAmount:    trip.PricePerSeat * int64(in.Seats),
		PickupPoint:    in.PickupPoint,
		DropPoint:      in.DropPoint,
		PaymentMethod:  in.PaymentMethod,
		PaymentStatus:  models.PaymentPending,
		BookingStatus:  models.BookingPending,
		OTPCode:        s.newOTP(),
		OTPGeneratedAt: now,
		Note:           in.Note,
		Passengers:     in.Passengers,
		CreatedAt:      now,
	}

	id, err := s.Bookings.Insert(tx, b)
	if err != nil {
		return zeroB, zeroT, domain.InternalError{Err: err}
	}
	b.ID = id

	if err := s.Bookings.InsertPassengers(tx, id, in.Passengers); err != nil {
		return zeroB, zeroT, domain.InternalError{Err: err}
	}

	// Guarded update: loses the race to a concurrent booking instead of
	// over-subscribing the trip.
	if err := s.Trips.ReserveSeats(tx, trip.ID, in.Seats, b.TotalAmount); err != nil {
		return zeroB, zeroT, err
	}
	if err := s.Trips.AddPassenger(tx, trip.ID, passengerID, in.Seats); err != nil {
		return zeroB, zeroT, domain.InternalError{Err: err}
	}

	if err := tx.Commit(); err != nil {
		return zeroB, zeroT, domain.InternalError{Err: err}
	}

	trip.BookedSeats += in.Seats
	trip.TotalEarnings += b.TotalAmount

	utils.LogEvent(s.RequestID, "booking", "create",
		fmt.Sprintf("booking_id=%d trip_id=%d seats=%d", b.ID, trip.ID, in.Seats))
	s.publish("booking.created", map[string]any{
		"booking_id":   b.ID,
		"booking_code": b.BookingCode,
		"trip_id":      trip.ID,
		"passenger_id": passengerID,
		"seats":        in.Seats,
		"otp":          b.OTPCode,
		"created_at":   now,
	})

	return b, trip, nil
}

// Get loads a booking with its passenger details; only the booking's
// passenger or the trip's driver may read it.
func (s BookingService) Get(callerID, bookingID int64) (models.Booking, models.Trip, error) {
	db := s.db()
	b, err := s.Bookings.GetByID(db, bookingID)
	if err != nil {
		return models.Booking{}, models.Trip{}, err
	}
	trip, err := s.Trips.GetByID(db, b.TripID)
	if err != nil {
		return models.Booking{}, models.Trip{}, err
	}
	if callerID != b.PassengerID && callerID != trip.DriverID {
		return models.Booking{}, models.Trip{}, domain.ForbiddenError{Msg: "not your booking"}
	}
	if details, err := s.Bookings.ListPassengers(db, b.ID); err == nil {
		b.Passengers = details
	}
	return b, trip, nil
}

// UpdatePayment records a payment outcome. paid confirms the booking;
// failed cancels it and releases the seats back to the trip.
func (s BookingService) UpdatePayment(callerID, bookingID int64, paymentStatus, transactionID string) (models.Booking, error) {
	var zero models.Booking
	if paymentStatus != models.PaymentPaid && paymentStatus != models.PaymentFailed {
		return zero, domain.ValidationError{Field: "paymentStatus", Msg: "must be paid or failed"}
	}
	if paymentStatus == models.PaymentPaid && transactionID == "" {
		return zero, domain.ValidationError{Field: "transactionId", Msg: "required for paid status"}
	}

	tx, err := s.db().Begin()
	if err != nil {
		return zero, domain.InternalError{Err: err}
	}
	defer tx.Rollback()

	b, err := s.Bookings.GetByID(tx, bookingID)
	if err != nil {
		return zero, err
	}
	if callerID != b.PassengerID {
		return zero, domain.ForbiddenError{Msg: "not your booking"}
	}
	if b.BookingStatus == models.BookingCancelled {
		return zero, domain.ValidationError{Field: "booking", Msg: "booking is cancelled"}
	}

	if paymentStatus == models.PaymentPaid {
		if err := s.Bookings.UpdatePayment(tx, b.ID, models.PaymentPaid, models.BookingConfirmed, transactionID); err != nil {
			return zero, domain.InternalError{Err: err}
		}
		b.PaymentStatus = models.PaymentPaid
		b.BookingStatus = models.BookingConfirmed
		b.TransactionID = transactionID
	} else {
		if err := s.Bookings.UpdatePayment(tx, b.ID, models.PaymentFailed, models.BookingCancelled, transactionID); err != nil {
			return zero, domain.InternalError{Err: err}
		}
		if err := s.reverseTripEffects(tx, b); err != nil {
			return zero, err
		}
		b.PaymentStatus = models.PaymentFailed
		b.BookingStatus = models.BookingCancelled
	}

	if err := tx.Commit(); err != nil {
		return zero, domain.InternalError{Err: err}
	}

	utils.LogEvent(s.RequestID, "booking", "payment",
		fmt.Sprintf("booking_id=%d status=%s", b.ID, paymentStatus))
	if paymentStatus == models.PaymentPaid {
		s.publish("booking.confirmed", map[string]any{
			"booking_id": b.ID, "transaction_id": transactionID,
		})
	} else {
		s.publish("booking.cancelled", map[string]any{
			"booking_id": b.ID, "reason": "payment failed",
		})
	}
	return b, nil
}

// Cancel cancels the caller's booking, computes the refund via the policy,
// and releases the seats back to the trip.
func (s BookingService) Cancel(callerID, bookingID int64, reason string) (models.Booking, error) {
	var zero models.Booking

	tx, err := s.db().Begin()
	if err != nil {
		return zero, domain.InternalError{Err: err}
	}
	defer tx.Rollback()

	b, err := s.Bookings.GetByID(tx, bookingID)
	if err != nil {
		return zero, err
	}
	if callerID != b.PassengerID {
		return zero, domain.ForbiddenError{Msg: "not your booking"}
	}
	if b.BookingStatus == models.BookingCancelled {
		return zero, domain.ValidationError{Field: "booking", Msg: "already cancelled"}
	}

	trip, err := s.Trips.GetByID(tx, b.TripID)
	if err != nil {
		return zero, err
	}

	now := s.now()
	minutesLeft := 0
	if dep, err := utils.CombineDateClock(trip.DepartureDate, trip.DepartureTime); err == nil {
		minutesLeft = int(dep.Sub(now).Minutes())
	}
	refund := s.refund()(minutesLeft, b.PaymentStatus, b.TotalAmount)

	if err := s.Bookings.MarkCancelled(tx, b.ID, reason, "passenger", now, refund); err != nil {
		return zero, domain.InternalError{Err: err}
	}
	if err := s.reverseTripEffects(tx, b); err != nil {
		return zero, err
	}

	if err := tx.Commit(); err != nil {
		return zero, domain.InternalError{Err: err}
	}

	b.BookingStatus = models.BookingCancelled
	b.CancellationReason = reason
	b.CancelledBy = "passenger"
	b.CancelledAt = &now
	b.RefundAmount = refund

	utils.LogEvent(s.RequestID, "booking", "cancel",
		fmt.Sprintf("booking_id=%d refund=%d", b.ID, refund))
	s.publish("booking.cancelled", map[string]any{
		"booking_id": b.ID, "reason": reason, "refund_amount": refund,
	})
	return b, nil
}

// reverseTripEffects is the single reversal path for a booking's footprint
// on its trip: seat counter, earnings, roster entry.
func (s BookingService) reverseTripEffects(tx repositories.DBTX, b models.Booking) error {
	if err := s.Trips.ReleaseSeats(tx, b.TripID, b.SeatsBooked, b.TotalAmount); err != nil {
		return domain.InternalError{Err: err}
	}
	if err := s.Trips.RemovePassenger(tx, b.TripID, b.PassengerID); err != nil {
		return domain.InternalError{Err: err}
	}
	return nil
}

// VerifyOTP confirms a booking in person. The passenger or the trip's
// driver may verify; the code expires 30 minutes after generation.
func (s BookingService) VerifyOTP(callerID, bookingID int64, code string) (models.Booking, error) {
	var zero models.Booking
	db := s.db()

	b, err := s.Bookings.GetByID(db, bookingID)
	if err != nil {
		return zero, err
	}
	trip, err := s.Trips.GetByID(db, b.TripID)
	if err != nil {
		return zero, err
	}
	if callerID != b.PassengerID && callerID != trip.DriverID {
		return zero, domain.ForbiddenError{Msg: "not your booking"}
	}
	if b.BookingStatus == models.BookingCancelled {
		return zero, domain.ValidationError{Field: "booking", Msg: "booking is cancelled"}
	}
	if b.OTPVerified {
		return zero, domain.ValidationError{Field: "otp", Msg: "already verified"}
	}
	if code != b.OTPCode {
		return zero, domain.ValidationError{Field: "otp", Msg: "incorrect code"}
	}
	if utils.MinutesSince(b.OTPGeneratedAt, s.now()) > otpTTLMinutes {
		return zero, domain.ValidationError{Field: "otp", Msg: "code expired"}
	}

	if err := s.Bookings.MarkOTPVerified(db, b.ID); err != nil {
		return zero, domain.InternalError{Err: err}
	}
	b.OTPVerified = true
	b.BookingStatus = models.BookingConfirmed

	utils.LogEvent(s.RequestID, "booking", "verify_otp", fmt.Sprintf("booking_id=%d", b.ID))
	return b, nil
}

// ContactDisclosure is the role-dependent result of a share-contact request.
type ContactDisclosure struct {
	Role    string              `json:"role"`
	Contact models.ContactShare `json:"contact"`
}

// ShareContact discloses the other party's contact to the caller and
// persists the disclosure (with its timestamp) per direction, once.
func (s BookingService) ShareContact(callerID, bookingID int64) (ContactDisclosure, error) {
	var zero ContactDisclosure
	db := s.db()

	b, err := s.Bookings.GetByID(db, bookingID)
	if err != nil {
		return zero, err
	}
	trip, err := s.Trips.GetByID(db, b.TripID)
	if err != nil {
		return zero, err
	}

	switch callerID {
	case b.PassengerID:
		if b.DriverContact != nil {
			return ContactDisclosure{Role: "passenger", Contact: *b.DriverContact}, nil
		}
		driver, err := s.Users.GetByID(db, trip.DriverID)
		if err != nil {
			return zero, err
		}
		c := models.ContactShare{Name: driver.Name, Phone: driver.Phone, SharedAt: s.now()}
		if err := s.Bookings.SetDriverContact(db, b.ID, c); err != nil {
			return zero, domain.InternalError{Err: err}
		}
		return ContactDisclosure{Role: "passenger", Contact: c}, nil

	case trip.DriverID:
		if b.PassengerContact != nil {
			return ContactDisclosure{Role: "driver", Contact: *b.PassengerContact}, nil
		}
		passenger, err := s.Users.GetByID(db, b.PassengerID)
		if err != nil {
			return zero, err
		}
		c := models.ContactShare{Name: passenger.Name, Phone: passenger.Phone, SharedAt: s.now()}
		if err := s.Bookings.SetPassengerContact(db, b.ID, c); err != nil {
			return zero, domain.InternalError{Err: err}
		}
		return ContactDisclosure{Role: "driver", Contact: c}, nil
	}

	return zero, domain.ForbiddenError{Msg: "not a party to this booking"}
}

// Rate records one direction of the post-trip rating and folds it into the
// target user's running average. Each direction may rate once.
func (s BookingService) Rate(callerID, bookingID int64, rating int, review string) error {
	if rating < 1 || rating > 5 {
		return domain.ValidationError{Field: "rating", Msg: "must be between 1 and 5"}
	}

	tx, err := s.db().Begin()
	if err != nil {
		return domain.InternalError{Err: err}
	}
	defer tx.Rollback()

	b, err := s.Bookings.GetByID(tx, bookingID)
	if err != nil {
		return err
	}
	trip, err := s.Trips.GetByID(tx, b.TripID)
	if err != nil {
		return err
	}
	if b.BookingStatus != models.BookingCompleted {
		return domain.ValidationError{Field: "booking", Msg: "rating is only allowed after completion"}
	}

	var targetID int64
	switch callerID {
	case b.PassengerID:
		if err := s.Bookings.SetRatingForDriver(tx, b.ID, rating, review); err != nil {
			return err
		}
		targetID = trip.DriverID
	case trip.DriverID:
		if err := s.Bookings.SetRatingForPassenger(tx, b.ID, rating, review); err != nil {
			return err
		}
		targetID = b.PassengerID
	default:
		return domain.ForbiddenError{Msg: "not a party to this booking"}
	}

	// Streaming mean: newAvg = (avg*count + rating) / (count+1).
	avg, count, err := s.Users.GetRatingForUpdate(tx, targetID)
	if err != nil {
		return err
	}
	newAvg := (avg*float64(count) + float64(rating)) / float64(count+1)
	if err := s.Users.UpdateRating(tx, targetID, newAvg, count+1); err != nil {
		return domain.InternalError{Err: err}
	}

	if err := tx.Commit(); err != nil {
		return domain.InternalError{Err: err}
	}

	utils.LogEvent(s.RequestID, "booking", "rate",
		fmt.Sprintf("booking_id=%d target=%d rating=%d", bookingID, targetID, rating))
	return nil
}

// ListForUser pages through the caller's bookings, newest first.
func (s BookingService) ListForUser(userID int64, status string, p *domain.Pagination) ([]models.Booking, error) {
	if status != "" {
		switch status {
		case models.BookingPending, models.BookingConfirmed, models.BookingCancelled, models.BookingCompleted:
		default:
			return nil, domain.ValidationError{Field: "status", Msg: "unknown booking status"}
		}
	}
	p.Normalize()
	out, err := s.Bookings.ListByPassenger(s.db(), userID, status, p)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return out, nil
}
