package services

import (
	"database/sql"
	"fmt"

	intconfig "ridepool/internal/config"
	"ridepool/internal/domain"
	"ridepool/internal/domain/models"
	"ridepool/internal/repositories"
	"ridepool/internal/utils"
)

// TripService manages driver-published ride offerings.
type TripService struct {
	Trips    repositories.TripRepository
	Bookings repositories.BookingRepository
	DB       *sql.DB

	RequestID string
}

func (s TripService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

type CreateTripInput struct {
	Origin        string
	Destination   string
	DepartureDate string
	DepartureTime string
	PricePerSeat  int64
	TotalSeats    int
}

func (s TripService) Create(driverID int64, in CreateTripInput) (models.Trip, error) {
	var zero models.Trip
	if in.Origin == "" || in.Destination == "" {
		return zero, domain.ValidationError{Field: "route", Msg: "origin and destination are required"}
	}
	if _, err := utils.ParseDate(in.DepartureDate); err != nil {
		return zero, domain.ValidationError{Field: "departureDate", Msg: "want YYYY-MM-DD"}
	}
	clock, err := utils.ParseClock(in.DepartureTime)
	if err != nil {
		return zero, domain.ValidationError{Field: "departureTime", Msg: err.Error()}
	}
	if in.PricePerSeat <= 0 {
		return zero, domain.ValidationError{Field: "pricePerSeat", Msg: "must be positive"}
	}
	if in.TotalSeats < 1 || in.TotalSeats > 7 {
		return zero, domain.ValidationError{Field: "totalSeats", Msg: "must be between 1 and 7"}
	}

	t := models.Trip{
		DriverID:      driverID,
		Origin:        in.Origin,
		Destination:   in.Destination,
		DepartureDate: in.DepartureDate,
		DepartureTime: clock,
		PricePerSeat:  in.PricePerSeat,
		TotalSeats:    in.TotalSeats,
		Status:        models.TripActive,
	}
	id, err := s.Trips.Create(s.db(), t)
	if err != nil {
		return zero, domain.InternalError{Err: err}
	}
	t.ID = id

	utils.LogEvent(s.RequestID, "trip", "create",
		fmt.Sprintf("trip_id=%d driver_id=%d seats=%d", id, driverID, in.TotalSeats))
	return t, nil
}

func (s TripService) Get(tripID int64) (models.Trip, []models.TripPassenger, error) {
	db := s.db()
	t, err := s.Trips.GetByID(db, tripID)
	if err != nil {
		return models.Trip{}, nil, err
	}
	roster, err := s.Trips.ListPassengers(db, tripID)
	if err != nil {
		return models.Trip{}, nil, domain.InternalError{Err: err}
	}
	return t, roster, nil
}

func (s TripService) List(f repositories.TripFilter, p *domain.Pagination) ([]models.Trip, error) {
	p.Normalize()
	out, err := s.Trips.List(s.db(), f, p)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return out, nil
}

// Complete marks the driver's trip as completed and flips its confirmed
// bookings to completed, which unlocks rating.
func (s TripService) Complete(driverID, tripID int64) (models.Trip, error) {
	var zero models.Trip

	tx, err := s.db().Begin()
	if err != nil {
		return zero, domain.InternalError{Err: err}
	}
	defer tx.Rollback()

	t, err := s.Trips.GetByID(tx, tripID)
	if err != nil {
		return zero, err
	}
	if t.DriverID != driverID {
		return zero, domain.ForbiddenError{Msg: "only the trip's driver can complete it"}
	}
	if t.Status != models.TripActive {
		return zero, domain.ValidationError{Field: "trip", Msg: "trip is not active"}
	}

	if err := s.Trips.UpdateStatus(tx, tripID, models.TripCompleted); err != nil {
		return zero, err
	}
	if err := s.Bookings.MarkCompletedByTrip(tx, tripID); err != nil {
		return zero, domain.InternalError{Err: err}
	}

	if err := tx.Commit(); err != nil {
		return zero, domain.InternalError{Err: err}
	}

	t.Status = models.TripCompleted
	utils.LogEvent(s.RequestID, "trip", "complete", fmt.Sprintf("trip_id=%d", tripID))
	return t, nil
}
