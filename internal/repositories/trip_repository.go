package repositories

import (
	"database/sql"
	"strings"

	"ridepool/internal/domain"
	"ridepool/internal/domain/models"
)

type TripRepository struct {
	DB *sql.DB
}

const tripColumns = `id, driver_id, origin, destination, departure_date, departure_time,
	price_per_seat, total_seats, booked_seats, total_earnings, status, created_at, updated_at`

func scanTrip(row *sql.Row) (models.Trip, error) {
	var t models.Trip
	err := row.Scan(
		&t.ID,
		&t.DriverID,
		&t.Origin,
		&t.Destination,
		&t.DepartureDate,
		&t.DepartureTime,
		&t.PricePerSeat,
		&t.TotalSeats,
		&t.BookedSeats,
		&t.TotalEarnings,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	return t, err
}

func (r TripRepository) GetByID(q DBTX, id int64) (models.Trip, error) {
	if id <= 0 {
		return models.Trip{}, domain.ValidationError{Field: "trip_id", Msg: "invalid id"}
	}
	t, err := scanTrip(q.QueryRow(`SELECT `+tripColumns+` FROM trips WHERE id=? LIMIT 1`, id))
	if err == sql.ErrNoRows {
		return models.Trip{}, domain.NotFoundError{Resource: "trip"}
	}
	return t, err
}

func (r TripRepository) Create(q DBTX, t models.Trip) (int64, error) {
	res, err := q.Exec(`
		INSERT INTO trips (driver_id, origin, destination, departure_date, departure_time,
			price_per_seat, total_seats, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, 'active')
	`, t.DriverID, t.Origin, t.Destination, t.DepartureDate, t.DepartureTime,
		t.PricePerSeat, t.TotalSeats)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// TripFilter narrows trip listing.
type TripFilter struct {
	Origin        string
	Destination   string
	DepartureDate string
	DriverID      int64
	Status        string
}

func (r TripRepository) List(q DBTX, f TripFilter, p *domain.Pagination) ([]models.Trip, error) {
	where := []string{"1=1"}
	args := []any{}
	if f.Origin != "" {
		where = append(where, "origin LIKE ?")
		args = append(args, "%"+f.Origin+"%")
	}
	if f.Destination != "" {
		where = append(where, "destination LIKE ?")
		args = append(args, "%"+f.Destination+"%")
	}
	if f.DepartureDate != "" {
		where = append(where, "departure_date=?")
		args = append(args, f.DepartureDate)
	}
	if f.DriverID > 0 {
		where = append(where, "driver_id=?")
		args = append(args, f.DriverID)
	}
	if f.Status != "" {
		where = append(where, "status=?")
		args = append(args, f.Status)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := q.QueryRow(`SELECT COUNT(*) FROM trips WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, err
	}
	p.SetTotal(total)

	rows, err := q.Query(`SELECT `+tripColumns+` FROM trips WHERE `+cond+`
		ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		append(args, p.Limit, p.Offset())...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Trip{}
	for rows.Next() {
		var t models.Trip
		if err := rows.Scan(
			&t.ID, &t.DriverID, &t.Origin, &t.Destination, &t.DepartureDate, &t.DepartureTime,
			&t.PricePerSeat, &t.TotalSeats, &t.BookedSeats, &t.TotalEarnings, &t.Status,
			&t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ReserveSeats bumps booked_seats/total_earnings only when the trip is still
// active and has enough capacity; zero rows affected means the seats were
// taken by a concurrent booking.
func (r TripRepository) ReserveSeats(q DBTX, tripID int64, seats int, amount int64) error {
	res, err := q.Exec(`
		UPDATE trips
		SET booked_seats = booked_seats + ?, total_earnings = total_earnings + ?
		WHERE id=? AND status='active' AND total_seats - booked_seats >= ?
	`, seats, amount, tripID, seats)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ConflictError{Resource: "trip", Msg: "not enough seats available"}
	}
	return nil
}

// ReleaseSeats reverses a prior reservation on the trip's counters.
func (r TripRepository) ReleaseSeats(q DBTX, tripID int64, seats int, amount int64) error {
	_, err := q.Exec(`
		UPDATE trips
		SET booked_seats = GREATEST(booked_seats - ?, 0),
		    total_earnings = total_earnings - ?
		WHERE id=?
	`, seats, amount, tripID)
	return err
}

func (r TripRepository) AddPassenger(q DBTX, tripID, userID int64, seats int) error {
	_, err := q.Exec(`
		INSERT INTO trip_passengers (trip_id, user_id, seats_booked)
		VALUES (?, ?, ?)
	`, tripID, userID, seats)
	return err
}

func (r TripRepository) RemovePassenger(q DBTX, tripID, userID int64) error {
	_, err := q.Exec(`
		DELETE FROM trip_passengers WHERE trip_id=? AND user_id=?
	`, tripID, userID)
	return err
}

func (r TripRepository) ListPassengers(q DBTX, tripID int64) ([]models.TripPassenger, error) {
	rows, err := q.Query(`
		SELECT id, trip_id, user_id, seats_booked, booking_date
		FROM trip_passengers WHERE trip_id=? ORDER BY booking_date ASC, id ASC
	`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.TripPassenger{}
	for rows.Next() {
		var p models.TripPassenger
		if err := rows.Scan(&p.ID, &p.TripID, &p.UserID, &p.SeatsBooked, &p.BookingDate); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r TripRepository) UpdateStatus(q DBTX, tripID int64, status string) error {
	res, err := q.Exec(`UPDATE trips SET status=? WHERE id=?`, status, tripID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFoundError{Resource: "trip"}
	}
	return nil
}
