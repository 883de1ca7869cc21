package repositories

import (
	"database/sql"
	"strings"
	"time"

	"ridepool/internal/domain"
	"ridepool/internal/domain/models"
)

type BookingRepository struct {
	DB *sql.DB
}

const bookingColumns = `id, booking_code, trip_id, passenger_id, seats_booked, total_amount,
	pickup_location, pickup_time, drop_location, drop_time,
	payment_method, payment_status, transaction_id, booking_status,
	otp_code, otp_generated_at, otp_verified, note,
	cancellation_reason, cancelled_by, cancelled_at, refund_amount,
	rating_for_driver, review_for_driver, rating_for_passenger, review_for_passenger,
	driver_contact_name, driver_contact_phone, driver_contact_shared_at,
	passenger_contact_name, passenger_contact_phone, passenger_contact_shared_at,
	created_at, updated_at`

type bookingScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row bookingScanner) (models.Booking, error) {
	var (
		b models.Booking

		otpGeneratedAt sql.NullTime
		note           sql.NullString
		cancelReason   sql.NullString
		cancelledAt    sql.NullTime

		ratingDriver    sql.NullInt64
		reviewDriver    sql.NullString
		ratingPassenger sql.NullInt64
		reviewPassenger sql.NullString

		drvName     string
		drvPhone    string
		drvSharedAt sql.NullTime
		pasName     string
		pasPhone    string
		pasSharedAt sql.NullTime
	)

	err := row.Scan(
		&b.ID, &b.BookingCode, &b.TripID, &b.PassengerID, &b.SeatsBooked, &b.TotalAmount,
		&b.PickupPoint.Location, &b.PickupPoint.Time, &b.DropPoint.Location, &b.DropPoint.Time,
		&b.PaymentMethod, &b.PaymentStatus, &b.TransactionID, &b.BookingStatus,
		&b.OTPCode, &otpGeneratedAt, &b.OTPVerified, &note,
		&cancelReason, &b.CancelledBy, &cancelledAt, &b.RefundAmount,
		&ratingDriver, &reviewDriver, &ratingPassenger, &reviewPassenger,
		&drvName, &drvPhone, &drvSharedAt,
		&pasName, &pasPhone, &pasSharedAt,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return b, err
	}

	if otpGeneratedAt.Valid {
		b.OTPGeneratedAt = otpGeneratedAt.Time
	}
	b.Note = note.String
	b.CancellationReason = cancelReason.String
	if cancelledAt.Valid {
		t := cancelledAt.Time
		b.CancelledAt = &t
	}
	if ratingDriver.Valid {
		b.RatingForDriver = &models.RatingEntry{Rating: int(ratingDriver.Int64), Review: reviewDriver.String}
	}
	if ratingPassenger.Valid {
		b.RatingForPassenger = &models.RatingEntry{Rating: int(ratingPassenger.Int64), Review: reviewPassenger.String}
	}
	if drvSharedAt.Valid {
		b.DriverContact = &models.ContactShare{Name: drvName, Phone: drvPhone, SharedAt: drvSharedAt.Time}
	}
	if pasSharedAt.Valid {
		b.PassengerContact = &models.ContactShare{Name: pasName, Phone: pasPhone, SharedAt: pasSharedAt.Time}
	}
	return b, nil
}

func (r BookingRepository) GetByID(q DBTX, id int64) (models.Booking, error) {
	if id <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "booking_id", Msg: "invalid id"}
	}
	b, err := scanBooking(q.QueryRow(`SELECT `+bookingColumns+` FROM bookings WHERE id=? LIMIT 1`, id))
	if err == sql.ErrNoRows {
		return models.Booking{}, domain.NotFoundError{Resource: "booking"}
	}
	return b, err
}

func (r BookingRepository) Insert(q DBTX, b models.Booking) (int64, error) {
	res, err := q.Exec(`
		INSERT INTO bookings (booking_code, trip_id, passenger_id, seats_booked, total_amount,
			pickup_location, pickup_time, drop_location, drop_time,
			payment_method, payment_status, booking_status,
			otp_code, otp_generated_at, otp_verified, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'pending', 'pending', ?, ?, 0, ?)
	`, b.BookingCode, b.TripID, b.PassengerID, b.SeatsBooked, b.TotalAmount,
		b.PickupPoint.Location, b.PickupPoint.Time, b.DropPoint.Location, b.DropPoint.Time,
		b.PaymentMethod, b.OTPCode, b.OTPGeneratedAt, b.Note)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r BookingRepository) InsertPassengers(q DBTX, bookingID int64, details []models.PassengerDetail) error {
	for _, d := range details {
		if _, err := q.Exec(`
			INSERT INTO booking_passengers (booking_id, name, age, gender)
			VALUES (?, ?, ?, ?)
		`, bookingID, d.Name, d.Age, d.Gender); err != nil {
			return err
		}
	}
	return nil
}

func (r BookingRepository) ListPassengers(q DBTX, bookingID int64) ([]models.PassengerDetail, error) {
	rows, err := q.Query(`
		SELECT name, age, gender FROM booking_passengers WHERE booking_id=? ORDER BY id ASC
	`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.PassengerDetail{}
	for rows.Next() {
		var d models.PassengerDetail
		if err := rows.Scan(&d.Name, &d.Age, &d.Gender); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r BookingRepository) UpdatePayment(q DBTX, id int64, paymentStatus, bookingStatus, transactionID string) error {
	_, err := q.Exec(`
		UPDATE bookings SET payment_status=?, booking_status=?, transaction_id=? WHERE id=?
	`, paymentStatus, bookingStatus, transactionID, id)
	return err
}

func (r BookingRepository) MarkCancelled(q DBTX, id int64, reason, by string, at time.Time, refund int64) error {
	_, err := q.Exec(`
		UPDATE bookings SET booking_status='cancelled', cancellation_reason=?, cancelled_by=?,
			cancelled_at=?, refund_amount=? WHERE id=?
	`, reason, by, at, refund, id)
	return err
}

func (r BookingRepository) MarkOTPVerified(q DBTX, id int64) error {
	_, err := q.Exec(`
		UPDATE bookings SET otp_verified=1, booking_status='confirmed' WHERE id=?
	`, id)
	return err
}

// SetDriverContact persists the driver's disclosed contact on the booking.
func (r BookingRepository) SetDriverContact(q DBTX, id int64, c models.ContactShare) error {
	_, err := q.Exec(`
		UPDATE bookings SET driver_contact_name=?, driver_contact_phone=?, driver_contact_shared_at=?
		WHERE id=?
	`, c.Name, c.Phone, c.SharedAt, id)
	return err
}

// SetPassengerContact persists the passenger's disclosed contact on the booking.
func (r BookingRepository) SetPassengerContact(q DBTX, id int64, c models.ContactShare) error {
	_, err := q.Exec(`
		UPDATE bookings SET passenger_contact_name=?, passenger_contact_phone=?, passenger_contact_shared_at=?
		WHERE id=?
	`, c.Name, c.Phone, c.SharedAt, id)
	return err
}

// SetRatingForDriver records the passenger's rating of the driver; guarded so
// a second write cannot overwrite the first.
func (r BookingRepository) SetRatingForDriver(q DBTX, id int64, rating int, review string) error {
	res, err := q.Exec(`
		UPDATE bookings SET rating_for_driver=?, review_for_driver=?
		WHERE id=? AND rating_for_driver IS NULL
	`, rating, review, id)
	if err != nil {
		return err
	}
	return oneRowOrConflict(res, "rating")
}

// SetRatingForPassenger records the driver's rating of the passenger.
func (r BookingRepository) SetRatingForPassenger(q DBTX, id int64, rating int, review string) error {
	res, err := q.Exec(`
		UPDATE bookings SET rating_for_passenger=?, review_for_passenger=?
		WHERE id=? AND rating_for_passenger IS NULL
	`, rating, review, id)
	if err != nil {
		return err
	}
	return oneRowOrConflict(res, "rating")
}

func oneRowOrConflict(res sql.Result, resource string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ConflictError{Resource: resource, Msg: "already submitted"}
	}
	return nil
}

// MarkCompletedByTrip flips all confirmed bookings of a trip to completed.
func (r BookingRepository) MarkCompletedByTrip(q DBTX, tripID int64) error {
	_, err := q.Exec(`
		UPDATE bookings SET booking_status='completed'
		WHERE trip_id=? AND booking_status='confirmed'
	`, tripID)
	return err
}

// ListByPassenger pages through a user's bookings newest first, optionally
// filtered by booking status.
func (r BookingRepository) ListByPassenger(q DBTX, passengerID int64, status string, p *domain.Pagination) ([]models.Booking, error) {
	where := []string{"passenger_id=?"}
	args := []any{passengerID}
	if status != "" {
		where = append(where, "booking_status=?")
		args = append(args, status)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := q.QueryRow(`SELECT COUNT(*) FROM bookings WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, err
	}
	p.SetTotal(total)

	rows, err := q.Query(`SELECT `+bookingColumns+` FROM bookings WHERE `+cond+`
		ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		append(args, p.Limit, p.Offset())...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
