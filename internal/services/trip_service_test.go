package services

import (
	"testing"

	"ridepool/internal/domain"
	"ridepool/internal/domain/models"
	"ridepool/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockTripService(t *testing.T) (TripService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	svc := TripService{
		Trips:    repositories.TripRepository{DB: db},
		Bookings: repositories.BookingRepository{DB: db},
		DB:       db,
	}
	return svc, mock, func() { db.Close() }
}

func TestCreateTripValidation(t *testing.T) {
	svc, _, done := newMockTripService(t)
	defer done()

	base := CreateTripInput{
		Origin:        "Springfield",
		Destination:   "Shelbyville",
		DepartureDate: "2030-01-02",
		DepartureTime: "08:00",
		PricePerSeat:  15000,
		TotalSeats:    4,
	}

	cases := []struct {
		name   string
		mutate func(*CreateTripInput)
	}{
		{"missing origin", func(in *CreateTripInput) { in.Origin = "" }},
		{"bad date", func(in *CreateTripInput) { in.DepartureDate = "02-01-2030" }},
		{"bad time", func(in *CreateTripInput) { in.DepartureTime = "8am" }},
		{"zero price", func(in *CreateTripInput) { in.PricePerSeat = 0 }},
		{"too many seats", func(in *CreateTripInput) { in.TotalSeats = 8 }},
		{"zero seats", func(in *CreateTripInput) { in.TotalSeats = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := base
			tc.mutate(&in)
			if _, err := svc.Create(5, in); !domain.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateTripSuccess(t *testing.T) {
	svc, mock, done := newMockTripService(t)
	defer done()

	mock.ExpectExec("INSERT INTO trips").
		WithArgs(int64(5), "Springfield", "Shelbyville", "2030-01-02", "08:00", int64(15000), 4).
		WillReturnResult(sqlmock.NewResult(9, 1))

	trip, err := svc.Create(5, CreateTripInput{
		Origin:        "Springfield",
		Destination:   "Shelbyville",
		DepartureDate: "2030-01-02",
		DepartureTime: "08:00",
		PricePerSeat:  15000,
		TotalSeats:    4,
	})
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if trip.ID != 9 || trip.Status != models.TripActive {
		t.Fatalf("unexpected trip: %+v", trip)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCompleteTripFlipsBookings(t *testing.T) {
	svc, mock, done := newMockTripService(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM trips WHERE id=").WithArgs(int64(9)).
		WillReturnRows(tripRow(9, 5, 15000, 4, 3, models.TripActive))
	mock.ExpectExec("UPDATE trips SET status").
		WithArgs(models.TripCompleted, int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bookings SET booking_status='completed'").
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	trip, err := svc.Complete(5, 9)
	if err != nil {
		t.Fatalf("complete error: %v", err)
	}
	if trip.Status != models.TripCompleted {
		t.Fatalf("status = %s, want completed", trip.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCompleteTripOnlyDriver(t *testing.T) {
	svc, mock, done := newMockTripService(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM trips WHERE id=").WithArgs(int64(9)).
		WillReturnRows(tripRow(9, 5, 15000, 4, 3, models.TripActive))
	mock.ExpectRollback()

	if _, err := svc.Complete(7, 9); !domain.IsForbidden(err) {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestCompleteTripAlreadyCompleted(t *testing.T) {
	svc, mock, done := newMockTripService(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM trips WHERE id=").WithArgs(int64(9)).
		WillReturnRows(tripRow(9, 5, 15000, 4, 3, models.TripCompleted))
	mock.ExpectRollback()

	if _, err := svc.Complete(5, 9); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListTripsNormalizesPagination(t *testing.T) {
	svc, mock, done := newMockTripService(t)
	defer done()

	mock.ExpectQuery("SELECT COUNT").WithArgs("active").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM trips WHERE").
		WithArgs("active", 10, 0).
		WillReturnRows(sqlmock.NewRows(tripCols))

	p := domain.Pagination{Page: 0, Limit: 0}
	if _, err := svc.List(repositories.TripFilter{Status: "active"}, &p); err != nil {
		t.Fatalf("list error: %v", err)
	}
	if p.Page != 1 || p.Limit != 10 {
		t.Fatalf("pagination not normalized: %+v", p)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
