package services

import (
	"bytes"
	"database/sql"
	"fmt"
	"strings"

	intconfig "ridepool/internal/config"
	"ridepool/internal/domain"
	"ridepool/internal/domain/models"
	"ridepool/internal/repositories"
	"ridepool/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService renders the booking e-ticket PDF.
type DocsService struct {
	Bookings repositories.BookingRepository
	Trips    repositories.TripRepository
	Users    repositories.UserRepository
	DB       *sql.DB

	RequestID string
	Loader    func(int64) (ticketData, error)
}

type ticketData struct {
	BookingID   int64
	BookingCode string
	Passengers  []models.PassengerDetail
	Seats       int
	Origin      string
	Destination string
	TripDate    string
	TripTime    string
	Pickup      models.Point
	Drop        models.Point
	DriverName  string
	TotalAmount int64
	Status      string
}

func (s DocsService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

// GenerateETicket builds the PDF for a booking readable by the caller
// (passenger or trip driver).
func (s DocsService) GenerateETicket(callerID, bookingID int64) ([]byte, string, error) {
	data, err := s.loadTicketData(callerID, bookingID)
	if err != nil {
		return nil, "", err
	}
	if data.Status != models.BookingConfirmed && data.Status != models.BookingCompleted {
		return nil, "", domain.ValidationError{Field: "booking", Msg: "ticket available once confirmed"}
	}
	utils.LogEvent(s.RequestID, "docs", "generate_eticket", fmt.Sprintf("booking_id=%d", bookingID))
	return buildETicketPDF(data)
}

func (s DocsService) loadTicketData(callerID, bookingID int64) (ticketData, error) {
	if s.Loader != nil {
		return s.Loader(bookingID)
	}
	db := s.db()

	b, err := s.Bookings.GetByID(db, bookingID)
	if err != nil {
		return ticketData{}, err
	}
	trip, err := s.Trips.GetByID(db, b.TripID)
	if err != nil {
		return ticketData{}, err
	}
	if callerID != b.PassengerID && callerID != trip.DriverID {
		return ticketData{}, domain.ForbiddenError{Msg: "not your booking"}
	}

	out := ticketData{
		BookingID:   b.ID,
		BookingCode: b.BookingCode,
		Seats:       b.SeatsBooked,
		Origin:      trip.Origin,
		Destination: trip.Destination,
		TripDate:    trip.DepartureDate,
		TripTime:    trip.DepartureTime,
		Pickup:      b.PickupPoint,
		Drop:        b.DropPoint,
		TotalAmount: b.TotalAmount,
		Status:      b.BookingStatus,
	}
	if details, err := s.Bookings.ListPassengers(db, b.ID); err == nil {
		out.Passengers = details
	}
	if driver, err := s.Users.GetByID(db, trip.DriverID); err == nil {
		out.DriverName = driver.Name
	}
	return out, nil
}

func buildETicketPDF(d ticketData) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "RIDE E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking code : %s", safe(d.BookingCode, "-")),
		fmt.Sprintf("Route        : %s -> %s", safe(d.Origin, "-"), safe(d.Destination, "-")),
		fmt.Sprintf("Departure    : %s %s", safe(d.TripDate, "-"), safe(d.TripTime, "-")),
		fmt.Sprintf("Pickup       : %s (%s)", safe(d.Pickup.Location, "-"), safe(d.Pickup.Time, "-")),
		fmt.Sprintf("Drop         : %s (%s)", safe(d.Drop.Location, "-"), safe(d.Drop.Time, "-")),
		fmt.Sprintf("Driver       : %s", safe(d.DriverName, "-")),
		fmt.Sprintf("Seats        : %d", d.Seats),
		fmt.Sprintf("Total        : %s", utils.FormatMoney(d.TotalAmount)),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Passengers:")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	for i, p := range d.Passengers {
		pdf.Cell(0, 6, fmt.Sprintf("%d) %s", i+1, safe(p.Name, "-")))
		pdf.Ln(6)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Show this ticket to the driver at pickup. The driver confirms the ride with your one-time code.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("ETICKET_%d_%s.pdf", d.BookingID, safeFilenamePart(d.BookingCode))
	return buf.Bytes(), filename, nil
}

func safe(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func safeFilenamePart(s string) string {
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-")
	out := replacer.Replace(strings.TrimSpace(s))
	if out == "" {
		return "x"
	}
	return out
}
