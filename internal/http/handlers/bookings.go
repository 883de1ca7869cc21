package handlers

import (
	"net/http"
	"strconv"

	intconfig "ridepool/internal/config"
	"ridepool/internal/domain"
	"ridepool/internal/domain/models"
	"ridepool/internal/http/middleware"
	"ridepool/internal/repositories"
	"ridepool/internal/services"

	"github.com/gin-gonic/gin"
)

func bookingService(c *gin.Context) services.BookingService {
	return services.BookingService{
		Bookings:  repositories.BookingRepository{DB: intconfig.DB},
		Trips:     repositories.TripRepository{DB: intconfig.DB},
		Users:     repositories.UserRepository{DB: intconfig.DB},
		DB:        intconfig.DB,
		Notifier:  notifier,
		RequestID: middleware.GetRequestID(c),
	}
}

func bookingIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondValidationErrors(c, "id: invalid booking id")
		return 0, false
	}
	return id, true
}

type pointPayload struct {
	Location string `json:"location" binding:"required"`
	Time     string `json:"time" binding:"required"`
}

type passengerDetailPayload struct {
	Name   string `json:"name" binding:"required"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
}

type createBookingRequest struct {
	TripID           int64                    `json:"tripId" binding:"required"`
	SeatsBooked      int                      `json:"seatsBooked" binding:"required"`
	PickupPoint      pointPayload             `json:"pickupPoint" binding:"required"`
	DropPoint        pointPayload             `json:"dropPoint" binding:"required"`
	PaymentMethod    string                   `json:"paymentMethod" binding:"required"`
	PassengerDetails []passengerDetailPayload `json:"passengerDetails" binding:"required"`
	Note             string                   `json:"note"`
}

// POST /api/bookings
// The plaintext OTP is part of the response for parity with the mobile
// client contract; it is also pushed out-of-band via the notifier. Delivering
// it only by SMS is the safer shape once all clients support it.
func CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	details := make([]models.PassengerDetail, 0, len(req.PassengerDetails))
	for _, p := range req.PassengerDetails {
		details = append(details, models.PassengerDetail{Name: p.Name, Age: p.Age, Gender: p.Gender})
	}

	svc := bookingService(c)
	booking, trip, err := svc.Create(middleware.CurrentUserID(c), services.CreateBookingInput{
		TripID:        req.TripID,
		Seats:         req.SeatsBooked,
		PickupPoint:   models.Point{Location: req.PickupPoint.Location, Time: req.PickupPoint.Time},
		DropPoint:     models.Point{Location: req.DropPoint.Location, Time: req.DropPoint.Time},
		PaymentMethod: req.PaymentMethod,
		Passengers:    details,
		Note:          req.Note,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "booking created",
		"booking": booking,
		"trip":    trip,
		"otp":     booking.OTPCode,
	})
}

// GET /api/bookings/:id
func GetBooking(c *gin.Context) {
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}
	booking, trip, err := bookingService(c).Get(middleware.CurrentUserID(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking, "trip": trip})
}

type paymentUpdateRequest struct {
	PaymentStatus string `json:"paymentStatus" binding:"required"`
	TransactionID string `json:"transactionId"`
}

// PATCH /api/bookings/:id/payment
func UpdateBookingPayment(c *gin.Context) {
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}
	var req paymentUpdateRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	booking, err := bookingService(c).UpdatePayment(middleware.CurrentUserID(c), id, req.PaymentStatus, req.TransactionID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "payment updated", "booking": booking})
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// PATCH /api/bookings/:id/cancel
func CancelBooking(c *gin.Context) {
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}
	var req cancelRequest
	if c.Request.Body != nil {
		_ = c.ShouldBindJSON(&req)
	}
	booking, err := bookingService(c).Cancel(middleware.CurrentUserID(c), id, req.Reason)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "booking cancelled",
		"booking":      booking,
		"refundAmount": booking.RefundAmount,
	})
}

type verifyOTPRequest struct {
	OTP string `json:"otp" binding:"required,len=4"`
}

// POST /api/bookings/:id/verify-otp
func VerifyBookingOTP(c *gin.Context) {
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}
	var req verifyOTPRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	booking, err := bookingService(c).VerifyOTP(middleware.CurrentUserID(c), id, req.OTP)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "booking confirmed", "booking": booking})
}

// POST /api/bookings/:id/share-contact
func ShareBookingContact(c *gin.Context) {
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}
	disclosure, err := bookingService(c).ShareContact(middleware.CurrentUserID(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "contact shared",
		"role":    disclosure.Role,
		"contact": disclosure.Contact,
	})
}

type rateRequest struct {
	Rating int    `json:"rating" binding:"required"`
	Review string `json:"review"`
}

// POST /api/bookings/:id/rate
func RateBooking(c *gin.Context) {
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}
	var req rateRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := bookingService(c).Rate(middleware.CurrentUserID(c), id, req.Rating, req.Review); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "rating saved"})
}

// GET /api/users/bookings?page&limit&status
func ListUserBookings(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	status := c.Query("status")

	p := domain.Pagination{Page: page, Limit: limit}
	bookings, err := bookingService(c).ListForUser(middleware.CurrentUserID(c), status, &p)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bookings":   bookings,
		"pagination": p,
	})
}

// GET /api/bookings/:id/e-ticket
func GetBookingETicket(c *gin.Context) {
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}
	svc := services.DocsService{
		Bookings:  repositories.BookingRepository{DB: intconfig.DB},
		Trips:     repositories.TripRepository{DB: intconfig.DB},
		Users:     repositories.UserRepository{DB: intconfig.DB},
		DB:        intconfig.DB,
		RequestID: middleware.GetRequestID(c),
	}
	pdf, filename, err := svc.GenerateETicket(middleware.CurrentUserID(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
