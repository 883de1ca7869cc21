package handlers

import (
	"net/http"
	"strconv"

	intconfig "ridepool/internal/config"
	"ridepool/internal/domain"
	"ridepool/internal/http/middleware"
	"ridepool/internal/repositories"
	"ridepool/internal/services"

	"github.com/gin-gonic/gin"
)

func tripService(c *gin.Context) services.TripService {
	return services.TripService{
		Trips:     repositories.TripRepository{DB: intconfig.DB},
		Bookings:  repositories.BookingRepository{DB: intconfig.DB},
		DB:        intconfig.DB,
		RequestID: middleware.GetRequestID(c),
	}
}

type createTripRequest struct {
	Origin        string `json:"origin" binding:"required"`
	Destination   string `json:"destination" binding:"required"`
	DepartureDate string `json:"departureDate" binding:"required"`
	DepartureTime string `json:"departureTime" binding:"required"`
	PricePerSeat  int64  `json:"pricePerSeat" binding:"required"`
	TotalSeats    int    `json:"totalSeats" binding:"required"`
}

// POST /api/trips
func CreateTrip(c *gin.Context) {
	var req createTripRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	trip, err := tripService(c).Create(middleware.CurrentUserID(c), services.CreateTripInput{
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureDate: req.DepartureDate,
		DepartureTime: req.DepartureTime,
		PricePerSeat:  req.PricePerSeat,
		TotalSeats:    req.TotalSeats,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "trip published", "trip": trip})
}

// GET /api/trips/:id
func GetTrip(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondValidationErrors(c, "id: invalid trip id")
		return
	}
	trip, roster, err := tripService(c).Get(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trip": trip, "passengers": roster})
}

// GET /api/trips?origin&destination&date&page&limit
func ListTrips(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	f := repositories.TripFilter{
		Origin:        c.Query("origin"),
		Destination:   c.Query("destination"),
		DepartureDate: c.Query("date"),
		Status:        c.DefaultQuery("status", "active"),
	}
	p := domain.Pagination{Page: page, Limit: limit}
	trips, err := tripService(c).List(f, &p)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": trips, "pagination": p})
}

// POST /api/trips/:id/complete
func CompleteTrip(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondValidationErrors(c, "id: invalid trip id")
		return
	}
	trip, err := tripService(c).Complete(middleware.CurrentUserID(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "trip completed", "trip": trip})
}
