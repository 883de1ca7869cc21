package api

import (
	"log"
	stdhttp "net/http"
	"os"
	"strings"
	"time"

	intconfig "ridepool/internal/config"
	h "ridepool/internal/http/handlers"
	"ridepool/internal/http/middleware"
	"ridepool/internal/notify"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env, notifier notify.Publisher) *gin.Engine {
	h.Configure(env.JWTSecret, notifier)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), corsMiddleware())

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"message": "route not found",
			"path":    c.Request.URL.Path,
			"method":  c.Request.Method,
		})
	})

	auth := middleware.RequireAuth(h.JWTSecret())

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)

		// Auth
		authGroup := api.Group("/auth")
		authGroup.POST("/login", h.Login)
		authGroup.POST("/register", h.Register)

		// Trips
		trips := api.Group("/trips")
		trips.GET("", h.ListTrips)
		trips.GET("/:id", h.GetTrip)
		trips.POST("", auth, h.CreateTrip)
		trips.POST("/:id/complete", auth, h.CompleteTrip)

		// Bookings
		bookings := api.Group("/bookings", auth)
		bookings.POST("", h.CreateBooking)
		bookings.GET("/:id", h.GetBooking)
		bookings.PATCH("/:id/payment", h.UpdateBookingPayment)
		bookings.PATCH("/:id/cancel", h.CancelBooking)
		bookings.POST("/:id/verify-otp", h.VerifyBookingOTP)
		bookings.POST("/:id/share-contact", h.ShareBookingContact)
		bookings.POST("/:id/rate", h.RateBooking)
		bookings.GET("/:id/e-ticket", h.GetBookingETicket)

		// Caller's own bookings
		users := api.Group("/users", auth)
		users.GET("/bookings", h.ListUserBookings)
	}

	return r
}

func corsMiddleware() gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "Accept", "Origin", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}
	if env := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); env != "" {
		for _, o := range strings.Split(env, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowOrigins = append(cfg.AllowOrigins, o)
			}
		}
	} else {
		cfg.AllowOrigins = []string{
			"http://localhost:3000", "http://127.0.0.1:3000",
			"http://localhost:5173", "http://127.0.0.1:5173",
		}
	}
	return cors.New(cfg)
}
