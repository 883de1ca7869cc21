package handlers

import (
	"net/http"

	intconfig "ridepool/internal/config"
	intdb "ridepool/internal/db"

	"github.com/gin-gonic/gin"
)

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "ridepool backend running"})
}

func DBCheck(c *gin.Context) {
	if intconfig.DB == nil {
		RespondError(c, http.StatusInternalServerError, "database not connected", nil)
		return
	}
	if err := intconfig.EnsureDB(); err != nil {
		RespondError(c, http.StatusInternalServerError, "database unreachable", err)
		return
	}
	tables := []string{"users", "trips", "trip_passengers", "bookings", "booking_passengers"}
	missing := []string{}
	for _, t := range tables {
		if !intdb.HasTable(intconfig.DB, t) {
			missing = append(missing, t)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"message":        "database connection OK",
		"missing_tables": missing,
	})
}
