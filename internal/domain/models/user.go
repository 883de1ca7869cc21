package models

import "time"

// User is a rider or driver account. RatingAvg/RatingCount hold the
// streaming mean of ratings received across bookings.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	RatingAvg    float64   `json:"ratingAvg"`
	RatingCount  int       `json:"ratingCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
