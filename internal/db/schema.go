package db

import (
	"database/sql"
	"log"
)

// EnsureSchema creates the tables the service owns. Idempotent; run once at
// startup so a fresh database works without a separate migration step.
func EnsureSchema(db *sql.DB) error {
	stmts := []struct {
		table string
		ddl   string
	}{
		{"users", `
CREATE TABLE IF NOT EXISTS users (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	email VARCHAR(255) NOT NULL,
	phone VARCHAR(100) NOT NULL DEFAULT '',
	password_hash VARCHAR(255) NOT NULL,
	role VARCHAR(50) NOT NULL DEFAULT 'user',
	status VARCHAR(50) NOT NULL DEFAULT 'active',
	rating_avg DOUBLE NOT NULL DEFAULT 0,
	rating_count INT NOT NULL DEFAULT 0,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
		{"trips", `
CREATE TABLE IF NOT EXISTS trips (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	driver_id BIGINT NOT NULL,
	origin VARCHAR(255) NOT NULL,
	destination VARCHAR(255) NOT NULL,
	departure_date VARCHAR(10) NOT NULL,
	departure_time VARCHAR(5) NOT NULL,
	price_per_seat BIGINT NOT NULL,
	total_seats INT NOT NULL,
	booked_seats INT NOT NULL DEFAULT 0,
	total_earnings BIGINT NOT NULL DEFAULT 0,
	status VARCHAR(50) NOT NULL DEFAULT 'active',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	KEY idx_driver (driver_id),
	KEY idx_route (origin, destination, departure_date)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
		{"trip_passengers", `
CREATE TABLE IF NOT EXISTS trip_passengers (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	trip_id BIGINT NOT NULL,
	user_id BIGINT NOT NULL,
	seats_booked INT NOT NULL,
	booking_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	KEY idx_trip (trip_id),
	KEY idx_user (user_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
		{"bookings", `
CREATE TABLE IF NOT EXISTS bookings (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	booking_code VARCHAR(64) NOT NULL,
	trip_id BIGINT NOT NULL,
	passenger_id BIGINT NOT NULL,
	seats_booked INT NOT NULL,
	total_amount BIGINT NOT NULL,
	pickup_location VARCHAR(255) NOT NULL DEFAULT '',
	pickup_time VARCHAR(5) NOT NULL DEFAULT '',
	drop_location VARCHAR(255) NOT NULL DEFAULT '',
	drop_time VARCHAR(5) NOT NULL DEFAULT '',
	payment_method VARCHAR(50) NOT NULL DEFAULT 'cash',
	payment_status VARCHAR(50) NOT NULL DEFAULT 'pending',
	transaction_id VARCHAR(255) NOT NULL DEFAULT '',
	booking_status VARCHAR(50) NOT NULL DEFAULT 'pending',
	otp_code VARCHAR(4) NOT NULL DEFAULT '',
	otp_generated_at TIMESTAMP NULL DEFAULT NULL,
	otp_verified TINYINT(1) NOT NULL DEFAULT 0,
	note TEXT,
	cancellation_reason TEXT,
	cancelled_by VARCHAR(50) NOT NULL DEFAULT '',
	cancelled_at TIMESTAMP NULL DEFAULT NULL,
	refund_amount BIGINT NOT NULL DEFAULT 0,
	rating_for_driver INT NULL,
	review_for_driver TEXT,
	rating_for_passenger INT NULL,
	review_for_passenger TEXT,
	driver_contact_name VARCHAR(255) NOT NULL DEFAULT '',
	driver_contact_phone VARCHAR(100) NOT NULL DEFAULT '',
	driver_contact_shared_at TIMESTAMP NULL DEFAULT NULL,
	passenger_contact_name VARCHAR(255) NOT NULL DEFAULT '',
	passenger_contact_phone VARCHAR(100) NOT NULL DEFAULT '',
	passenger_contact_shared_at TIMESTAMP NULL DEFAULT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_code (booking_code),
	KEY idx_trip (trip_id),
	KEY idx_passenger (passenger_id, booking_status)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
		{"booking_passengers", `
CREATE TABLE IF NOT EXISTS booking_passengers (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	booking_id BIGINT NOT NULL,
	name VARCHAR(255) NOT NULL,
	age INT NOT NULL DEFAULT 0,
	gender VARCHAR(20) NOT NULL DEFAULT '',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	KEY idx_booking (booking_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	}

	for _, s := range stmts {
		created := !HasTable(db, s.table)
		if _, err := db.Exec(s.ddl); err != nil {
			return err
		}
		if created {
			log.Printf("[SCHEMA] action=create table=%s", s.table)
		}
	}
	return nil
}
