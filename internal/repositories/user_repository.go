package repositories

import (
	"database/sql"
	"fmt"

	"ridepool/internal/domain"
	"ridepool/internal/domain/models"
)

type UserRepository struct {
	DB *sql.DB
}

const userColumns = `id, name, email, phone, password_hash, role, status, rating_avg, rating_count, created_at, updated_at`

func scanUser(row *sql.Row) (models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Phone,
		&u.PasswordHash,
		&u.Role,
		&u.Status,
		&u.RatingAvg,
		&u.RatingCount,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

func (r UserRepository) GetByID(q DBTX, id int64) (models.User, error) {
	if id <= 0 {
		return models.User{}, domain.ValidationError{Field: "user_id", Msg: "invalid id"}
	}
	u, err := scanUser(q.QueryRow(`SELECT `+userColumns+` FROM users WHERE id=? LIMIT 1`, id))
	if err == sql.ErrNoRows {
		return models.User{}, domain.NotFoundError{Resource: "user"}
	}
	return u, err
}

func (r UserRepository) GetByEmail(q DBTX, email string) (models.User, error) {
	u, err := scanUser(q.QueryRow(`SELECT `+userColumns+` FROM users WHERE email=? LIMIT 1`, email))
	if err == sql.ErrNoRows {
		return models.User{}, domain.NotFoundError{Resource: "user"}
	}
	return u, err
}

func (r UserRepository) Create(q DBTX, u models.User) (int64, error) {
	res, err := q.Exec(`
		INSERT INTO users (name, email, phone, password_hash, role, status)
		VALUES (?, ?, ?, ?, ?, 'active')
	`, u.Name, u.Email, u.Phone, u.PasswordHash, u.Role)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetRatingForUpdate reads a user's rating aggregate with a row lock, so two
// concurrent raters cannot both fold into the same stale mean.
func (r UserRepository) GetRatingForUpdate(q DBTX, userID int64) (avg float64, count int, err error) {
	err = q.QueryRow(`SELECT rating_avg, rating_count FROM users WHERE id=? FOR UPDATE`, userID).
		Scan(&avg, &count)
	if err == sql.ErrNoRows {
		return 0, 0, domain.NotFoundError{Resource: "user", Err: fmt.Errorf("id %d", userID)}
	}
	return avg, count, err
}

// UpdateRating stores the recomputed rating aggregate.
func (r UserRepository) UpdateRating(q DBTX, userID int64, avg float64, count int) error {
	_, err := q.Exec(`UPDATE users SET rating_avg=?, rating_count=? WHERE id=?`, avg, count, userID)
	return err
}
