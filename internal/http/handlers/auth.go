package handlers

import (
	"net/http"
	"time"

	intconfig "ridepool/internal/config"
	"ridepool/internal/domain"
	"ridepool/internal/domain/models"
	"ridepool/internal/repositories"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// POST /api/auth/login
func Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	repo := repositories.UserRepository{DB: intconfig.DB}
	user, err := repo.GetByEmail(intconfig.DB, req.Email)
	if err != nil {
		if domain.IsNotFound(err) {
			RespondError(c, http.StatusUnauthorized, "wrong email or password", nil)
			return
		}
		RespondError(c, http.StatusInternalServerError, "something went wrong", err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		RespondError(c, http.StatusUnauthorized, "wrong email or password", nil)
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	})

	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "could not issue token", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": tokenString,
		"user":  user,
	})
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role"`
}

// POST /api/auth/register
func Register(c *gin.Context) {
	var req registerRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	role := req.Role
	if role != "driver" {
		role = "user"
	}

	repo := repositories.UserRepository{DB: intconfig.DB}
	if _, err := repo.GetByEmail(intconfig.DB, req.Email); err == nil {
		RespondValidationErrors(c, "email: already registered")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "could not hash password", err)
		return
	}

	id, err := repo.Create(intconfig.DB, models.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         role,
	})
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "could not save user", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "registered",
		"user": gin.H{
			"id":    id,
			"name":  req.Name,
			"email": req.Email,
			"phone": req.Phone,
			"role":  role,
		},
	})
}
