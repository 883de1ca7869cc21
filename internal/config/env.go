package config

import (
	"os"
	"strings"
)

type Env struct {
	AppAddr   string
	GinMode   string
	DBDSN     string
	JWTSecret string
	AMQPURL   string
}

func LoadEnv() Env {
	appAddr := strings.TrimSpace(os.Getenv("APP_ADDR"))
	if appAddr == "" {
		appAddr = ":8080"
	}

	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		secret = "super-secret-key-change-me"
	}

	return Env{
		AppAddr:   appAddr,
		GinMode:   strings.TrimSpace(os.Getenv("GIN_MODE")),
		DBDSN:     strings.TrimSpace(os.Getenv("DB_DSN")),
		JWTSecret: secret,
		AMQPURL:   strings.TrimSpace(os.Getenv("AMQP_URL")),
	}
}
