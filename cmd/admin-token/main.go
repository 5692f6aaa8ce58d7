package main

import (
	"fmt"
	"log"
	"os"

	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/config"
	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/services"
	"github.com/google/uuid"
)

// Mints an admin access token for the management API. Admin identity is
// operator-supplied; there is no interactive login surface in this service.
func main() {
	if len(os.Args) != 2 {
		fmt.Println("Usage: admin-token <email>")
		os.Exit(1)
	}

	email := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry)

	token, err := jwtService.GenerateAccessToken(uuid.New(), email)
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}

	fmt.Println(token)
}
