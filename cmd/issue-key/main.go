package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/config"
	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/database"
	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/services"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 || len(os.Args) > 3 {
		fmt.Println("Usage: issue-key <name> [comma-separated-domains]")
		os.Exit(1)
	}

	name := os.Args[1]
	var domains []string
	if len(os.Args) == 3 {
		domains = strings.Split(os.Args[2], ",")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	credentialService := services.NewCredentialService(db, cfg, zap.NewNop())

	cred, rawKey, err := credentialService.Issue(ctx, services.IssueParams{
		Name:            name,
		DomainWhitelist: domains,
	}, "issue-key-cli")
	if err != nil {
		log.Fatalf("Failed to issue credential: %v", err)
	}

	fmt.Printf("Issued credential %s (%s)\n", cred.ID, cred.Name)
	fmt.Printf("Key prefix: %s\n", cred.KeyPrefix)
	fmt.Printf("API key (shown once, store it now):\n%s\n", rawKey)
}
