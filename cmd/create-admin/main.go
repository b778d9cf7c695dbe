// Bootstrap command that seeds the first admin account. Intended to be run
// once against a fresh database; it refuses to overwrite an existing user.
package main

import (
	"context"
	"flag"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"golang.org/x/crypto/bcrypt"

	"hrm.service/internal/config"
	"hrm.service/internal/core/model"
	"hrm.service/internal/ports/repository"
	"hrm.service/pkg/database"
)

func main() {
	email := flag.String("email", "admin@hrm.local", "admin account email")
	password := flag.String("password", "", "admin account password (required)")
	firstName := flag.String("first-name", "System", "admin first name")
	lastName := flag.String("last-name", "Administrator", "admin last name")
	flag.Parse()

	if *password == "" {
		log.Fatal("password flag is required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Could not load configuration: %v", err)
	}

	db, err := database.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	users := repository.NewUserRepository(db)

	existing, err := users.FindByEmail(ctx, *email)
	if err != nil {
		log.Fatalf("failed to query users: %v", err)
	}
	if existing != nil {
		log.Printf("Admin user already exists with email %s", *email)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	admin := &model.User{
		FirstName:    *firstName,
		LastName:     *lastName,
		Email:        *email,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		Department:   "Administration",
		Position:     "Administrator",
		IsActive:     true,
	}

	id, err := users.Create(ctx, admin)
	if err != nil {
		log.Fatalf("failed to insert admin: %v", err)
	}

	log.Printf("Admin user created successfully (id=%d, email=%s)", id, *email)
}
