package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/yklymenko/contacthub/config"
	"github.com/yklymenko/contacthub/internal/domain/entity"
	"github.com/yklymenko/contacthub/pkg/gravatar"
	"github.com/yklymenko/contacthub/pkg/hasher"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Ensure base roles exist
	var userRoleID, adminRoleID string
	if err := db.QueryRow(`
		INSERT INTO roles (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, string(entity.RoleUser)).Scan(&userRoleID); err != nil {
		log.Fatalf("failed to upsert user role: %v", err)
	}
	if err := db.QueryRow(`
		INSERT INTO roles (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, string(entity.RoleAdmin)).Scan(&adminRoleID); err != nil {
		log.Fatalf("failed to upsert admin role: %v", err)
	}
	fmt.Printf("roles ensured: user=%s admin=%s\n", userRoleID, adminRoleID)

	email := "demo@contacthub.local"
	username := "demo"
	password := "password123"

	h := hasher.New(cfg.BcryptCost)
	digest, err := h.Hash(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO accounts (username, email, hashed_password, role_id, avatar_url, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		ON CONFLICT (email) DO UPDATE SET username = EXCLUDED.username
		RETURNING id
	`, username, email, digest, userRoleID, gravatar.URL(email)).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed account: %v", err)
	}
	fmt.Printf("seeded account: id=%s username=%s email=%s password=%s\n", id, username, email, password)
}
