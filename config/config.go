package config

import (
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Connect loads the environment and opens the database connection.
func Connect() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	dsn := os.Getenv("DB_DSN")
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
}

// Getenv returns the value of key or fallback when unset.
func Getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ServiceUserID is the identity attributed to anonymous and partner
// submissions when no authenticated caller is present. Configured via
// SERVICE_USER_ID so real auth can replace it without touching the
// submission pipeline.
func ServiceUserID() uuid.UUID {
	raw := Getenv("SERVICE_USER_ID", "d8c36489-f008-4022-9b51-df6469dc81eb")
	id, err := uuid.Parse(raw)
	if err != nil {
		log.Fatalf("Invalid SERVICE_USER_ID %q: %v", raw, err)
	}
	return id
}
