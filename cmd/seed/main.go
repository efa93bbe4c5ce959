// Command seed creates an admin account. Admins cannot sign up through the API.
package main

import (
	"errors"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/minyan/internal/db"
	"github.com/Nixie-Tech-LLC/minyan/internal/http/middleware"
)

func main() {
	_ = godotenv.Load()

	email := flag.String("email", os.Getenv("ADMIN_EMAIL"), "admin email (ADMIN_EMAIL)")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password (ADMIN_PASSWORD)")
	name := flag.String("name", os.Getenv("ADMIN_NAME"), "display name (ADMIN_NAME)")
	migrate := flag.Bool("migrate", true, "apply migrations before seeding")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal().Msg("ADMIN_EMAIL and ADMIN_PASSWORD are required")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}
	if err := db.Init(dbURL); err != nil {
		log.Fatal().Err(err).Msg("db init")
	}
	if *migrate {
		path := os.Getenv("MIGRATIONS_PATH")
		if path == "" {
			path = "./migrations"
		}
		if err := db.RunMigrations(path); err != nil {
			log.Fatal().Err(err).Msg("db migrate")
		}
	}

	hash, err := middleware.HashPassword(*password)
	if err != nil {
		log.Fatal().Err(err).Msg("hash password")
	}

	var displayName *string
	if *name != "" {
		displayName = name
	}

	id, err := db.NewStore(db.DB).CreateUser(*email, hash, displayName)
	if errors.Is(err, db.ErrDuplicate) {
		log.Warn().Str("email", *email).Msg("admin already exists, nothing to do")
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("create admin")
	}
	log.Info().Int("user_id", id).Str("email", *email).Msg("admin created")
}
