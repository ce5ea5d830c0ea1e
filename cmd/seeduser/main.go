// Command seeduser creates or updates an admin user.
//
//	SEED_EMAIL=owner@shop.local SEED_PASSWORD=secret123 go run ./cmd/seeduser
package main

import (
	"context"
	"os"
	"strings"

	"shopinventory/internal/config"
	"shopinventory/internal/infra"
	"shopinventory/internal/model"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	email := strings.ToLower(envOr("SEED_EMAIL", "admin@shop.local"))
	password := envOr("SEED_PASSWORD", "admin1234")
	name := envOr("SEED_NAME", "Administrator")

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	result := db.WithContext(context.Background()).Exec(`
		INSERT INTO users (email, name, password_hash, role, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, true, now(), now())
		ON CONFLICT (email) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
		    name = EXCLUDED.name,
		    role = EXCLUDED.role,
		    active = true,
		    updated_at = now()
	`, email, name, string(hash), model.RoleAdmin)
	if result.Error != nil {
		log.Fatal().Err(result.Error).Msg("upsert user")
	}
	log.Info().Str("email", email).Msg("admin user created/updated")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
