package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, or status")
		target  = flag.String("db", "app", "Target store: app or identity")
		dir     = flag.String("dir", "", "Directory containing migration files (defaults per target)")
	)
	flag.Parse()

	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	var prefix string
	switch *target {
	case "app":
		prefix = "PG_"
	case "identity":
		prefix = "IDENTITY_PG_"
	default:
		log.Fatal().Str("db", *target).Msg("unknown target store. Use: app or identity")
	}

	if *dir == "" {
		*dir = filepath.Join("db", "migrations", *target)
	}

	pgHost := getEnv(prefix+"HOST", "localhost")
	pgPort := getEnv(prefix+"PORT", "5432")
	pgUser := getEnv(prefix+"USER", "")
	pgPassword := getEnv(prefix+"PASSWORD", "")
	pgDatabase := getEnv(prefix+"DATABASE", "")
	pgSSLMode := getEnv(prefix+"SSL_MODE", "disable")

	if pgUser == "" {
		log.Fatal().Msg(prefix + "USER environment variable is required")
	}
	if pgPassword == "" {
		log.Fatal().Msg(prefix + "PASSWORD environment variable is required")
	}
	if pgDatabase == "" {
		log.Fatal().Msg(prefix + "DATABASE environment variable is required")
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		pgHost, pgPort, pgUser, pgPassword, pgDatabase, pgSSLMode)

	migrationDir, err := filepath.Abs(*dir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", *dir).Msg("failed to resolve migration directory")
	}

	if _, err := os.Stat(migrationDir); os.IsNotExist(err) {
		log.Fatal().Str("dir", migrationDir).Msg("migration directory does not exist")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatal().Err(err).Str("host", pgHost).Str("port", pgPort).Msg("failed to open database connection")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}

	log.Info().
		Str("host", pgHost).
		Str("database", pgDatabase).
		Str("target", *target).
		Str("migration_dir", migrationDir).
		Msg("connected to database")

	goose.SetBaseFS(nil)
	goose.SetTableName("goose_db_version")

	switch *command {
	case "up":
		if err := goose.Up(db, migrationDir); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations up")
		}
		log.Info().Msg("migrations applied successfully")

	case "down":
		if err := goose.Down(db, migrationDir); err != nil {
			log.Fatal().Err(err).Msg("failed to roll back migrations")
		}
		log.Info().Msg("migrations rolled back successfully")

	case "status":
		if err := goose.Status(db, migrationDir); err != nil {
			log.Fatal().Err(err).Msg("failed to get migration status")
		}

	default:
		log.Fatal().Str("command", *command).Msg("unknown command. Use: up, down, or status")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
