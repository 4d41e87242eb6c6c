package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"dsamate"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	// The question catalog and solved-status rows live in the application
	// store; accounts and roles live in a separate identity store.
	Postgres Postgres `envPrefix:"PG_"`
	Identity Postgres `envPrefix:"IDENTITY_PG_"`

	Security Security
	CORS     CORS
}

// Postgres captures connection info for one SQL database.
type Postgres struct {
	Host     string `env:"HOST,notEmpty"`
	Port     int    `env:"PORT" envDefault:"5432"`
	User     string `env:"USER,notEmpty"`
	Password string `env:"PASSWORD,notEmpty"`
	Database string `env:"DATABASE,notEmpty"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"`
}

// DSN renders a keyword/value connection string for pgx.
func (p Postgres) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=10",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

// Security stores the token signing secret and claims configuration.
// JWT_SECRET should be at least 32 bytes; issuance refuses to start without it.
type Security struct {
	JWTSecret   string `env:"JWT_SECRET,notEmpty"`
	JWTIssuer   string `env:"JWT_ISSUER" envDefault:"dsamate"`
	JWTAudience string `env:"JWT_AUDIENCE" envDefault:"dsamate-clients"`
}

// CORS holds Cross-Origin Resource Sharing configuration.
type CORS struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS" envSeparator:"," envDefault:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS" envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE" envDefault:"3600"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
