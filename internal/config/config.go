package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"movie-trivia"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	LogLevel                string        `env:"LOG_LEVEL" envDefault:"info"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Postgres  Postgres
	Redis     Redis
	TMDB      TMDB
	Challenge Challenge
	RateLimit RateLimit
	CORS      CORS
}

// Postgres captures connection info for the SQL database.
type Postgres struct {
	Host     string `env:"PG_HOST,notEmpty"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER,notEmpty"`
	Password string `env:"PG_PASSWORD,notEmpty"`
	Database string `env:"PG_DATABASE,notEmpty"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
	MaxConns int    `env:"PG_MAX_CONNS" envDefault:"10"`
}

// DSN renders the keyword/value connection string understood by pgx.
func (p Postgres) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=%d",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode, p.MaxConns)
}

// Redis holds cache and lock configuration.
type Redis struct {
	Addr     string `env:"REDIS_ADDR,notEmpty"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// TMDB configures the movie fact provider.
type TMDB struct {
	APIKey            string        `env:"TMDB_API_KEY,notEmpty"`
	BaseURL           string        `env:"TMDB_BASE_URL" envDefault:"https://api.themoviedb.org/3"`
	ImageBaseURL      string        `env:"TMDB_IMAGE_BASE_URL" envDefault:"https://image.tmdb.org/t/p/w500"`
	Language          string        `env:"TMDB_LANGUAGE" envDefault:"en-US"`
	Timeout           time.Duration `env:"TMDB_TIMEOUT" envDefault:"30s"`
	PopularPages      int           `env:"TMDB_POPULAR_PAGES" envDefault:"10"`
	RequestsPerSecond float64       `env:"TMDB_REQUESTS_PER_SECOND" envDefault:"20"`
	Burst             int           `env:"TMDB_BURST" envDefault:"20"`
	BreakerTimeout    time.Duration `env:"TMDB_BREAKER_TIMEOUT" envDefault:"30s"`
	FactsCacheTTL     time.Duration `env:"TMDB_FACTS_CACHE_TTL" envDefault:"6h"`
}

// Challenge governs how canonical challenges are keyed and created.
type Challenge struct {
	Granularity     string        `env:"CHALLENGE_GRANULARITY" envDefault:"daily"`
	Timezone        string        `env:"CHALLENGE_TIMEZONE" envDefault:"UTC"`
	LockTTL         time.Duration `env:"CHALLENGE_LOCK_TTL" envDefault:"30s"`
	LockWait        time.Duration `env:"CHALLENGE_LOCK_WAIT" envDefault:"5s"`
	PrewarmInterval time.Duration `env:"CHALLENGE_PREWARM_INTERVAL" envDefault:"15m"`
	PrewarmTimeout  time.Duration `env:"CHALLENGE_PREWARM_TIMEOUT" envDefault:"45s"`
}

// Location resolves Timezone.
func (c Challenge) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load challenge timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// RateLimit bounds per-client request rates on the public API.
type RateLimit struct {
	Requests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"120"`
	Window   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
}

// CORS holds Cross-Origin Resource Sharing configuration.
type CORS struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS" envSeparator:"," envDefault:"GET,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS" envSeparator:"," envDefault:"Content-Type,Accept-Language"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"`
	MaxAge           int      `env:"CORS_MAX_AGE" envDefault:"3600"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if _, err := cfg.Challenge.Location(); err != nil {
		return nil, err
	}
	return cfg, nil
}
