package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverMemory   = "memory"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
		RequestTimeout string   `yaml:"request_timeout"`
		// TrustProxy takes the client address from X-Forwarded-For and
		// friends. Only enable it behind a proxy that overwrites them.
		TrustProxy     bool     `yaml:"trust_proxy"`
	} `yaml:"server"`
	Storage struct {
		// Driver is one of memory, mongo or postgres.
		Driver string `yaml:"driver"`
		// SeedPath optionally points at a YAML file of quizzes loaded into
		// an empty memory store at startup.
		SeedPath string `yaml:"seed_path"`
	} `yaml:"storage"`
	Mongo struct {
		URI      string `yaml:"uri"`
		Database string `yaml:"database"`
	} `yaml:"mongo"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Quiz struct {
		CacheTTL string `yaml:"cache_ttl"`
	} `yaml:"quiz"`
	Auth struct {
		JWTSecret     string `yaml:"jwt_secret"`
		TokenTTL      string `yaml:"token_ttl"`
		ResetTokenTTL string `yaml:"reset_token_ttl"`
	} `yaml:"auth"`
	RateLimit struct {
		Window  string `yaml:"window"`
		AuthMax int    `yaml:"auth_max"`
		APIMax  int    `yaml:"api_max"`
	} `yaml:"rate_limit"`
	Events struct {
		AMQPURL  string `yaml:"amqp_url"`
		Exchange string `yaml:"exchange"`
	} `yaml:"events"`
}

// Default returns the configuration used when nothing else is provided.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "5000"
	cfg.Server.AllowedOrigins = []string{"http://localhost:5173"}
	cfg.Server.RequestTimeout = "60s"
	cfg.Storage.Driver = DriverMemory
	cfg.Mongo.Database = "quiz-app"
	cfg.Quiz.CacheTTL = "10m"
	cfg.Auth.TokenTTL = "720h"
	cfg.Auth.ResetTokenTTL = "1h"
	cfg.RateLimit.Window = "15m"
	cfg.RateLimit.AuthMax = 5
	cfg.RateLimit.APIMax = 100
	cfg.Events.Exchange = "quiz.events"
	return cfg
}

// Load reads .env, then the YAML file at path on top of the defaults, then
// environment overrides. A missing YAML file is not an error.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("failed to read .env: %v", err)
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Printf("config %s not found, using defaults and environment", path)
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Port, "PORT")
	if origins, ok := os.LookupEnv("ALLOWED_ORIGINS"); ok {
		cfg.Server.AllowedOrigins = splitList(origins)
	}
	setBool(&cfg.Server.TrustProxy, "TRUST_PROXY")
	setString(&cfg.Storage.Driver, "STORAGE_DRIVER")
	setString(&cfg.Mongo.URI, "MONGODB_URI")
	setString(&cfg.Mongo.Database, "MONGODB_DATABASE")
	setString(&cfg.Postgres.URL, "DATABASE_URL")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "REDIS_DB")
	setString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setString(&cfg.Events.AMQPURL, "AMQP_URL")
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverMongo:
		if c.Mongo.URI == "" {
			return errors.New("mongo driver selected but mongo.uri (MONGODB_URI) is empty")
		}
	case DriverPostgres:
		if c.Postgres.URL == "" {
			return errors.New("postgres driver selected but postgres.url (DATABASE_URL) is empty")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret (JWT_SECRET) must be set")
	}
	return nil
}

func (c Config) TokenTTL() time.Duration {
	return TTLDuration(c.Auth.TokenTTL, 30*24*time.Hour)
}

func (c Config) ResetTokenTTL() time.Duration {
	return TTLDuration(c.Auth.ResetTokenTTL, time.Hour)
}

func (c Config) QuizCacheTTL() time.Duration {
	return TTLDuration(c.Quiz.CacheTTL, 10*time.Minute)
}

func (c Config) RateLimitWindow() time.Duration {
	return TTLDuration(c.RateLimit.Window, 15*time.Minute)
}

func (c Config) RequestTimeout() time.Duration {
	return TTLDuration(c.Server.RequestTimeout, 60*time.Second)
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

func setString(dst *string, key string) {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		*dst = value
	}
}

func setInt(dst *int, key string) {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			*dst = b
		}
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
