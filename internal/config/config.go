package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverMemory = "memory"
	DriverMySQL  = "mysql"
	DriverRedis  = "redis"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable; values are read once at startup and injected
// into the components that need them.
type Config struct {
	Env      string // application environment (e.g. "dev", "prod")
	Port     string // HTTP port to listen on
	LogLevel string // logrus level name

	Region   string // deployment region, informational
	PoolID   string // identity pool id (COGNITO_ID), used as token issuer
	ClientID string // identity app client id (CLIENT_ID), used as token audience

	TablesTable       string // item store table holding restaurant tables
	ReservationsTable string // item store table holding reservations
	UsersTable        string // item store table holding identity pool users
	WeatherTable      string // item store table holding weather snapshots

	StoreDriver string // memory | mysql | redis

	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	TokenSecret  string // secret used to sign identity tokens
	IDTokenTTLMin int   // identity token time-to-live in minutes
	BcryptCost   int    // bcrypt cost for password hashing

	RabbitMQURL string // AMQP URL for booking events; empty disables publishing

	WeatherLatitude  float64
	WeatherLongitude float64

	UUIDBucketDir string        // directory the uuid generator writes to
	UUIDInterval  time.Duration // how often the worker runs the generator
}

// Load reads an optional .env file and then the environment.  Every
// missing or malformed required variable is reported in the returned error.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from the given lookup function.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	r := &reader{lookup: lookup}
	cfg := Config{
		Env:      r.getenv("APP_ENV", "dev"),
		Port:     r.getenv("APP_PORT", "8080"),
		LogLevel: r.getenv("LOG_LEVEL", "info"),

		Region:   r.getenv("REGION", "local"),
		PoolID:   r.getenv("COGNITO_ID", "booking-pool"),
		ClientID: r.getenv("CLIENT_ID", "booking-client"),

		TablesTable:       r.must("tables_table"),
		ReservationsTable: r.must("reservations_table"),
		UsersTable:        r.getenv("USERS_TABLE", "users"),
		WeatherTable:      r.getenv("WEATHER_TABLE", "weather"),

		StoreDriver: strings.ToLower(r.getenv("STORE_DRIVER", DriverMemory)),

		TokenSecret:   r.must("TOKEN_SECRET"),
		IDTokenTTLMin: r.intOr("ID_TOKEN_TTL_MIN", 60),
		BcryptCost:    r.intOr("BCRYPT_COST", 10),

		RabbitMQURL: r.getenv("RABBITMQ_URL", ""),

		WeatherLatitude:  r.floatOr("WEATHER_LATITUDE", 50.4375),
		WeatherLongitude: r.floatOr("WEATHER_LONGITUDE", 30.5),

		UUIDBucketDir: r.getenv("UUID_BUCKET_DIR", "data/uuid-storage"),
		UUIDInterval:  r.durOr("UUID_INTERVAL", time.Minute),
	}

	switch cfg.StoreDriver {
	case DriverMemory, DriverRedis:
	case DriverMySQL:
		cfg.DBUser = r.must("DB_USER")
		cfg.DBPass, _ = lookup("DB_PASS")
		cfg.DBHost = r.must("DB_HOST")
		cfg.DBPort = r.getenv("DB_PORT", "3306")
		cfg.DBName = r.must("DB_NAME")
	default:
		r.errs = append(r.errs, fmt.Errorf("STORE_DRIVER: unknown driver %q", cfg.StoreDriver))
	}
	return cfg, errors.Join(r.errs...)
}

// reader wraps an environment lookup and collects errors so that every
// problem is reported at once instead of one per restart.
type reader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (r *reader) getenv(key, def string) string {
	if v, ok := r.lookup(key); ok && v != "" {
		return v
	}
	return def
}

// must retrieves the value of a required variable.
func (r *reader) must(key string) string {
	v, ok := r.lookup(key)
	if !ok || v == "" {
		r.errs = append(r.errs, fmt.Errorf("missing required env var: %s", key))
	}
	return v
}

func (r *reader) intOr(key string, def int) int {
	v := r.getenv(key, "")
	if v == "" {
		return def
	}
	n, err := atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid int for %s: %q", key, v))
		return def
	}
	return n
}

func (r *reader) floatOr(key string, def float64) float64 {
	v := r.getenv(key, "")
	if v == "" {
		return def
	}
	f, err := parseFloat(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid number for %s: %q", key, v))
		return def
	}
	return f
}

func (r *reader) durOr(key string, def time.Duration) time.Duration {
	v := r.getenv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		r.errs = append(r.errs, fmt.Errorf("invalid duration for %s: %q", key, v))
		return def
	}
	return d
}
