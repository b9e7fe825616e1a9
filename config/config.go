package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

type Config struct {
	ServiceName string
	LoggerLevel string

	HTTPPort int

	// StorageDriver is "postgres" or "memory".
	StorageDriver string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	MigrationsPath   string

	RedisHost        string
	RedisPort        string
	RedisPassword    string
	GeocodeCacheTTL  time.Duration
	GeocodeTimeout   time.Duration
	GeocodeCountry   string
	ORSAPIKey        string
	ORSBaseURL       string
	TelegramBotToken string

	Timezone string
}

func Load() Config {
	_ = godotenv.Load(".env")

	cfg := Config{}

	cfg.ServiceName = cast.ToString(getOrReturnDefault("SERVICE_NAME", "tripsettle"))
	cfg.LoggerLevel = cast.ToString(getOrReturnDefault("LOGGER_LEVEL", "debug"))
	cfg.HTTPPort = cast.ToInt(getOrReturnDefault("HTTP_PORT", 8080))
	cfg.StorageDriver = cast.ToString(getOrReturnDefault("STORAGE_DRIVER", "postgres"))

	cfg.PostgresHost = cast.ToString(getOrReturnDefault("POSTGRES_HOST", "localhost"))
	cfg.PostgresPort = cast.ToString(getOrReturnDefault("POSTGRES_PORT", "5432"))
	cfg.PostgresUser = cast.ToString(getOrReturnDefault("POSTGRES_USER", "postgres"))
	cfg.PostgresPassword = cast.ToString(getOrReturnDefault("POSTGRES_PASSWORD", "1234"))
	cfg.PostgresDB = cast.ToString(getOrReturnDefault("POSTGRES_DB", "tripsettle"))
	cfg.MigrationsPath = cast.ToString(getOrReturnDefault("MIGRATIONS_PATH", "migrations/postgres"))

	cfg.RedisHost = cast.ToString(getOrReturnDefault("REDIS_HOST", "localhost"))
	cfg.RedisPort = cast.ToString(getOrReturnDefault("REDIS_PORT", "6379"))
	cfg.RedisPassword = cast.ToString(getOrReturnDefault("REDIS_PASSWORD", ""))
	cfg.GeocodeCacheTTL = cast.ToDuration(getOrReturnDefault("GEOCODE_CACHE_TTL", "720h"))
	cfg.GeocodeTimeout = cast.ToDuration(getOrReturnDefault("GEOCODE_TIMEOUT", "10s"))
	cfg.GeocodeCountry = cast.ToString(getOrReturnDefault("GEOCODE_COUNTRY", ""))
	cfg.ORSAPIKey = cast.ToString(getOrReturnDefault("ORS_API_KEY", ""))
	cfg.ORSBaseURL = cast.ToString(getOrReturnDefault("ORS_BASE_URL", "https://api.openrouteservice.org"))

	cfg.TelegramBotToken = cast.ToString(getOrReturnDefault("TG_BOT_TOKEN", ""))

	cfg.Timezone = cast.ToString(getOrReturnDefault("TIMEZONE", "UTC"))

	return cfg
}

// PostgresURL is shared by the pool and the migrator.
func (c Config) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.PostgresUser,
		c.PostgresPassword,
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresDB,
	)
}

func (c Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// Location falls back to UTC when TIMEZONE is not a known zone.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}
