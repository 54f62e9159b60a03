package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"nearby-route-service/internal/domain"
	"nearby-route-service/internal/platform/db"
	"nearby-route-service/internal/services"
)

// Vendor location used when ORIGIN_LAT/ORIGIN_LON are unset or invalid.
var FallbackOrigin = services.DefaultOrigin

type Config struct {
	Port         string
	DBDriver     string
	DBPath       string
	DatabaseURL  string
	SeedPath     string
	RedisAddr    string
	PositionTTL  time.Duration
	Origin       domain.Coordinates
	TickInterval time.Duration
}

// DSN returns the connection string for the configured driver.
func (c Config) DSN() string {
	if c.DBDriver == db.DriverPostgres {
		return c.DatabaseURL
	}
	return c.DBPath
}

// Get returns the environment value for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := Get(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		log.Printf("config: invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

func getFloat(key string) (float64, bool) {
	v := Get(key, "")
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("config: invalid %s=%q", key, v)
		return 0, false
	}
	return f, true
}

func loadOrigin() domain.Coordinates {
	lat, okLat := getFloat("ORIGIN_LAT")
	lon, okLon := getFloat("ORIGIN_LON")
	if !okLat || !okLon {
		return FallbackOrigin
	}
	o := domain.Coordinates{Lat: lat, Lon: lon}
	if !o.Valid() {
		log.Printf("config: origin (%v, %v) out of range, using fallback", lat, lon)
		return FallbackOrigin
	}
	return o
}

// Load reads the service configuration from the environment.
func Load() Config {
	return Config{
		Port:         Get("PORT", "8080"),
		DBDriver:     strings.ToLower(Get("DB_DRIVER", db.DriverSQLite)),
		DBPath:       Get("DB_PATH", "data/app.db"),
		DatabaseURL:  Get("DATABASE_URL", ""),
		SeedPath:     Get("SEED_PATH", "data/seeds/consumers.json"),
		RedisAddr:    Get("REDIS_ADDR", ""),
		PositionTTL:  getDuration("POSITION_TTL", 10*time.Minute),
		Origin:       loadOrigin(),
		TickInterval: getDuration("TICK_INTERVAL", time.Second),
	}
}
