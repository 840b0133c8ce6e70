package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Printer  PrinterConfig
	Venue    VenueConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

type RedisConfig struct {
	Addr string
	// CatalogTTL bounds how long the resolved Anticipada ticket type may be
	// served from cache.
	CatalogTTL time.Duration
}

type KafkaConfig struct {
	Brokers []string
	Enabled bool
}

type PrinterConfig struct {
	// Addr is the ESC/POS printer's raw socket, host:9100 style.
	Addr    string
	Timeout time.Duration
}

// VenueConfig pins the venue-local clock and the business defaults of the
// quota and event provisioning workflows. The timezone is injected here so
// no date math reads ambient process state.
type VenueConfig struct {
	Timezone        string
	DefaultQuota    int
	SaturdayCount   int
	DefaultCapacity int
	// ReleaseQuotaOnDelete restores a pre-sale's quantity to the promoter's
	// available quota when the pre-sale is deleted. The original system never
	// releases quota; the flag exists so the policy is a named choice.
	ReleaseQuotaOnDelete bool
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8080"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:          getEnv("POSTGRES_DSN", ""),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
		},
		Redis: RedisConfig{
			Addr:       getEnv("REDIS_ADDR", "localhost:6379"),
			CatalogTTL: time.Duration(getEnvInt("CATALOG_CACHE_TTL_SECONDS", 300)) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_ADDR", "localhost:9092")},
			Enabled: getEnvBool("KAFKA_ENABLED", true),
		},
		Printer: PrinterConfig{
			Addr:    getEnv("PRINTER_ADDR", "localhost:9100"),
			Timeout: time.Duration(getEnvInt("PRINTER_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Venue: VenueConfig{
			Timezone:             getEnv("VENUE_TZ", "America/Argentina/Cordoba"),
			DefaultQuota:         getEnvInt("DEFAULT_QUOTA", 50),
			SaturdayCount:        getEnvInt("SATURDAY_COUNT", 5),
			DefaultCapacity:      getEnvInt("EVENT_CAPACITY", 1000),
			ReleaseQuotaOnDelete: getEnvBool("RELEASE_QUOTA_ON_DELETE", false),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
