package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DatabaseURL string

	// Kafka
	KafkaBrokers      string
	CartEventsTopic   string
	CatalogEventTopic string

	// EventPublishTimeout bounds a best-effort publish from a request
	EventPublishTimeout time.Duration

	// API Configuration
	APIPort     string
	APIHost     string
	CORSOrigins []string

	// Upstream catalog (SCAYLE storefront API)
	UpstreamBaseURL   string
	CDNBaseURL        string
	UpstreamTimeout   time.Duration
	UpstreamPageSize  int
	ContactsFlatPrice float64

	// Environment
	Env      string
	LogLevel string
}

func Load() (*Config, error) {
	// Load .env file
	godotenv.Load()

	return &Config{
		DatabaseURL:         getEnv("DATABASE_URL", "sqlite://storefront.db"),
		KafkaBrokers:        getEnv("KAFKA_BROKERS", ""),
		CartEventsTopic:     getEnv("KAFKA_CART_TOPIC", "cart-events"),
		CatalogEventTopic:   getEnv("KAFKA_CATALOG_TOPIC", "catalog-events"),
		EventPublishTimeout: time.Duration(getEnvAsInt("KAFKA_PUBLISH_TIMEOUT_MS", 2000)) * time.Millisecond,
		APIPort:             getEnv("API_PORT", "8080"),
		APIHost:             getEnv("API_HOST", "0.0.0.0"),
		CORSOrigins:         getEnvAsList("CORS_ORIGINS", []string{"*"}),
		UpstreamBaseURL:     getEnv("UPSTREAM_BASE_URL", "https://fim-test.storefront.api.scayle.cloud/v1"),
		CDNBaseURL:          getEnv("CDN_BASE_URL", "https://fim-test.cdn.scayle.cloud"),
		UpstreamTimeout:     time.Duration(getEnvAsInt("UPSTREAM_TIMEOUT_SECONDS", 30)) * time.Second,
		UpstreamPageSize:    getEnvAsInt("UPSTREAM_PAGE_SIZE", 50),
		ContactsFlatPrice:   getEnvAsFloat("CONTACTS_FLAT_PRICE", 29.99),
		Env:                 getEnv("ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
	}, nil
}

// KafkaEnabled reports whether a broker list was configured.
func (c *Config) KafkaEnabled() bool {
	return strings.TrimSpace(c.KafkaBrokers) != ""
}

// Brokers splits KAFKA_BROKERS on commas.
func (c *Config) Brokers() []string {
	return splitList(c.KafkaBrokers)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil && floatValue >= 0 {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	if list := splitList(os.Getenv(key)); len(list) > 0 {
		return list
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
