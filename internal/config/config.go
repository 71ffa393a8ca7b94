package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
)

type Config struct {
	App     AppConfig
	Server  ServerConfig
	Store   StoreConfig
	DB      PostgresConfig
	Kafka   KafkaConfig
	Pricing PricingConfig
}

type AppConfig struct {
	Name string
	Env  string
}

type ServerConfig struct {
	Host string
	Port int
}

type StoreConfig struct {
	// Driver selects the persistence backend: "memory" or "postgres".
	Driver string
	// Seed loads the demo catalog on startup (memory driver only).
	Seed bool
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
}

type KafkaConfig struct {
	Enabled    bool
	Brokers    []string
	OrderTopic string
}

// PricingConfig carries the pricing-engine constants so alternate policies
// can be configured without a rebuild.
type PricingConfig struct {
	TaxRate          decimal.Decimal
	FreeShippingOver decimal.Decimal
	FlatShipping     decimal.Decimal
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	taxRate, err := getEnvAsDecimal("PRICING_TAX_RATE", "0.16")
	if err != nil {
		return nil, err
	}
	freeShippingOver, err := getEnvAsDecimal("PRICING_FREE_SHIPPING_OVER", "100")
	if err != nil {
		return nil, err
	}
	flatShipping, err := getEnvAsDecimal("PRICING_FLAT_SHIPPING", "9.99")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name: getEnv("APP_NAME", "storefront"),
			Env:  getEnv("APP_ENV", "local"),
		},
		Server: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnvAsInt("HTTP_PORT", 8080),
		},
		Store: StoreConfig{
			Driver: getEnv("STORE_DRIVER", StoreDriverMemory),
			Seed:   getEnvAsBool("STORE_SEED", true),
		},
		DB: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			DBName:   getEnv("POSTGRES_DB", "storefront"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
		},
		Kafka: KafkaConfig{
			Enabled:    getEnvAsBool("KAFKA_ENABLED", false),
			Brokers:    splitAndTrim(getEnv("KAFKA_BOOTSTRAP_SERVERS", "localhost:9092")),
			OrderTopic: getEnv("KAFKA_ORDER_TOPIC", "order-events"),
		},
		Pricing: PricingConfig{
			TaxRate:          taxRate,
			FreeShippingOver: freeShippingOver,
			FlatShipping:     flatShipping,
		},
	}

	return cfg, cfg.validate()
}

func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User,
		p.Password,
		p.Host,
		p.Port,
		p.DBName,
		p.SSLMode,
	)
}

/* ================= helpers ================= */

func (c *Config) validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("HTTP_PORT is invalid")
	}

	switch c.Store.Driver {
	case StoreDriverMemory:
	case StoreDriverPostgres:
		if c.DB.Host == "" || c.DB.User == "" || c.DB.DBName == "" {
			return fmt.Errorf("database config is incomplete")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q", StoreDriverMemory, StoreDriverPostgres)
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka brokers is empty")
	}

	if !c.Pricing.TaxRate.IsPositive() && !c.Pricing.TaxRate.IsZero() {
		return fmt.Errorf("PRICING_TAX_RATE cannot be negative")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsDecimal(key, defaultVal string) (decimal.Decimal, error) {
	raw := getEnv(key, defaultVal)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s is not a valid decimal: %w", key, err)
	}
	return d, nil
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if val := strings.TrimSpace(p); val != "" {
			out = append(out, val)
		}
	}
	return out
}
