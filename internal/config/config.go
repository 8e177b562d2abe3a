package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig aggregates runtime configuration, injected through environment
// variables so nothing is hard-coded.
type AppConfig struct {
	HTTPAddr string
	DBPath   string

	RedisAddr string
	RedisDB   int

	// Kafka cluster (comma-separated), topic and consumer group.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	// Redis Stream outbox (API appends post-commit, Relay forwards to Kafka).
	OrderEventStream   string
	OrderEventGroup    string
	OrderEventConsumer string

	// Checkout throttle and stock display cache policy.
	CheckoutRateLimit  int
	CheckoutRateWindow time.Duration
	StockCacheTTL      time.Duration

	// Idle carts are swept once a session goes quiet for this long.
	CartTTL time.Duration

	// Confirmation replay window for client idempotency keys.
	IdempotencyTTL time.Duration

	// Simple admin token guarding the stock/school admin endpoints.
	AdminToken string
}

// Load reads and validates configuration, falling back to defaults.
func Load() (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		DBPath:             getEnv("DB_PATH", "uniform_shop.db"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:            0,
		KafkaBrokers:       splitCSV(getEnv("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:         getEnv("KAFKA_TOPIC", "uniform-shop-orders"),
		KafkaGroupID:       getEnv("KAFKA_GROUP_ID", "uniform-shop-order-consumer"),
		OrderEventStream:   getEnv("ORDER_EVENT_STREAM", "uniform_shop:order_events"),
		OrderEventGroup:    getEnv("ORDER_EVENT_GROUP", "uniform-shop-relay-group"),
		OrderEventConsumer: getEnv("ORDER_EVENT_CONSUMER", "uniform-shop-relay-1"),
		CheckoutRateLimit:  100,
		CheckoutRateWindow: time.Second,
		StockCacheTTL:      time.Hour,
		CartTTL:            2 * time.Hour,
		IdempotencyTTL:     24 * time.Hour,
		AdminToken:         getEnv("ADMIN_TOKEN", "dev-admin-token"),
	}

	redisDB, err := getEnvInt("REDIS_DB", cfg.RedisDB)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cfg.RedisDB = redisDB

	rateLimit, err := getEnvInt("CHECKOUT_RATE_LIMIT", cfg.CheckoutRateLimit)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid CHECKOUT_RATE_LIMIT: %w", err)
	}
	if rateLimit <= 0 {
		return AppConfig{}, fmt.Errorf("CHECKOUT_RATE_LIMIT must be > 0")
	}
	cfg.CheckoutRateLimit = rateLimit

	rateWindowSec, err := getEnvInt("CHECKOUT_RATE_WINDOW_SEC", int(cfg.CheckoutRateWindow.Seconds()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid CHECKOUT_RATE_WINDOW_SEC: %w", err)
	}
	if rateWindowSec <= 0 {
		return AppConfig{}, fmt.Errorf("CHECKOUT_RATE_WINDOW_SEC must be > 0")
	}
	cfg.CheckoutRateWindow = time.Duration(rateWindowSec) * time.Second

	stockTTLMin, err := getEnvInt("STOCK_CACHE_TTL_MIN", int(cfg.StockCacheTTL.Minutes()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid STOCK_CACHE_TTL_MIN: %w", err)
	}
	if stockTTLMin <= 0 {
		return AppConfig{}, fmt.Errorf("STOCK_CACHE_TTL_MIN must be > 0")
	}
	cfg.StockCacheTTL = time.Duration(stockTTLMin) * time.Minute

	cartTTLMin, err := getEnvInt("CART_TTL_MIN", int(cfg.CartTTL.Minutes()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid CART_TTL_MIN: %w", err)
	}
	if cartTTLMin <= 0 {
		return AppConfig{}, fmt.Errorf("CART_TTL_MIN must be > 0")
	}
	cfg.CartTTL = time.Duration(cartTTLMin) * time.Minute

	idemTTLHour, err := getEnvInt("IDEMPOTENCY_TTL_HOUR", int(cfg.IdempotencyTTL.Hours()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid IDEMPOTENCY_TTL_HOUR: %w", err)
	}
	if idemTTLHour <= 0 {
		return AppConfig{}, fmt.Errorf("IDEMPOTENCY_TTL_HOUR must be > 0")
	}
	cfg.IdempotencyTTL = time.Duration(idemTTLHour) * time.Hour

	if len(cfg.KafkaBrokers) == 0 {
		return AppConfig{}, fmt.Errorf("KAFKA_BROKERS must not be empty")
	}
	if cfg.KafkaTopic == "" {
		return AppConfig{}, fmt.Errorf("KAFKA_TOPIC must not be empty")
	}
	if cfg.KafkaGroupID == "" {
		return AppConfig{}, fmt.Errorf("KAFKA_GROUP_ID must not be empty")
	}
	if cfg.OrderEventStream == "" {
		return AppConfig{}, fmt.Errorf("ORDER_EVENT_STREAM must not be empty")
	}
	if cfg.OrderEventGroup == "" {
		return AppConfig{}, fmt.Errorf("ORDER_EVENT_GROUP must not be empty")
	}
	if cfg.OrderEventConsumer == "" {
		return AppConfig{}, fmt.Errorf("ORDER_EVENT_CONSUMER must not be empty")
	}

	return cfg, nil
}

// getEnv reads a string variable, falling back when empty.
func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

// getEnvInt reads an integer variable, falling back when empty.
func getEnvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

// splitCSV parses a comma-separated string into a slice.
func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
