package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort        string
	LogLevel        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	RemoteBaseURL      string
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration

	// StorageBackend is one of memory, sqlite, redis, mongo.
	StorageBackend string
	SQLitePath     string
	RedisAddr      string
	RedisPassword  string
	Profile        string
	MongoURI       string
	MongoDBName    string

	StockOptimisticOnError bool

	AdminBypassEnabled bool
	AdminEmail         string
	AdminPasswordHash  string

	KafkaBrokers  []string
	KafkaTopic    string
	ReceiptPollIn time.Duration
}

// Load reads .env when present, then the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf(".env not loaded: %v", err)
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8090"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		RequestTimeout:  getDuration("REQUEST_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		RemoteBaseURL:      getEnv("REMOTE_BASE_URL", "http://localhost:5000"),
		BreakerMaxFailures: uint32(getInt("BREAKER_MAX_FAILURES", 5)),
		BreakerOpenTimeout: getDuration("BREAKER_OPEN_TIMEOUT", 30*time.Second),

		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", "sqlite")),
		SQLitePath:     getEnv("SQLITE_PATH", "storefront.db"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		Profile:        getEnv("STOREFRONT_PROFILE", "default"),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:    getEnv("MONGO_DB_NAME", "storefront"),

		StockOptimisticOnError: getBool("STOCK_OPTIMISTIC_ON_ERROR", false),

		AdminBypassEnabled: getBool("ADMIN_BYPASS_ENABLED", true),
		AdminEmail:         getEnv("ADMIN_EMAIL", "admin@bhagavathi.com"),
		AdminPasswordHash:  getEnv("ADMIN_PASSWORD_HASH", ""),

		KafkaBrokers:  getList("KAFKA_BROKERS"),
		KafkaTopic:    getEnv("KAFKA_TOPIC", "storefront-orders"),
		ReceiptPollIn: getDuration("RECEIPT_POLL_INTERVAL", 2*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getDuration accepts Go durations ("5s") or a bare number of seconds.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(value); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	log.Printf("invalid %s=%q, using %s", key, value, defaultValue)
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(getEnv(key, "")); err == nil && n > 0 {
		return n
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return b
	}
	return defaultValue
}

func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
