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
	Server   ServerConfig
	MongoDB  MongoDBConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Consul   ConsulConfig
	Auth     AuthConfig
	Practice PracticeConfig
}

type ServerConfig struct {
	Port           string
	Host           string
	GinMode        string
	ServiceName    string
	ServiceAddress string
	ServiceID      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowOrigins   []string
	LogDir         string
}

type MongoDBConfig struct {
	URI      string
	Database string
	PoolSize uint64
	Timeout  time.Duration
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
	Enabled  bool
	TTL      time.Duration
}

type RabbitMQConfig struct {
	URI      string
	Exchange string
}

type ConsulConfig struct {
	ConsulAddress string
	Enabled       bool
}

type AuthConfig struct {
	JWTSecret string
	// TrustGatewayHeader accepts X-User-ID set by the API gateway in place of a bearer token.
	TrustGatewayHeader bool
}

type PracticeConfig struct {
	DefaultQuestionCount int
	PassCorrect          int
	PassOutOf            int
	LedgerMaxAttempts    int
	LedgerParallelism    int
	HistoryDefaultLimit  int
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}

	serviceName := getEnv("PRACTICE_SERVICE_NAME", "practice-service")
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "6667"),
			Host:           getEnv("HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			ServiceName:    serviceName,
			ServiceAddress: getEnv("PRACTICE_SERVICE_ADDRESS", "practice-service"),
			ServiceID:      serviceName + "-" + getEnv("HOSTNAME", "practice"),
			ReadTimeout:    getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("WRITE_TIMEOUT", 15*time.Second),
			AllowOrigins:   getEnvAsList("CORS_ALLOW_ORIGINS", []string{"http://localhost:3000"}),
			LogDir:         getEnv("LOG_DIR", ""),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("PRACTICE_SERVICE_MONGO_DB", "practice_service"),
			PoolSize: getEnvAsUint64("MONGODB_POOL_SIZE", 100),
			Timeout:  getEnvAsDuration("MONGODB_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("CATALOG_CACHE_ENABLED", true),
			TTL:      getEnvAsDuration("CATALOG_CACHE_TTL", 10*time.Minute),
		},
		RabbitMQ: RabbitMQConfig{
			URI:      getEnv("RABBITMQ_URI", ""),
			Exchange: getEnv("RABBITMQ_EXCHANGE", "practice.events"),
		},
		Consul: ConsulConfig{
			ConsulAddress: getEnv("CONSUL_ADDRESS", "consul-server:8500"),
			Enabled:       getEnvAsBool("CONSUL_ENABLED", false),
		},
		Auth: AuthConfig{
			JWTSecret:          getEnv("JWT_SECRET", ""),
			TrustGatewayHeader: getEnvAsBool("TRUST_GATEWAY_HEADER", false),
		},
		Practice: PracticeConfig{
			DefaultQuestionCount: getEnvAsInt("PRACTICE_QUESTION_COUNT", 18),
			PassCorrect:          getEnvAsInt("PRACTICE_PASS_CORRECT", 15),
			PassOutOf:            getEnvAsInt("PRACTICE_PASS_OUT_OF", 18),
			LedgerMaxAttempts:    getEnvAsInt("LEDGER_MAX_ATTEMPTS", 3),
			LedgerParallelism:    getEnvAsInt("LEDGER_PARALLELISM", 8),
			HistoryDefaultLimit:  getEnvAsInt("HISTORY_DEFAULT_LIMIT", 10),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intVal, err := strconv.Atoi(value)
		if err != nil {
			log.Printf("error retrieve int env var %s: %s", key, err)
			return defaultValue
		}
		return intVal
	}
	return defaultValue
}

func getEnvAsUint64(key string, defaultValue uint64) uint64 {
	if value, exists := os.LookupEnv(key); exists {
		uintVal, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			log.Printf("error retrieve uint64 env var %s: %s", key, err)
			return defaultValue
		}
		return uintVal
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		duration, err := time.ParseDuration(value)
		if err != nil {
			log.Printf("error retrieve duration env var %s: %s", key, err)
			return defaultValue
		}
		return duration
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			log.Printf("error retrieve bool env var %s: %s", key, err)
			return defaultValue
		}
		return boolVal
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
