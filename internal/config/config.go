package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	MongoURI    string
	DBName      string
	Environment string
	AppId       string

	PostgresDSN string // empty disables the postgres pool
	MySQLDSN    string // empty disables the mysql pool

	PageSize          int64 // default limit when a list request omits it
	MaxLimit          int64 // hard cap for limit=-1 and oversized limits
	QueryTimeout      time.Duration
	ModulesCollection string
	LogsCollection    string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:              getEnv("PORT", "8080"),
		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:            getEnv("DB_NAME", "go-admin"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		AppId:             getEnv("APP_ID", "go-admin"),
		PostgresDSN:       getEnv("POSTGRES_DSN", ""),
		MySQLDSN:          getEnv("MYSQL_DSN", ""),
		PageSize:          getEnvInt("PAGE_SIZE", 100),
		MaxLimit:          getEnvInt("MAX_LIMIT", 1000),
		QueryTimeout:      getEnvDuration("QUERY_TIMEOUT", 15*time.Second),
		ModulesCollection: getEnv("MODULES_COLLECTION", "admin_modules"),
		LogsCollection:    getEnv("LOGS_COLLECTION", "admin_logs"),
	}, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int64) int64 {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		log.Printf("Invalid %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Invalid %s=%q, using %s", key, raw, fallback)
		return fallback
	}
	return d
}
