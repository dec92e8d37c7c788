package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	MongoURI      string
	RedisHost     string
	RedisPort     string
	CitiesTTL     time.Duration
	JaegerAddress string
	SecretKey     string
	LogLevel      string
	LogFilePath   string
	ModelPath     string
	PolicyPath    string
}

// NewConfig reads the environment after loading an optional .env file.
// Variables already set in the environment win over the file.
func NewConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:          getEnv("BOOKED_SERVICE_PORT", "8080"),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		CitiesTTL:     getDuration("CITIES_CACHE_TTL", 10*time.Minute),
		JaegerAddress: os.Getenv("JAEGER_ADDRESS"),
		SecretKey:     os.Getenv("SECRET_KEY"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFilePath:   os.Getenv("LOG_FILE_PATH"),
		ModelPath:     getEnv("CASBIN_MODEL_PATH", "./rbac_model.conf"),
		PolicyPath:    getEnv("CASBIN_POLICY_PATH", "./policy.csv"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
