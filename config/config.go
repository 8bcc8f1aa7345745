package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings, read from the environment with an
// optional .env file for local development.
type Config struct {
	MongoURI  string
	DBName    string
	JWTSecret string
	Port      string
	GinMode   string

	LogLevel string
	LogFile  string

	S3Region string
	S3Bucket string

	VapidPublicKey  string
	VapidPrivateKey string
	VapidSubscriber string

	FeedPageSize int
}

// Load reads the environment. JWT_SECRET and MONGODB_URI have no defaults
// and are validated by main.
func Load() Config {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	return Config{
		MongoURI:        os.Getenv("MONGODB_URI"),
		DBName:          getEnv("DB_NAME", "activitypal"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		Port:            getEnv("PORT", "8080"),
		GinMode:         getEnv("GIN_MODE", "debug"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFile:         getEnv("LOG_FILE", "server.log"),
		S3Region:        os.Getenv("AWS_REGION"),
		S3Bucket:        os.Getenv("S3_BUCKET"),
		VapidPublicKey:  os.Getenv("VAPID_PUBLIC_KEY"),
		VapidPrivateKey: os.Getenv("VAPID_PRIVATE_KEY"),
		VapidSubscriber: getEnv("VAPID_SUBSCRIBER", "mailto:admin@activitypal.app"),
		FeedPageSize:    getEnvInt("FEED_PAGE_SIZE", 15),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
