package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	ServerPort string
	JwtSecret  string
	Issuer     string

	DbHost     string
	DbPort     string
	DbUser     string
	DbPassword string
	DbName     string

	GeminiAPIKey string

	// StorageType selects the artifact store backend: "local" or "minio".
	StorageType string
	StoragePath string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	MinioBucket    string

	// WorkerPollSeconds is the flat interval between empty queue polls.
	WorkerPollSeconds int
)

func LoadConfig() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	ServerPort = getEnv("SERVER_PORT", "8080")
	JwtSecret = getEnv("JWT_SECRET", "defaultsecret")
	Issuer = getEnv("ISSUER", "ortrace")

	DbHost = getEnv("DB_HOST", "localhost")
	DbPort = getEnv("DB_PORT", "5432")
	DbUser = getEnv("DB_USER", "postgres")
	DbPassword = getEnv("DB_PASSWORD", "password")
	DbName = getEnv("DB_NAME", "ortrace")

	GeminiAPIKey = getEnv("GEMINI_API_KEY", "")

	StorageType = getEnv("STORAGE_TYPE", "local")
	StoragePath = getEnv("STORAGE_PATH", "./storage")

	MinioEndpoint = getEnv("MINIO_ENDPOINT", "localhost:9000")
	MinioAccessKey = getEnv("MINIO_ACCESS_KEY", "minioadmin")
	MinioSecretKey = getEnv("MINIO_SECRET_KEY", "minioadmin")
	MinioBucket = getEnv("MINIO_BUCKET", "recordings")
	MinioUseSSL, _ = strconv.ParseBool(getEnv("MINIO_USE_SSL", "false"))

	WorkerPollSeconds, _ = strconv.Atoi(getEnv("WORKER_POLL_INTERVAL", "5"))
	if WorkerPollSeconds <= 0 {
		WorkerPollSeconds = 5
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
