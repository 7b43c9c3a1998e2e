package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server настройки
	Port        string
	Host        string
	Environment string

	// MongoDB настройки
	MongoURI     string
	DatabaseName string
	MongoTimeout int

	// JWT настройки
	JWTSecret              string
	JWTExpiration          int
	RefreshTokenExpiration int

	// CORS
	AllowedOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   int // секунды

	// Зовнішній генеративний API (асистент формування проєкту)
	AssistantAPIURL  string
	AssistantAPIKey  string
	AssistantModel   string
	AssistantTimeout int // секунды

	// Зовнішній пошук зображень (обкладинки проєктів)
	ImageSearchAPIURL string
	ImageSearchAPIKey string

	// Файлове сховище (логотипи організацій)
	UploadDir         string
	MaxUploadSizeMB   int64
	PublicUploadsBase string

	// Outbox диспетчер сповіщень
	OutboxPollInterval int // секунды
	OutboxMaxAttempts  int
}

func Load() *Config {
	// Загружаем переменные из .env файла
	if err := godotenv.Load(); err != nil {
		log.Printf("Не удалось загрузить .env файл: %v", err)
	}

	config := &Config{
		Port:         getEnv("PORT", "8080"),
		Host:         getEnv("HOST", "0.0.0.0"),
		Environment:  getEnv("ENV", "development"),
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DatabaseName: getEnv("DATABASE_NAME", "devtogether"),
		MongoTimeout: getEnvAsInt("MONGO_TIMEOUT", 10),

		JWTSecret:              getEnv("JWT_SECRET", "your-secret-key"),
		JWTExpiration:          getEnvAsInt("JWT_EXPIRATION", 24),            // часы
		RefreshTokenExpiration: getEnvAsInt("REFRESH_TOKEN_EXPIRATION", 168), // часы

		AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		RateLimitEnabled:  getEnvAsBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   getEnvAsInt("RATE_LIMIT_WINDOW", 60),

		AssistantAPIURL:  getEnv("ASSISTANT_API_URL", ""),
		AssistantAPIKey:  getEnv("ASSISTANT_API_KEY", ""),
		AssistantModel:   getEnv("ASSISTANT_MODEL", "gemini-pro"),
		AssistantTimeout: getEnvAsInt("ASSISTANT_TIMEOUT", 30),

		ImageSearchAPIURL: getEnv("IMAGE_SEARCH_API_URL", ""),
		ImageSearchAPIKey: getEnv("IMAGE_SEARCH_API_KEY", ""),

		UploadDir:         getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadSizeMB:   int64(getEnvAsInt("MAX_UPLOAD_SIZE_MB", 5)),
		PublicUploadsBase: getEnv("PUBLIC_UPLOADS_BASE", "/uploads"),

		OutboxPollInterval: getEnvAsInt("OUTBOX_POLL_INTERVAL", 5),
		OutboxMaxAttempts:  getEnvAsInt("OUTBOX_MAX_ATTEMPTS", 5),
	}

	return config
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
